package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Baaaki/event-manager/internal/models"
	"github.com/Baaaki/event-manager/internal/repository"
	"github.com/Baaaki/event-manager/internal/utils"
	"github.com/Baaaki/event-manager/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmailAlreadyExists = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidUserID      = errors.New("invalid user id")

	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// RegisterInput is what a caller supplies to create an account.
// Role is optional and defaults to guest; admin cannot be self-assigned.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *utils.TokenService
}

func NewAuthService(userRepo *repository.UserRepository, tokens *utils.TokenService) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	start := time.Now()

	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	logger.Log.Debug("Processing user registration",
		zap.String("username", in.Username),
		zap.String("email", in.Email),
	)

	// 1. Validate input
	role, err := s.validateRegisterInput(in)
	if err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("email", in.Email),
			zap.Error(err),
		)
		return nil, err
	}

	// 2. Check if email already exists
	count, err := s.userRepo.CountByEmail(ctx, in.Email)
	if err != nil {
		logger.Log.Error("Failed to check email existence",
			zap.String("email", in.Email),
			zap.Error(err),
		)
		return nil, err
	}
	if count > 0 {
		logger.Log.Warn("Email already exists",
			zap.String("email", in.Email),
		)
		return nil, ErrEmailAlreadyExists
	}

	// 3. Hash password (Argon2)
	hashStart := time.Now()
	hashedPassword, err := utils.HashPassword(in.Password)
	if err != nil {
		logger.Log.Error("Failed to hash password",
			zap.Error(err),
		)
		return nil, err
	}
	hashDuration := time.Since(hashStart)

	// 4. Create user; the unique email index catches a concurrent registration
	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashedPassword,
		Role:         role,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			logger.Log.Warn("Email registered concurrently",
				zap.String("email", in.Email),
			)
			return nil, ErrEmailAlreadyExists
		}
		logger.Log.Error("Failed to create user in database",
			zap.String("email", in.Email),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("User registered successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
		zap.Duration("hash_duration", hashDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, nil
}

// Login verifies the password and mints a bearer token.
// Unknown email is ErrUserNotFound, wrong password is ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	start := time.Now()
	email = strings.TrimSpace(email)

	// 1. Get user by email
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		logger.Log.Error("Failed to get user by email",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", err
	}
	if user == nil {
		logger.Log.Warn("Login failed: user not found",
			zap.String("email", email),
		)
		return nil, "", ErrUserNotFound
	}

	// 2. Verify password
	verifyStart := time.Now()
	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Stored password hash is unusable",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, "", err
	}
	verifyDuration := time.Since(verifyStart)

	if !valid {
		logger.Log.Warn("Login failed: invalid password",
			zap.String("user_id", user.ID.String()),
		)
		return nil, "", ErrInvalidCredentials
	}

	// 3. Issue token
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		logger.Log.Error("Failed to issue token",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, "", err
	}

	logger.Log.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.Duration("password_verify_duration", verifyDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, token, nil
}

// Authenticate resolves a bearer token to the user it was issued for.
// Any failure, including a token for a user that no longer exists, is ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	subject, err := s.tokens.Decode(token)
	if err != nil {
		logger.Log.Debug("Token rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	user, err := s.userRepo.GetUserByID(ctx, subject)
	if err != nil {
		logger.Log.Error("Failed to resolve token subject",
			zap.String("user_id", subject.String()),
			zap.Error(err),
		)
		return nil, err
	}
	if user == nil {
		logger.Log.Warn("Token subject no longer exists",
			zap.String("user_id", subject.String()),
		)
		return nil, ErrUnauthenticated
	}

	return user, nil
}

// UpdateUserRole changes the role of the user with id.
func (s *AuthService) UpdateUserRole(ctx context.Context, id, role string) (*models.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidUserID
	}
	newRole, err := models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("%w: role must be one of admin, vendor, host, guest", ErrInvalidInput)
	}

	updated, err := s.userRepo.UpdateRole(ctx, uid, newRole)
	if err != nil {
		logger.Log.Error("Failed to update user role",
			zap.String("user_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	if updated == 0 {
		return nil, ErrUserNotFound
	}

	user, err := s.userRepo.GetUserByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	logger.Log.Info("User role updated",
		zap.String("user_id", id),
		zap.String("role", string(newRole)),
	)

	return user, nil
}

// DeleteUser removes a user and the events they own.
func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidUserID
	}

	deleted, err := s.userRepo.DeleteUser(ctx, uid)
	if err != nil {
		logger.Log.Error("Failed to delete user",
			zap.String("user_id", id),
			zap.Error(err),
		)
		return err
	}
	if deleted == 0 {
		return ErrUserNotFound
	}

	logger.Log.Info("User deleted", zap.String("user_id", id))
	return nil
}

func (s *AuthService) validateRegisterInput(in RegisterInput) (models.Role, error) {
	// Username validation
	if len(in.Username) < 3 {
		return "", fmt.Errorf("%w: username must be at least 3 characters", ErrInvalidInput)
	}
	if len(in.Username) > 50 {
		return "", fmt.Errorf("%w: username must be at most 50 characters", ErrInvalidInput)
	}

	// Email validation (regex)
	if !emailRegex.MatchString(in.Email) {
		return "", fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	}
	if len(in.Email) > 100 {
		return "", fmt.Errorf("%w: email too long", ErrInvalidInput)
	}

	// Password validation
	if len(in.Password) < 8 {
		return "", fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	if len(in.Password) > 128 {
		return "", fmt.Errorf("%w: password too long", ErrInvalidInput)
	}

	if in.Role == "" {
		return models.RoleGuest, nil
	}
	role, err := models.ParseRole(in.Role)
	if err != nil || role == models.RoleAdmin {
		return "", fmt.Errorf("%w: role must be one of vendor, host, guest", ErrInvalidInput)
	}
	return role, nil
}
