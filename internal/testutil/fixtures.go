package testutil

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Baaaki/event-manager/internal/media"
	"github.com/Baaaki/event-manager/internal/models"
	"github.com/Baaaki/event-manager/internal/utils"
	"gorm.io/gorm"
)

const DefaultPassword = "longenough1"

// fast Argon2 parameters for fixtures; verification reads them from the digest
var fixtureParams = utils.Argon2Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

// CreateTestUser inserts a user with a hashed password
func CreateTestUser(t *testing.T, db *gorm.DB, username, email, password string, role models.Role) *models.User {
	t.Helper()

	hashedPassword, err := utils.HashPasswordWithParams(password, fixtureParams)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// DefaultVendor returns a vendor with DefaultPassword
func DefaultVendor(t *testing.T, db *gorm.DB) *models.User {
	return CreateTestUser(t, db, "vendor", "vendor@example.com", DefaultPassword, models.RoleVendor)
}

// DefaultAdmin returns an admin with DefaultPassword
func DefaultAdmin(t *testing.T, db *gorm.DB) *models.User {
	return CreateTestUser(t, db, "admin", "admin@example.com", DefaultPassword, models.RoleAdmin)
}

// DefaultGuest returns a guest with DefaultPassword
func DefaultGuest(t *testing.T, db *gorm.DB) *models.User {
	return CreateTestUser(t, db, "guest", "guest@example.com", DefaultPassword, models.RoleGuest)
}

// CreateTestEvent inserts an event directly, bypassing the service
func CreateTestEvent(t *testing.T, db *gorm.DB, title string, owner *models.User) *models.Event {
	t.Helper()

	event := &models.Event{
		Title:       title,
		Description: "description of " + title,
		FlyerURL:    "https://media.test/flyers/" + strings.ReplaceAll(title, " ", "-") + ".png",
		OwnerID:     owner.ID,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}
	return event
}

// TestFlyer returns a small valid PNG flyer
func TestFlyer() media.Flyer {
	body := []byte("\x89PNG\r\n\x1a\nfake image bytes")
	return media.Flyer{
		Filename:    "flyer.png",
		ContentType: "image/png",
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	}
}

// FakeUploader is an in-memory media.Uploader.
type FakeUploader struct {
	mu      sync.Mutex
	Err     error
	Uploads []string
	Removed []string
}

var ErrFakeUpload = errors.New("media host unavailable")

func (f *FakeUploader) Upload(ctx context.Context, flyer media.Flyer) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	url := "https://media.test/" + media.ObjectKey(flyer.Filename)
	f.Uploads = append(f.Uploads, url)
	return url, nil
}

func (f *FakeUploader) Remove(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Removed = append(f.Removed, url)
	return nil
}

// UploadCount returns how many uploads succeeded
func (f *FakeUploader) UploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Uploads)
}

// RemovedURLs returns a copy of the removed URLs
func (f *FakeUploader) RemovedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Removed...)
}
