package middleware

import (
	"github.com/Baaaki/event-manager/internal/models"
	"github.com/gin-gonic/gin"
)

const subjectKey = "subject"

// Subject is who is making the request: Anonymous or Authenticated.
// Handlers switch on the concrete type instead of checking a nullable user.
type Subject interface {
	isSubject()
}

// Anonymous is a request that has not passed the authentication gate.
type Anonymous struct{}

// Authenticated is a request whose bearer token resolved to User.
type Authenticated struct {
	User *models.User
}

func (Anonymous) isSubject()     {}
func (Authenticated) isSubject() {}

// SubjectFrom returns the subject recorded by AuthMiddleware, or Anonymous.
func SubjectFrom(c *gin.Context) Subject {
	if v, ok := c.Get(subjectKey); ok {
		if s, ok := v.(Subject); ok {
			return s
		}
	}
	return Anonymous{}
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	switch s := SubjectFrom(c).(type) {
	case Authenticated:
		return s.User, s.User != nil
	default:
		return nil, false
	}
}
