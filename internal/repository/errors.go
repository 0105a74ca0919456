package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrDuplicate is returned when a write violates a unique index.
var ErrDuplicate = errors.New("duplicate record")

// translate maps driver level errors onto repository errors.
// The gorm handle must be opened with TranslateError enabled.
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
