package service

import (
	"errors"

	"gorm.io/gorm"
)

// Sentinel errors services return for handlers to translate into
// HTTP problem responses
var (
	ErrNotFound      = errors.New("resource not found")
	ErrForbidden     = errors.New("access denied")
	ErrAlreadyMember = errors.New("already a team member")
	ErrLeadProtected = errors.New("proposal must keep a lead")
	ErrConflict      = errors.New("conflicting state")
	ErrUpstream      = errors.New("upstream provider failed")
)

// isRecordNotFound reports whether err is the gorm missing-row error
func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
