package domain

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrProfileExists    = errors.New("profile already exists")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrRoleNotFound     = errors.New("role not found")
	ErrSurveyNotFound   = errors.New("survey not found")
	ErrInviteNotFound   = errors.New("invalid or expired survey link")
	ErrBatchNotFound    = errors.New("survey batch not found")
	ErrAlreadyResponded = errors.New("survey already responded")
	ErrNotAssigned      = errors.New("survey not assigned to this respondent")
	ErrNoRecipients     = errors.New("no recipients with a valid email")
	ErrBadCredentials   = errors.New("invalid email or password")
)
