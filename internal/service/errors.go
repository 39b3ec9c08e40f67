package service

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrPermissionDenied       = errors.New("permission denied")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrMissingAssignee        = errors.New("buyer assignee required")
	ErrMissingRejectionReason = errors.New("rejection reason required")
	ErrConflict               = errors.New("change request modified concurrently")
)
