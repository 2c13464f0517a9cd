package services

import "errors"

var (
	ErrSessionNotFound  = errors.New("scribe session not found")
	ErrForbidden        = errors.New("session belongs to another doctor")
	ErrIncompleteRecord = errors.New("doctor ID, patient details, and chief complaint are required")
)
