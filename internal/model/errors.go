package model

import "errors"

var (
	// ErrNotFound covers missing exams, attempts, questions and users.
	ErrNotFound = errors.New("record not found")
	// ErrUnauthorized means the caller does not own the attempt.
	ErrUnauthorized = errors.New("not authorized to access this attempt")
	// ErrAlreadySubmitted means the attempt already reached GRADED.
	ErrAlreadySubmitted = errors.New("attempt already submitted")
)
