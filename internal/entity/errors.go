package entity

import "errors"

// Domain errors for exercise generation and related aggregates.
var (
	ErrInvalidUserID       = errors.New("invalid user ID")
	ErrInvalidSessionID    = errors.New("invalid session ID")
	ErrInvalidWordText     = errors.New("invalid word text")
	ErrExerciseNotFound    = errors.New("exercise not found")
	ErrNoPreloadedEntry    = errors.New("no preloaded exercise for key")
	ErrEmptyGeneration     = errors.New("generator returned an empty exercise")
	ErrMalformedExercise   = errors.New("generator response missing sentence or target word")
	ErrUnsupportedLanguage = errors.New("unsupported language")
)
