package service

import "errors"

// Service-level sentinel errors. Handlers translate them into response codes.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidPassword    = errors.New("password does not match")

	ErrUserNotFound     = errors.New("user not found")
	ErrCannotDeleteSelf = errors.New("cannot delete own account")

	ErrModuleNotFound = errors.New("module not found")
	ErrQuizNotFound   = errors.New("question not found")
	ErrNoQuestions    = errors.New("module has no questions")
	ErrInvalidAnswer  = errors.New("correct option out of range")

	ErrResultNotFound = errors.New("result not found")
	ErrNotEligible    = errors.New("result not eligible for a certificate")
)
