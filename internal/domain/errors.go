package domain

import "errors"

// Доменные ошибки - используются во всех слоях приложения

// Record errors
var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrUnknownCategory    = errors.New("unknown plate category")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidPlate       = errors.New("invalid license plate")
	ErrCategoryMismatch   = errors.New("record belongs to another category")
	ErrInvalidDocumentType = errors.New("invalid document type")
)

// Archive errors
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidUpload    = errors.New("invalid upload")
	ErrUploadTooLarge   = errors.New("upload too large")
)

// SMS errors
var (
	ErrEmptyMessage  = errors.New("empty sms message")
	ErrNoPhoneNumber = errors.New("record has no phone number")
	ErrSMSGateway    = errors.New("sms gateway error")
)

// User / authorization errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid user role")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidToken       = errors.New("invalid token")
)

// General errors
var (
	ErrInternal   = errors.New("internal server error")
	ErrBadRequest = errors.New("bad request")
)
