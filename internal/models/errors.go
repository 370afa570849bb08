package models

import (
	"errors"
)

var (
	ErrItemNotFound        = errors.New("models: item not found")
	ErrInvalidItem         = errors.New("models: invalid item")
	ErrRemoteNotConfigured = errors.New("remote item store is not configured")
	ErrPermissionDenied    = errors.New("permission denied by database security rules")
	ErrSeedItemReadOnly    = errors.New("sample items cannot be deleted while connected")
	ErrImageTooLarge       = errors.New("image exceeds the maximum file size")
	ErrUnsupportedImage    = errors.New("unsupported image type")
	ErrGenerationFailed    = errors.New("generation service failed")
)
