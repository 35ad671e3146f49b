package errs

import "errors"

// Sentinel errors shared by the usecase and handler layers
var (
	ErrLibraryNotFound = errors.New("library not found")
	ErrPatronNotFound  = errors.New("patron not found")
	ErrPoolNotFound    = errors.New("license pool not found")

	ErrCollectionNotConfigured = errors.New("collection not configured")

	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
