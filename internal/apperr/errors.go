// Package apperr holds the error kinds shared across the POS agent. Callers
// match them with errors.Is.
package apperr

import "errors"

var (
	// ErrStorageUnavailable is fatal for the session: the local store cannot be used.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateName      = errors.New("name already exists")
	ErrCategoryInUse      = errors.New("category is in use by products")
	// ErrRemoteRejected means the remote refused the transaction and will keep refusing it.
	ErrRemoteRejected = errors.New("remote rejected transaction")
	// ErrRemoteTransient covers network errors, timeouts and server side failures.
	ErrRemoteTransient = errors.New("remote temporarily unavailable")
)
