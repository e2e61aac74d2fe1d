package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken    = errors.New("INVALID_TOKEN")
	ErrInvalidCreds    = errors.New("INVALID_CREDENTIALS")
	ErrAccountInactive = errors.New("ACCOUNT_INACTIVE")
	ErrProductNotFound = errors.New("PRODUCT_NOT_FOUND")
	ErrStoreNotFound   = errors.New("STORE_NOT_FOUND")
	ErrSlugConflict    = errors.New("SLUG_CONFLICT")
	ErrNotStoreOwner   = errors.New("NOT_STORE_OWNER")
	ErrSubmissionBusy  = errors.New("SUBMISSION_IN_PROGRESS")
	ErrSubmissionGone  = errors.New("SUBMISSION_NOT_FOUND")
)
