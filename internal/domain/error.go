package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")

	// Redemption
	ErrInvalidCode    = errors.New("invalid or already-used code")
	ErrDuplicateClaim = errors.New("code already claimed")
	ErrValidation     = errors.New("validation failed")
	ErrCampaignClosed = errors.New("campaign is closed")
	ErrRateLimited    = errors.New("too many attempts, try again later")

	// Issuance
	ErrInvalidBatchSize     = errors.New("invalid batch size")
	ErrCodeSpaceExhausted   = errors.New("could not draw a unique code")
	ErrIssueInProgress      = errors.New("another code batch is being issued")
	ErrConfirmationRequired = errors.New("explicit confirmation required")
	ErrCodesInUse           = errors.New("codes are referenced by participants")

	// Admin session
	ErrUnauthorized = errors.New("unauthorized")
)
