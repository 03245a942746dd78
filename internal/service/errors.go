package service

import "errors"

var (
	// ErrNotFound is returned when a referenced agent, location, document,
	// request or backup does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned on a duplicate identifier at creation.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrUnauthorized is returned when the caller lacks the required
	// ownership, governance or agent-control relationship.
	ErrUnauthorized = errors.New("caller is not authorized")
	// ErrInvalidState is returned when the operation is invalid for the
	// record's current lifecycle state.
	ErrInvalidState = errors.New("invalid state for operation")
	// ErrInvalidParameter is returned on structurally invalid input.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDuplicateApproval is returned when an agent approves the same
	// request twice.
	ErrDuplicateApproval = errors.New("agent already approved this request")
	// ErrExpired is returned when a request is past its expiration window.
	ErrExpired = errors.New("recovery request expired")
	// ErrDelayNotElapsed is returned when the threshold is met but the
	// cooling-off period has not passed.
	ErrDelayNotElapsed = errors.New("recovery delay not elapsed")
	// ErrPolicyViolation is returned when a backup does not satisfy the
	// document's backup policy.
	ErrPolicyViolation = errors.New("backup violates policy")
	// ErrNotConfigured is returned when a document has no recovery settings.
	ErrNotConfigured = errors.New("recovery not configured for document")
)
