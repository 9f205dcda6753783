package shared

import "errors"

var (
	// ErrNotAuthenticated indicates no identity token could be resolved for the request.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDenied indicates the principal resolved but failed an authorization predicate.
	ErrDenied = errors.New("denied")
	// ErrStoreUnavailable indicates a transient failure from an external store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicate indicates a uniqueness conflict on insert.
	ErrDuplicate = errors.New("duplicate entry")
)
