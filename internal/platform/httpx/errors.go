package httpx

import (
	"errors"
	"net/http"

	"github.com/planora/planora/internal/shared"
)

// RespondError maps core error taxonomy to RFC7807 responses.
//
// StoreUnavailable maps to 503 only when it escapes an authorization
// decision; inside one it is collapsed to a deny before reaching here.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated):
		Problem(w, http.StatusUnauthorized, "Not Authenticated", "no identity could be resolved for this request")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Invalid Credentials", "email or password is incorrect")
	case errors.Is(err, shared.ErrDenied):
		Problem(w, http.StatusForbidden, "Denied", "the resolved identity is not permitted to perform this action")
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", "the referenced record does not exist")
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", "a record with the same identity already exists")
	case errors.Is(err, shared.ErrStoreUnavailable):
		Problem(w, http.StatusServiceUnavailable, "Store Unavailable", "a backing store is temporarily unreachable")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
