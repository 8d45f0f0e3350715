package catalog

import "errors"

// Sentinel errors returned by the catalog. Callers branch on them with errors.Is;
// the wrapped message carries the offending value.
var (
	// ErrInvalidInput indicates an empty or malformed field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateName indicates an album or user name that is already taken.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrDuplicateContent indicates a photo or tag that is already present.
	ErrDuplicateContent = errors.New("duplicate content")

	// ErrNotFound indicates the requested user, album, photo or tag does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPersistence indicates the catalog could not be written; in-memory state is kept.
	ErrPersistence = errors.New("persistence failure")

	// ErrNoSnapshot is returned by stores that have nothing persisted yet.
	ErrNoSnapshot = errors.New("no snapshot")

	// ErrCorruptSnapshot indicates a loaded snapshot violates catalog invariants.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrForbidden indicates the operation is not allowed for this account.
	ErrForbidden = errors.New("forbidden")

	// ErrNotLoggedIn indicates an operation that needs a session user.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrInvalidCredentials indicates a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
