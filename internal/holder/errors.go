package holder

import "errors"

var (
	// ErrNotFound indicates the referenced holder does not exist.
	ErrNotFound = errors.New("holder not found")

	// ErrExists indicates a duplicate username.
	ErrExists = errors.New("holder already exists")

	// ErrRoleExists indicates a duplicate role name.
	ErrRoleExists = errors.New("role already exists")

	// ErrBadCredentials indicates a failed username/password check.
	ErrBadCredentials = errors.New("bad credentials")
)
