package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Identity is the already-authenticated requesting party, resolved by
// the gateway and the auth server before the pipeline runs. The ID
// doubles as the query parameter scoping the fetch to the caller's own
// requests.
type Identity struct {
	ID                string
	FirstName         string
	LastName          string
	Email             string
	ResourceServerURL string
	Role              Role
}

func (i Identity) Validate() error {
	if _, err := uuid.Parse(strings.TrimSpace(i.ID)); err != nil {
		return fmt.Errorf("%w: user id must be a UUID", ErrValidation)
	}
	if strings.TrimSpace(i.ResourceServerURL) == "" {
		return fmt.Errorf("%w: resource server url is required", ErrValidation)
	}
	if !i.Role.IsValid() {
		return fmt.Errorf("%w: invalid role %q", ErrValidation, i.Role)
	}
	return nil
}
