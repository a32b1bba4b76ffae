package domain

import (
	"fmt"
	"strings"
)

// Role identifies which side of an access request the caller acts for.
// Delegates share the perspective of the party they act on behalf of.
type Role string

const (
	RoleConsumer         Role = "CONSUMER"
	RoleConsumerDelegate Role = "CONSUMER_DELEGATE"
	RoleProvider         Role = "PROVIDER"
	RoleProviderDelegate Role = "PROVIDER_DELEGATE"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleConsumer, RoleConsumerDelegate, RoleProvider, RoleProviderDelegate:
		return true
	}
	return false
}

func ParseRoleFromString(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: invalid role %q", ErrValidation, s)
	}
	return r, nil
}

// Perspective is the side the caller is viewed as when fetching
// notifications. It decides which statement runs, which identity key
// the caller occupies in the assembled record, and which raw columns
// hold the counterpart.
type Perspective string

const (
	PerspectiveConsumer Perspective = "CONSUMER"
	PerspectiveProvider Perspective = "PROVIDER"
)

func (p Perspective) String() string { return string(p) }

// Perspective maps a role to its query perspective. Consumers and
// consumer delegates fetch the requests they issued; provider delegates
// and every other role value fall through to the provider side. The
// default arm is policy: roles the switch does not special-case must
// behave like providers, not fail.
func (r Role) Perspective() Perspective {
	switch r {
	case RoleConsumer, RoleConsumerDelegate:
		return PerspectiveConsumer
	case RoleProviderDelegate:
		return PerspectiveProvider
	default:
		return PerspectiveProvider
	}
}
