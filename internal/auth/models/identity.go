package models

import (
	"slices"
	"strings"
	"time"

	id "visitreg/pkg/domain"
	dErrors "visitreg/pkg/domain-errors"
	pstrings "visitreg/pkg/platform/strings"
)

// Identity is a login account. Visitors who self-register have one; team
// members added by a leader do not. Staff identities manage sites through
// their Groups and never own a visitor record.
type Identity struct {
	ID           id.IdentityID
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Staff        bool
	Groups       []string
	CreatedAt    time.Time
}

// NewIdentity validates invariants for a new account.
func NewIdentity(identityID id.IdentityID, username, email, firstName, lastName, passwordHash string, now time.Time) (*Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if len(username) > 150 {
		return nil, dErrors.New(dErrors.CodeValidation, "username must be 150 characters or less")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return &Identity{
		ID:           identityID,
		Username:     username,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

// InGroup reports whether the identity belongs to group.
func (i *Identity) InGroup(group string) bool {
	return slices.Contains(i.Groups, group)
}

func (i *Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// GrantStaff marks the identity as a manager of the given site groups.
func (i *Identity) GrantStaff(groups ...string) {
	i.Staff = true
	i.Groups = pstrings.DedupeAndTrim(append(i.Groups, groups...))
}
