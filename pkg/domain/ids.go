// Package domain holds typed identifiers shared across modules. Distinct
// types keep a VisitID from being passed where a VisitorID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "visitreg/pkg/domain-errors"
)

type (
	IdentityID    uuid.UUID
	VisitorID     uuid.UUID
	VisitID       uuid.UUID
	TeamID        uuid.UUID
	RoleID        uuid.UUID
	ContactID     uuid.UUID
	SiteContactID uuid.UUID
)

func (id IdentityID) String() string    { return uuid.UUID(id).String() }
func (id VisitorID) String() string     { return uuid.UUID(id).String() }
func (id VisitID) String() string       { return uuid.UUID(id).String() }
func (id TeamID) String() string        { return uuid.UUID(id).String() }
func (id RoleID) String() string        { return uuid.UUID(id).String() }
func (id ContactID) String() string     { return uuid.UUID(id).String() }
func (id SiteContactID) String() string { return uuid.UUID(id).String() }

func (id IdentityID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id VisitorID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id RoleID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ContactID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

func (id IdentityID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id VisitorID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id VisitID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
func (id TeamID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id RoleID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id ContactID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id SiteContactID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *IdentityID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *VisitorID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *VisitID) UnmarshalText(b []byte) error       { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *TeamID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *RoleID) UnmarshalText(b []byte) error        { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *ContactID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *SiteContactID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// ParseIdentityID parses an identity ID taken from a token or path.
func ParseIdentityID(s string) (IdentityID, error) {
	u, err := parseUUID(s)
	return IdentityID(u), err
}

// ParseVisitorID parses a visitor ID taken from a request.
func ParseVisitorID(s string) (VisitorID, error) {
	u, err := parseUUID(s)
	return VisitorID(u), err
}

// ParseSiteContactID parses a site contact ID taken from a path.
func ParseSiteContactID(s string) (SiteContactID, error) {
	u, err := parseUUID(s)
	return SiteContactID(u), err
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "id is not a valid uuid")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "id must not be nil")
	}
	return u, nil
}
