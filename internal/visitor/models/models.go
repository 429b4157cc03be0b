package models

import (
	"strings"
	"time"

	id "visitreg/pkg/domain"
)

// Role is the capacity a visitor attends in, e.g. "Contractor".
type Role struct {
	ID   id.RoleID `json:"id"`
	Name string    `json:"name"`
}

// EmergencyContact belongs to exactly one visitor.
type EmergencyContact struct {
	ID           id.ContactID `json:"id"`
	Name         string       `json:"name"`
	Phone        string       `json:"phone"`
	Relationship string       `json:"relationship"`
}

// Visitor is a person who can be registered on a visit. Team members added
// by a leader have no IdentityID.
type Visitor struct {
	ID                 id.VisitorID
	IdentityID         *id.IdentityID
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	RoleID             id.RoleID
	EmergencyContactID *id.ContactID
	CreatedAt          time.Time
}

func (v *Visitor) FullName() string {
	return strings.TrimSpace(v.FirstName + " " + v.LastName)
}

// OwnedBy reports whether the visitor is linked to identityID.
func (v *Visitor) OwnedBy(identityID id.IdentityID) bool {
	return v.IdentityID != nil && *v.IdentityID == identityID
}

// Profile is a visitor with its role and emergency contact resolved.
// Contact is nil when none was recorded.
type Profile struct {
	Visitor *Visitor
	Role    *Role
	Contact *EmergencyContact
}

// Resolution is the outcome of resolving one candidate. New resolutions
// still have to be committed.
type Resolution struct {
	Profile
	New bool
}
