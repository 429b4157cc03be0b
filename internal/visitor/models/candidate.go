package models

import (
	"github.com/badoux/checkmail"

	dErrors "visitreg/pkg/domain-errors"
	pstrings "visitreg/pkg/platform/strings"
)

// Field names used in resolution errors.
const (
	FieldUsername            = "username"
	FieldFirstName           = "first_name"
	FieldLastName            = "last_name"
	FieldEmail               = "email"
	FieldPhone               = "phone"
	FieldRole                = "role"
	FieldContactName         = "contact_name"
	FieldContactPhone        = "contact_phone"
	FieldContactRelationship = "contact_relationship"
)

const (
	MsgRequired         = "this field is required"
	MsgConflicting      = "leave blank when a username is given"
	MsgInvalidEmail     = "enter a valid email address"
	MsgInvalidPhone     = "enter a valid phone number"
	MsgNumericName      = "name cannot be a number"
	MsgUnknownRole      = "select a valid role"
	MsgUnknownVisitor   = "no registered visitor matches this username"
	MsgSelfReference    = "you are already included as the team leader"
	MsgDuplicateVisitor = "this visitor is already listed in the team"
)

// VisitorAttributes describe a visitor who has no account yet.
type VisitorAttributes struct {
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Role                string `json:"role"`
	ContactName         string `json:"contact_name"`
	ContactPhone        string `json:"contact_phone"`
	ContactRelationship string `json:"contact_relationship"`
}

type attribute struct {
	field string
	value string
}

// fields returns an immutable snapshot in display order.
func (a VisitorAttributes) fields() []attribute {
	return []attribute{
		{FieldFirstName, a.FirstName},
		{FieldLastName, a.LastName},
		{FieldEmail, a.Email},
		{FieldPhone, a.Phone},
		{FieldRole, a.Role},
		{FieldContactName, a.ContactName},
		{FieldContactPhone, a.ContactPhone},
		{FieldContactRelationship, a.ContactRelationship},
	}
}

// Candidate names an existing visitor by username or describes a new one.
type Candidate struct {
	Username   string            `json:"username"`
	Attributes VisitorAttributes `json:"attributes"`
}

// ByIdentifier reports whether the candidate names an existing account.
func (c Candidate) ByIdentifier() bool {
	return !pstrings.IsBlank(c.Username)
}

// Check validates the candidate's shape and attribute formats. Role existence
// needs a store and is checked by the caller.
//
// A username with any attribute filled in is CodeConflictingInput. Without a
// username, blank or malformed attributes are CodeIncompleteAttributes.
func (c Candidate) Check() error {
	attrs := c.Attributes.fields()

	if c.ByIdentifier() {
		var conflicts dErrors.FieldErrors
		for _, a := range attrs {
			if !pstrings.IsBlank(a.value) {
				conflicts.Add(a.field, MsgConflicting)
			}
		}
		if !conflicts.Empty() {
			return dErrors.WithFields(dErrors.CodeConflictingInput,
				"give either a username or new visitor details, not both", conflicts)
		}
		return nil
	}

	var fe dErrors.FieldErrors
	for _, a := range attrs {
		if pstrings.IsBlank(a.value) {
			fe.Add(a.field, MsgRequired)
		}
	}
	fe = append(fe, c.Attributes.formatErrors()...)
	if !fe.Empty() {
		return dErrors.WithFields(dErrors.CodeIncompleteAttributes,
			"new visitor details are incomplete", fe)
	}
	return nil
}

// formatErrors checks the non-blank attributes for malformed values.
func (a VisitorAttributes) formatErrors() dErrors.FieldErrors {
	var fe dErrors.FieldErrors
	if !pstrings.IsBlank(a.Email) && checkmail.ValidateFormat(a.Email) != nil {
		fe.Add(FieldEmail, MsgInvalidEmail)
	}
	if !pstrings.IsBlank(a.Phone) && !pstrings.IsPhone(a.Phone) {
		fe.Add(FieldPhone, MsgInvalidPhone)
	}
	if pstrings.IsNumeric(a.ContactName) {
		fe.Add(FieldContactName, MsgNumericName)
	}
	if !pstrings.IsBlank(a.ContactPhone) && !pstrings.IsPhone(a.ContactPhone) {
		fe.Add(FieldContactPhone, MsgInvalidPhone)
	}
	return fe
}

// CheckAttributes validates a full attribute bundle, as used by
// self-registration and profile edits.
func CheckAttributes(a VisitorAttributes) error {
	return Candidate{Attributes: a}.Check()
}
