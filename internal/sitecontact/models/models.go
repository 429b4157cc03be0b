package models

import (
	"strings"

	visitmodels "visitreg/internal/visit/models"
	id "visitreg/pkg/domain"
	dErrors "visitreg/pkg/domain-errors"
	pstrings "visitreg/pkg/platform/strings"
)

// SiteContact is an entry in the directory of people to call in an
// emergency at a site, maintained by site managers.
type SiteContact struct {
	ID       id.SiteContactID     `json:"id"`
	Name     string               `json:"name"`
	Phone    string               `json:"phone"`
	Site     visitmodels.SiteKind `json:"site"`
	Position string               `json:"position"`
}

// NewSiteContact trims the inputs and checks that every field is set and
// the site exists.
func NewSiteContact(contactID id.SiteContactID, name, phone, site, position string) (*SiteContact, error) {
	c := &SiteContact{
		ID:       contactID,
		Name:     strings.TrimSpace(name),
		Phone:    strings.TrimSpace(phone),
		Site:     visitmodels.NormalizeSiteKind(site),
		Position: strings.TrimSpace(position),
	}

	var errs dErrors.FieldErrors
	for _, f := range []struct{ field, value string }{
		{"name", c.Name},
		{"phone", c.Phone},
		{"site", string(c.Site)},
		{"position", c.Position},
	} {
		if f.value == "" {
			errs.Add(f.field, "this field is required")
		}
	}
	if c.Phone != "" && !pstrings.IsPhone(c.Phone) {
		errs.Add("phone", "enter a valid phone number")
	}
	if c.Site != "" {
		if _, ok := visitmodels.LookupSite(c.Site); !ok {
			errs.Add("site", "unknown site")
		}
	}
	if !errs.Empty() {
		return nil, dErrors.WithFields(dErrors.CodeValidation, "invalid site contact", errs)
	}
	return c, nil
}
