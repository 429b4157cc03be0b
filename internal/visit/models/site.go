package models

import (
	"slices"
	"strings"
)

// SiteKind selects the rule set and extra fields that apply to a visit.
type SiteKind string

const (
	SiteGingin     SiteKind = "gingin"
	SiteRidgefield SiteKind = "ridgefield"
)

// Site describes a registrable location.
type Site struct {
	Kind          SiteKind `json:"kind"`
	Name          string   `json:"name"`
	InductionDoc  string   `json:"induction_doc"`
	HouseRulesDoc string   `json:"house_rules_doc"`
	ExtraFields   []string `json:"extra_fields"`
}

// ManagerGroup is the identity group whose members manage the site.
func (k SiteKind) ManagerGroup() string {
	s := string(k)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Title is the display form used in notifications.
func (k SiteKind) Title() string { return k.ManagerGroup() }

// NormalizeSiteKind lower-cases and trims a site taken from a URL. It does
// not check that the site exists; the rule set reports unknown sites.
func NormalizeSiteKind(s string) SiteKind {
	return SiteKind(strings.ToLower(strings.TrimSpace(s)))
}

// Catalogue lists the sites visitors may register for.
var Catalogue = []Site{
	{
		Kind:          SiteGingin,
		Name:          "Gingin Gravity Precinct",
		InductionDoc:  "/static/pdf/Induction sheet-5.pdf",
		HouseRulesDoc: "/static/pdf/GGP Gate locking procedure.pdf",
	},
	{
		Kind:          SiteRidgefield,
		Name:          "UWA Ridgefield Farm",
		InductionDoc:  "/static/pdf/UWA RidgeFieldFarm _Visitor and User Induction_2022_as at 10 May 2022.pdf",
		HouseRulesDoc: "/static/pdf/Terms and Conditions - Accommodation at the Old Farmhouse.pdf",
		ExtraFields:   []string{FieldPaddock},
	},
}

// Collects reports whether the site asks for the named extra field.
func (s Site) Collects(field string) bool {
	return slices.Contains(s.ExtraFields, field)
}

// LookupSite returns the catalogue entry for kind.
func LookupSite(kind SiteKind) (Site, bool) {
	for _, s := range Catalogue {
		if s.Kind == kind {
			return s, true
		}
	}
	return Site{}, false
}
