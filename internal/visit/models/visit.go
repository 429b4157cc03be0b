package models

import (
	"strings"
	"time"

	id "visitreg/pkg/domain"
)

// Field names used in validation errors.
const (
	FieldArrivalDate   = "arrival_date"
	FieldArrivalTime   = "arrival_time"
	FieldDepartureDate = "departure_date"
	FieldDepartureTime = "departure_time"
	FieldOvernight     = "overnight"
	FieldInduction     = "induction"
	FieldHouseRules    = "houserules"
	FieldPaddock       = "paddock"
)

// SiteFields is the site-specific payload of a visit. A nil value means the
// submitter supplied no extra fields.
type SiteFields interface {
	siteFields()
}

// FarmFields are collected at farm sites.
type FarmFields struct {
	Paddock string
}

func (FarmFields) siteFields() {}

// PaddockOf returns the trimmed paddock carried by fields. A blank paddock
// counts as absent.
func PaddockOf(fields SiteFields) (string, bool) {
	var raw string
	switch f := fields.(type) {
	case FarmFields:
		raw = f.Paddock
	case *FarmFields:
		if f == nil {
			return "", false
		}
		raw = f.Paddock
	}
	p := strings.TrimSpace(raw)
	return p, p != ""
}

// normalizeExtra drops blank site fields and trims the rest.
func normalizeExtra(fields SiteFields) SiteFields {
	if p, ok := PaddockOf(fields); ok {
		return FarmFields{Paddock: p}
	}
	return nil
}

// VisitFields is the shared schedule submitted for one or more visitors.
type VisitFields struct {
	ArrivalDate   Date
	ArrivalTime   Clock
	DepartureDate Date
	DepartureTime Clock
	Overnight     bool
	Induction     bool
	HouseRules    bool
	Extra         SiteFields
}

// Arrival returns the arrival instant in loc.
func (f VisitFields) Arrival(loc *time.Location) time.Time {
	return Combine(f.ArrivalDate, f.ArrivalTime, loc)
}

// Departure returns the departure instant in loc.
func (f VisitFields) Departure(loc *time.Location) time.Time {
	return Combine(f.DepartureDate, f.DepartureTime, loc)
}

// Visit is one registered stay. Visits are immutable once persisted.
//
// Invariants (checked by the rules package before construction):
//   - Arrival is not after Departure
//   - Overnight iff Induction and HouseRules are both acknowledged
//   - a stay spanning more than one calendar day is Overnight
//   - farm sites carry a paddock iff Overnight
type Visit struct {
	ID         id.VisitID
	VisitorID  id.VisitorID
	TeamID     *id.TeamID
	Site       SiteKind
	Arrival    time.Time
	Departure  time.Time
	Induction  bool
	HouseRules bool
	Overnight  bool
	Extra      SiteFields
	CreatedAt  time.Time
}

// NewVisit builds a visit for visitor from already-validated fields.
func NewVisit(visitID id.VisitID, visitor id.VisitorID, site SiteKind, f VisitFields, loc *time.Location, now time.Time) *Visit {
	return &Visit{
		ID:         visitID,
		VisitorID:  visitor,
		Site:       site,
		Arrival:    f.Arrival(loc),
		Departure:  f.Departure(loc),
		Induction:  f.Induction,
		HouseRules: f.HouseRules,
		Overnight:  f.Overnight,
		Extra:      normalizeExtra(f.Extra),
		CreatedAt:  now,
	}
}

func (v *Visit) Paddock() (string, bool) {
	return PaddockOf(v.Extra)
}

// OnSiteAt reports whether now falls inside the visit window.
func (v *Visit) OnSiteAt(now time.Time) bool {
	return !now.Before(v.Arrival) && !now.After(v.Departure)
}

// Filter narrows roster listings.
type Filter struct {
	Site SiteKind
	// OnSiteAt, when set, keeps only visits whose window contains it.
	OnSiteAt *time.Time
}
