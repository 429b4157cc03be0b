package handler

import (
	"time"

	"visitreg/internal/visit/models"
	visitService "visitreg/internal/visit/service"
	vmodels "visitreg/internal/visitor/models"
	id "visitreg/pkg/domain"
	dErrors "visitreg/pkg/domain-errors"
	pstrings "visitreg/pkg/platform/strings"
)

const (
	msgRequired    = "this field is required"
	msgInvalidDate = "enter a date as YYYY-MM-DD"
	msgInvalidTime = "enter a time as HH:MM"
)

type visitRequest struct {
	ArrivalDate   string  `json:"arrival_date"`
	ArrivalTime   string  `json:"arrival_time"`
	DepartureDate string  `json:"departure_date"`
	DepartureTime string  `json:"departure_time"`
	Overnight     bool    `json:"overnight"`
	Induction     bool    `json:"induction"`
	HouseRules    bool    `json:"houserules"`
	Paddock       *string `json:"paddock,omitempty"`
}

type teamRequest struct {
	visitRequest
	Members []vmodels.Candidate `json:"members"`
}

// toFields parses the submitted dates and times. Unparseable values are
// reported together as CodeInvalidVisit field errors.
func (r visitRequest) toFields() (models.VisitFields, error) {
	var (
		f  models.VisitFields
		fe dErrors.FieldErrors
	)
	parseDate := func(field, raw string, dst *models.Date) {
		if pstrings.IsBlank(raw) {
			fe.Add(field, msgRequired)
			return
		}
		d, err := models.ParseDate(raw)
		if err != nil {
			fe.Add(field, msgInvalidDate)
			return
		}
		*dst = d
	}
	parseClock := func(field, raw string, dst *models.Clock) {
		if pstrings.IsBlank(raw) {
			fe.Add(field, msgRequired)
			return
		}
		c, err := models.ParseClock(raw)
		if err != nil {
			fe.Add(field, msgInvalidTime)
			return
		}
		*dst = c
	}
	parseDate(models.FieldArrivalDate, r.ArrivalDate, &f.ArrivalDate)
	parseClock(models.FieldArrivalTime, r.ArrivalTime, &f.ArrivalTime)
	parseDate(models.FieldDepartureDate, r.DepartureDate, &f.DepartureDate)
	parseClock(models.FieldDepartureTime, r.DepartureTime, &f.DepartureTime)
	if !fe.Empty() {
		return models.VisitFields{}, dErrors.WithFields(dErrors.CodeInvalidVisit, "visit details are invalid", fe)
	}

	f.Overnight = r.Overnight
	f.Induction = r.Induction
	f.HouseRules = r.HouseRules
	if r.Paddock != nil && !pstrings.IsBlank(*r.Paddock) {
		f.Extra = models.FarmFields{Paddock: *r.Paddock}
	}
	return f, nil
}

type visitResponse struct {
	VisitID     id.VisitID   `json:"visit_id"`
	VisitorID   id.VisitorID `json:"visitor_id"`
	VisitorName string       `json:"visitor_name,omitempty"`
	TeamID      *id.TeamID   `json:"team_id,omitempty"`
	Site        string       `json:"site"`
	Arrival     time.Time    `json:"arrival"`
	Departure   time.Time    `json:"departure"`
	Overnight   bool         `json:"overnight"`
	Paddock     string       `json:"paddock,omitempty"`
}

func toVisitResponse(reg *visitService.Registered) visitResponse {
	v := reg.Visit
	out := visitResponse{
		VisitID:   v.ID,
		VisitorID: v.VisitorID,
		TeamID:    v.TeamID,
		Site:      string(v.Site),
		Arrival:   v.Arrival,
		Departure: v.Departure,
		Overnight: v.Overnight,
	}
	if reg.Profile != nil {
		out.VisitorName = reg.Profile.Visitor.FullName()
	}
	if p, ok := v.Paddock(); ok {
		out.Paddock = p
	}
	return out
}

type teamResponse struct {
	TeamID               *id.TeamID      `json:"team_id"`
	Visits               []visitResponse `json:"visits"`
	NotificationFailures int             `json:"notification_failures"`
}

type contactResponse struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

type rosterResponse struct {
	visitResponse
	Role             string           `json:"role"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	EmergencyContact *contactResponse `json:"emergency_contact,omitempty"`
}

func toRosterResponse(e visitService.RosterEntry) rosterResponse {
	out := rosterResponse{
		visitResponse: toVisitResponse(&visitService.Registered{Visit: e.Visit, Profile: e.Profile}),
		Email:         e.Profile.Visitor.Email,
		Phone:         e.Profile.Visitor.Phone,
	}
	if e.Profile.Role != nil {
		out.Role = e.Profile.Role.Name
	}
	if c := e.Profile.Contact; c != nil {
		out.EmergencyContact = &contactResponse{Name: c.Name, Phone: c.Phone, Relationship: c.Relationship}
	}
	return out
}
