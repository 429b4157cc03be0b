// Package models holds the notification job queued after a visit is
// persisted and the rendered message handed to senders.
package models

import (
	"time"

	visitmodels "visitreg/internal/visit/models"
	vmodels "visitreg/internal/visitor/models"
	id "visitreg/pkg/domain"
)

// Job is a snapshot of everything a site manager is told about one visit.
// It is self-contained so a worker never reads the visit back.
type Job struct {
	VisitID     id.VisitID                `json:"visit_id"`
	TeamID      *id.TeamID                `json:"team_id,omitempty"`
	Site        visitmodels.SiteKind      `json:"site"`
	VisitorName string                    `json:"visitor_name"`
	Role        string                    `json:"role"`
	Arrival     time.Time                 `json:"arrival"`
	Departure   time.Time                 `json:"departure"`
	Overnight   bool                      `json:"overnight"`
	Contact     *vmodels.EmergencyContact `json:"emergency_contact,omitempty"`
	// Paddock is only set for farm sites.
	Paddock  *string   `json:"paddock,omitempty"`
	QueuedAt time.Time `json:"queued_at"`
}

// NewJob snapshots visit and the visitor's profile.
func NewJob(visit *visitmodels.Visit, profile *vmodels.Profile, now time.Time) *Job {
	job := &Job{
		VisitID:   visit.ID,
		TeamID:    visit.TeamID,
		Site:      visit.Site,
		Arrival:   visit.Arrival,
		Departure: visit.Departure,
		Overnight: visit.Overnight,
		QueuedAt:  now,
	}
	if profile != nil {
		if profile.Visitor != nil {
			job.VisitorName = profile.Visitor.FullName()
		}
		if profile.Role != nil {
			job.Role = profile.Role.Name
		}
		if profile.Contact != nil {
			c := *profile.Contact
			job.Contact = &c
		}
	}
	site, _ := visitmodels.LookupSite(visit.Site)
	if paddock, ok := visit.Paddock(); ok && site.Collects(visitmodels.FieldPaddock) {
		job.Paddock = &paddock
	}
	return job
}

// Message is a rendered notification ready for delivery.
type Message struct {
	VisitID  id.VisitID           `json:"visit_id"`
	Site     visitmodels.SiteKind `json:"site"`
	To       []string             `json:"to"`
	Subject  string               `json:"subject"`
	Markdown string               `json:"markdown"`
	HTML     string               `json:"html"`
}
