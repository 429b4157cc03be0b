package audit

import (
	"context"
	"time"

	id "visitreg/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers account lifecycle and visit records that
	// site managers rely on for duty-of-care.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers authentication failures and access violations.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers delivery problems and routine activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category   EventCategory
	Timestamp  time.Time
	IdentityID id.IdentityID
	// Subject is the entity acted on, usually a visitor or visit ID.
	Subject   string
	Action    string
	Site      string
	Reason    string
	RequestID string
	ClientIP  string
	Device    string
}

type AuditEvent string

const (
	EventIdentityCreated         AuditEvent = "identity_created"
	EventIdentityDeleted         AuditEvent = "identity_deleted"
	EventAuthFailed              AuditEvent = "auth_failed"
	EventLoginLocked             AuditEvent = "login_locked"
	EventVisitRegistered         AuditEvent = "visit_registered"
	EventTeamRegistered          AuditEvent = "team_registered"
	EventEmergencyContactChanged AuditEvent = "emergency_contact_replaced"
	EventSiteContactCreated      AuditEvent = "site_contact_created"
	EventNotificationFailed      AuditEvent = "notification_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventIdentityCreated:         CategoryCompliance,
	EventIdentityDeleted:         CategoryCompliance,
	EventVisitRegistered:         CategoryCompliance,
	EventTeamRegistered:          CategoryCompliance,
	EventEmergencyContactChanged: CategoryCompliance,

	EventAuthFailed:  CategorySecurity,
	EventLoginLocked: CategorySecurity,

	EventSiteContactCreated: CategoryOperations,
	EventNotificationFailed: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByIdentity(ctx context.Context, identityID id.IdentityID) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
