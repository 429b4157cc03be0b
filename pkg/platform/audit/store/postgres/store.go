package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "visitreg/pkg/domain"
	audit "visitreg/pkg/platform/audit"
	txcontext "visitreg/pkg/platform/tx"
)

// Store implements audit.Store on the audit_events table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectColumns = `
	SELECT category, timestamp, identity_id, subject, action,
		   site, reason, request_id, client_ip, device
	FROM audit_events`

// Append inserts the event, joining the caller's transaction when one is active.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	var identityID *uuid.UUID
	if !event.IdentityID.IsNil() {
		uid := uuid.UUID(event.IdentityID)
		identityID = &uid
	}
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	_, err := txcontext.Use(ctx, s.db).ExecContext(ctx, `
		INSERT INTO audit_events (
			id, category, timestamp, identity_id, subject, action,
			site, reason, request_id, client_ip, device
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.New(),
		string(category),
		event.Timestamp,
		identityID,
		event.Subject,
		event.Action,
		event.Site,
		event.Reason,
		event.RequestID,
		event.ClientIP,
		event.Device,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByIdentity(ctx context.Context, identityID id.IdentityID) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		WHERE identity_id = $1
		ORDER BY timestamp ASC`, uuid.UUID(identityID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns the latest limit events, oldest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT * FROM (`+selectColumns+`
			ORDER BY timestamp DESC
			LIMIT $1
		) recent ORDER BY timestamp ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			category   string
			event      audit.Event
			identityID *uuid.UUID
		)
		if err := rows.Scan(
			&category,
			&event.Timestamp,
			&identityID,
			&event.Subject,
			&event.Action,
			&event.Site,
			&event.Reason,
			&event.RequestID,
			&event.ClientIP,
			&event.Device,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		if identityID != nil {
			event.IdentityID = id.IdentityID(*identityID)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
