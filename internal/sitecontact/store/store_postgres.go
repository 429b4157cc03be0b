package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"visitreg/internal/platform/postgres"
	"visitreg/internal/sitecontact/models"
	visitmodels "visitreg/internal/visit/models"
	id "visitreg/pkg/domain"
	"visitreg/pkg/platform/sentinel"
	txcontext "visitreg/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, c *models.SiteContact) error {
	_, err := txcontext.Use(ctx, s.db).ExecContext(ctx, `
		INSERT INTO site_contacts (id, name, phone, site, position)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(c.ID), c.Name, c.Phone, string(c.Site), c.Position,
	)
	if err != nil {
		return fmt.Errorf("insert site contact: %w", postgres.TranslateError(err))
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, site visitmodels.SiteKind) ([]*models.SiteContact, error) {
	query := `SELECT id, name, phone, site, position FROM site_contacts`
	var args []any
	if site != "" {
		query += ` WHERE site = $1`
		args = append(args, string(site))
	}
	query += ` ORDER BY site, name`

	rows, err := txcontext.Use(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list site contacts: %w", err)
	}
	defer rows.Close()

	var out []*models.SiteContact
	for rows.Next() {
		var (
			c     models.SiteContact
			rawID uuid.UUID
			kind  string
		)
		if err := rows.Scan(&rawID, &c.Name, &c.Phone, &kind, &c.Position); err != nil {
			return nil, fmt.Errorf("scan site contact: %w", err)
		}
		c.ID = id.SiteContactID(rawID)
		c.Site = visitmodels.SiteKind(kind)
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate site contacts: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, contactID id.SiteContactID) error {
	res, err := txcontext.Use(ctx, s.db).ExecContext(ctx,
		`DELETE FROM site_contacts WHERE id = $1`, uuid.UUID(contactID))
	if err != nil {
		return fmt.Errorf("delete site contact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
