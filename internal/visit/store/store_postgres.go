package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"visitreg/internal/platform/postgres"
	"visitreg/internal/visit/models"
	id "visitreg/pkg/domain"
	txcontext "visitreg/pkg/platform/tx"
)

const visitColumns = `id, visitor_id, team_id, site, arrival, departure, induction, houserules, overnight, paddock, created_at`

// PostgresVisitStore persists visits in the visits table. Farm fields are
// stored in the nullable paddock column.
type PostgresVisitStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresVisitStore {
	return &PostgresVisitStore{db: db}
}

func (s *PostgresVisitStore) Save(ctx context.Context, v *models.Visit) error {
	var teamID uuid.NullUUID
	if v.TeamID != nil {
		teamID = uuid.NullUUID{UUID: uuid.UUID(*v.TeamID), Valid: true}
	}
	var paddock sql.NullString
	if p, ok := v.Paddock(); ok {
		paddock = sql.NullString{String: p, Valid: true}
	}
	_, err := txcontext.Use(ctx, s.db).ExecContext(ctx, `
		INSERT INTO visits (`+visitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.UUID(v.ID),
		uuid.UUID(v.VisitorID),
		teamID,
		string(v.Site),
		v.Arrival,
		v.Departure,
		v.Induction,
		v.HouseRules,
		v.Overnight,
		paddock,
		v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert visit: %w", postgres.TranslateError(err))
	}
	return nil
}

func (s *PostgresVisitStore) List(ctx context.Context, f models.Filter) ([]*models.Visit, error) {
	var (
		where []string
		args  []any
	)
	if f.Site != "" {
		args = append(args, string(f.Site))
		where = append(where, fmt.Sprintf("site = $%d", len(args)))
	}
	if f.OnSiteAt != nil {
		args = append(args, *f.OnSiteAt)
		where = append(where, fmt.Sprintf("arrival <= $%d AND departure >= $%d", len(args), len(args)))
	}
	query := `SELECT ` + visitColumns + ` FROM visits`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY arrival`
	return s.query(ctx, query, args...)
}

func (s *PostgresVisitStore) ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*models.Visit, error) {
	return s.query(ctx, `SELECT `+visitColumns+` FROM visits WHERE visitor_id = $1 ORDER BY arrival`,
		uuid.UUID(visitorID))
}

func (s *PostgresVisitStore) DeleteByVisitor(ctx context.Context, visitorID id.VisitorID) (int, error) {
	res, err := txcontext.Use(ctx, s.db).ExecContext(ctx,
		`DELETE FROM visits WHERE visitor_id = $1`, uuid.UUID(visitorID))
	if err != nil {
		return 0, fmt.Errorf("delete visits: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func (s *PostgresVisitStore) query(ctx context.Context, query string, args ...any) ([]*models.Visit, error) {
	rows, err := txcontext.Use(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	var out []*models.Visit
	for rows.Next() {
		var (
			v         models.Visit
			rawID     uuid.UUID
			visitorID uuid.UUID
			teamID    uuid.NullUUID
			site      string
			paddock   sql.NullString
		)
		if err := rows.Scan(&rawID, &visitorID, &teamID, &site, &v.Arrival, &v.Departure,
			&v.Induction, &v.HouseRules, &v.Overnight, &paddock, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		v.ID = id.VisitID(rawID)
		v.VisitorID = id.VisitorID(visitorID)
		v.Site = models.SiteKind(site)
		if teamID.Valid {
			t := id.TeamID(teamID.UUID)
			v.TeamID = &t
		}
		if paddock.Valid {
			v.Extra = models.FarmFields{Paddock: paddock.String}
		}
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visits: %w", err)
	}
	return out, nil
}
