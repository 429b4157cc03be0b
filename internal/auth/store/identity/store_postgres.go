package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"visitreg/internal/auth/models"
	"visitreg/internal/platform/postgres"
	id "visitreg/pkg/domain"
	"visitreg/pkg/platform/sentinel"
	txcontext "visitreg/pkg/platform/tx"
)

// PostgresIdentityStore persists identities in the identities table.
type PostgresIdentityStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresIdentityStore {
	return &PostgresIdentityStore{db: db}
}

const identityColumns = `id, username, email, first_name, last_name, password_hash, staff, groups, created_at`

func (s *PostgresIdentityStore) Save(ctx context.Context, identity *models.Identity) error {
	_, err := txcontext.Use(ctx, s.db).ExecContext(ctx, `
		INSERT INTO identities (`+identityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(identity.ID),
		identity.Username,
		identity.Email,
		identity.FirstName,
		identity.LastName,
		identity.PasswordHash,
		identity.Staff,
		pq.Array(identity.Groups),
		identity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert identity: %w", postgres.TranslateError(err))
	}
	return nil
}

func (s *PostgresIdentityStore) FindByID(ctx context.Context, identityID id.IdentityID) (*models.Identity, error) {
	row := txcontext.Use(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE id = $1`, uuid.UUID(identityID))
	return scanIdentity(row)
}

func (s *PostgresIdentityStore) FindByUsername(ctx context.Context, username string) (*models.Identity, error) {
	row := txcontext.Use(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE username = $1`, username)
	return scanIdentity(row)
}

func (s *PostgresIdentityStore) ListByGroup(ctx context.Context, group string) ([]*models.Identity, error) {
	rows, err := txcontext.Use(ctx, s.db).QueryContext(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE $1 = ANY(groups) ORDER BY username`, group)
	if err != nil {
		return nil, fmt.Errorf("query identities by group: %w", err)
	}
	defer rows.Close()

	var out []*models.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return out, nil
}

func (s *PostgresIdentityStore) Update(ctx context.Context, identity *models.Identity) error {
	res, err := txcontext.Use(ctx, s.db).ExecContext(ctx, `
		UPDATE identities
		SET username = $2, email = $3, first_name = $4, last_name = $5,
			password_hash = $6, staff = $7, groups = $8
		WHERE id = $1`,
		uuid.UUID(identity.ID),
		identity.Username,
		identity.Email,
		identity.FirstName,
		identity.LastName,
		identity.PasswordHash,
		identity.Staff,
		pq.Array(identity.Groups),
	)
	if err != nil {
		return fmt.Errorf("update identity: %w", postgres.TranslateError(err))
	}
	return requireAffected(res)
}

func (s *PostgresIdentityStore) Delete(ctx context.Context, identityID id.IdentityID) error {
	res, err := txcontext.Use(ctx, s.db).ExecContext(ctx,
		`DELETE FROM identities WHERE id = $1`, uuid.UUID(identityID))
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return requireAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row scanner) (*models.Identity, error) {
	var (
		identity models.Identity
		rawID    uuid.UUID
		groups   pq.StringArray
	)
	err := row.Scan(
		&rawID,
		&identity.Username,
		&identity.Email,
		&identity.FirstName,
		&identity.LastName,
		&identity.PasswordHash,
		&identity.Staff,
		&groups,
		&identity.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan identity: %w", err)
	}
	identity.ID = id.IdentityID(rawID)
	identity.Groups = []string(groups)
	return &identity, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
