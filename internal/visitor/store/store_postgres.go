package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"visitreg/internal/platform/postgres"
	"visitreg/internal/visitor/models"
	id "visitreg/pkg/domain"
	"visitreg/pkg/platform/sentinel"
	txcontext "visitreg/pkg/platform/tx"
)

const visitorColumns = `id, identity_id, first_name, last_name, email, phone, role_id, emergency_contact_id, created_at`

// PostgresVisitorStore persists visitors in the visitors table.
type PostgresVisitorStore struct {
	db *sql.DB
}

func NewPostgresVisitorStore(db *sql.DB) *PostgresVisitorStore {
	return &PostgresVisitorStore{db: db}
}

func (s *PostgresVisitorStore) Save(ctx context.Context, v *models.Visitor) error {
	_, err := txcontext.Use(ctx, s.db).ExecContext(ctx, `
		INSERT INTO visitors (`+visitorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(v.ID),
		nullableIdentity(v.IdentityID),
		v.FirstName,
		v.LastName,
		v.Email,
		v.Phone,
		uuid.UUID(v.RoleID),
		nullableContact(v.EmergencyContactID),
		v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert visitor: %w", postgres.TranslateError(err))
	}
	return nil
}

func (s *PostgresVisitorStore) FindByID(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error) {
	row := txcontext.Use(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+visitorColumns+` FROM visitors WHERE id = $1`, uuid.UUID(visitorID))
	return scanVisitor(row)
}

func (s *PostgresVisitorStore) FindByIdentity(ctx context.Context, identityID id.IdentityID) (*models.Visitor, error) {
	row := txcontext.Use(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+visitorColumns+` FROM visitors WHERE identity_id = $1`, uuid.UUID(identityID))
	return scanVisitor(row)
}

func (s *PostgresVisitorStore) Update(ctx context.Context, v *models.Visitor) error {
	res, err := txcontext.Use(ctx, s.db).ExecContext(ctx, `
		UPDATE visitors
		SET first_name = $2, last_name = $3, email = $4, phone = $5,
			role_id = $6, emergency_contact_id = $7
		WHERE id = $1`,
		uuid.UUID(v.ID),
		v.FirstName,
		v.LastName,
		v.Email,
		v.Phone,
		uuid.UUID(v.RoleID),
		nullableContact(v.EmergencyContactID),
	)
	if err != nil {
		return fmt.Errorf("update visitor: %w", postgres.TranslateError(err))
	}
	return requireAffected(res)
}

func (s *PostgresVisitorStore) Delete(ctx context.Context, visitorID id.VisitorID) error {
	res, err := txcontext.Use(ctx, s.db).ExecContext(ctx,
		`DELETE FROM visitors WHERE id = $1`, uuid.UUID(visitorID))
	if err != nil {
		return fmt.Errorf("delete visitor: %w", err)
	}
	return requireAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVisitor(row scanner) (*models.Visitor, error) {
	var (
		v          models.Visitor
		rawID      uuid.UUID
		identityID uuid.NullUUID
		roleID     uuid.UUID
		contactID  uuid.NullUUID
	)
	err := row.Scan(&rawID, &identityID, &v.FirstName, &v.LastName, &v.Email, &v.Phone,
		&roleID, &contactID, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan visitor: %w", err)
	}
	v.ID = id.VisitorID(rawID)
	v.RoleID = id.RoleID(roleID)
	if identityID.Valid {
		iid := id.IdentityID(identityID.UUID)
		v.IdentityID = &iid
	}
	if contactID.Valid {
		cid := id.ContactID(contactID.UUID)
		v.EmergencyContactID = &cid
	}
	return &v, nil
}

func nullableIdentity(identityID *id.IdentityID) uuid.NullUUID {
	if identityID == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*identityID), Valid: true}
}

func nullableContact(contactID *id.ContactID) uuid.NullUUID {
	if contactID == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*contactID), Valid: true}
}

// PostgresContactStore persists emergency contacts.
type PostgresContactStore struct {
	db *sql.DB
}

func NewPostgresContactStore(db *sql.DB) *PostgresContactStore {
	return &PostgresContactStore{db: db}
}

func (s *PostgresContactStore) Save(ctx context.Context, c *models.EmergencyContact) error {
	_, err := txcontext.Use(ctx, s.db).ExecContext(ctx, `
		INSERT INTO emergency_contacts (id, name, phone, relationship)
		VALUES ($1, $2, $3, $4)`,
		uuid.UUID(c.ID), c.Name, c.Phone, c.Relationship)
	if err != nil {
		return fmt.Errorf("insert emergency contact: %w", postgres.TranslateError(err))
	}
	return nil
}

func (s *PostgresContactStore) FindByID(ctx context.Context, contactID id.ContactID) (*models.EmergencyContact, error) {
	var (
		c     models.EmergencyContact
		rawID uuid.UUID
	)
	err := txcontext.Use(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, name, phone, relationship FROM emergency_contacts WHERE id = $1`,
		uuid.UUID(contactID)).Scan(&rawID, &c.Name, &c.Phone, &c.Relationship)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan emergency contact: %w", err)
	}
	c.ID = id.ContactID(rawID)
	return &c, nil
}

func (s *PostgresContactStore) Delete(ctx context.Context, contactID id.ContactID) error {
	res, err := txcontext.Use(ctx, s.db).ExecContext(ctx,
		`DELETE FROM emergency_contacts WHERE id = $1`, uuid.UUID(contactID))
	if err != nil {
		return fmt.Errorf("delete emergency contact: %w", err)
	}
	return requireAffected(res)
}

// PostgresRoleStore persists the role catalogue.
type PostgresRoleStore struct {
	db *sql.DB
}

func NewPostgresRoleStore(db *sql.DB) *PostgresRoleStore {
	return &PostgresRoleStore{db: db}
}

func (s *PostgresRoleStore) Save(ctx context.Context, role *models.Role) error {
	_, err := txcontext.Use(ctx, s.db).ExecContext(ctx,
		`INSERT INTO roles (id, name) VALUES ($1, $2)`, uuid.UUID(role.ID), role.Name)
	if err != nil {
		return fmt.Errorf("insert role: %w", postgres.TranslateError(err))
	}
	return nil
}

func (s *PostgresRoleStore) FindByID(ctx context.Context, roleID id.RoleID) (*models.Role, error) {
	row := txcontext.Use(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, name FROM roles WHERE id = $1`, uuid.UUID(roleID))
	return scanRole(row)
}

func (s *PostgresRoleStore) FindByName(ctx context.Context, name string) (*models.Role, error) {
	row := txcontext.Use(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, name FROM roles WHERE lower(name) = lower($1)`, name)
	return scanRole(row)
}

func (s *PostgresRoleStore) List(ctx context.Context) ([]*models.Role, error) {
	rows, err := txcontext.Use(ctx, s.db).QueryContext(ctx, `SELECT id, name FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	var out []*models.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return out, nil
}

func scanRole(row scanner) (*models.Role, error) {
	var (
		role  models.Role
		rawID uuid.UUID
	)
	err := row.Scan(&rawID, &role.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan role: %w", err)
	}
	role.ID = id.RoleID(rawID)
	return &role, nil
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
