package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitreg/internal/visitor/models"
	id "visitreg/pkg/domain"
	"visitreg/pkg/platform/sentinel"
)

var visitorRowColumns = []string{
	"id", "identity_id", "first_name", "last_name", "email", "phone", "role_id", "emergency_contact_id", "created_at",
}

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return mock, db
}

func TestPostgresVisitorStore_SaveTeamMember(t *testing.T) {
	mock, db := setupMockDB(t)
	store := NewPostgresVisitorStore(db)
	visitor := &models.Visitor{
		ID:        id.VisitorID(uuid.New()),
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "0400 000 000",
		RoleID:    id.RoleID(uuid.New()),
		CreatedAt: time.Now(),
	}

	mock.ExpectExec(`INSERT INTO visitors`).
		WithArgs(visitor.ID.String(), nil, "Ada", "Lovelace", "ada@example.com", "0400 000 000",
			visitor.RoleID.String(), nil, visitor.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.Save(context.Background(), visitor))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresVisitorStore_FindByIdentity(t *testing.T) {
	mock, db := setupMockDB(t)
	store := NewPostgresVisitorStore(db)
	visitorID, identityID, roleID, contactID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	created := time.Date(2022, 12, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM visitors WHERE identity_id = \$1`).
		WithArgs(identityID.String()).
		WillReturnRows(sqlmock.NewRows(visitorRowColumns).
			AddRow(visitorID.String(), identityID.String(), "Ada", "Lovelace", "ada@example.com", "0400 000 000",
				roleID.String(), contactID.String(), created))

	visitor, err := store.FindByIdentity(context.Background(), id.IdentityID(identityID))
	require.NoError(t, err)
	assert.Equal(t, id.VisitorID(visitorID), visitor.ID)
	require.NotNil(t, visitor.IdentityID)
	assert.Equal(t, id.IdentityID(identityID), *visitor.IdentityID)
	require.NotNil(t, visitor.EmergencyContactID)
	assert.Equal(t, id.ContactID(contactID), *visitor.EmergencyContactID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresVisitorStore_FindMissing(t *testing.T) {
	mock, db := setupMockDB(t)
	store := NewPostgresVisitorStore(db)
	mock.ExpectQuery(`SELECT .* FROM visitors WHERE id = \$1`).WillReturnError(sql.ErrNoRows)

	_, err := store.FindByID(context.Background(), id.VisitorID(uuid.New()))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresVisitorStore_DeleteMissing(t *testing.T) {
	mock, db := setupMockDB(t)
	store := NewPostgresVisitorStore(db)
	mock.ExpectExec(`DELETE FROM visitors`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete(context.Background(), id.VisitorID(uuid.New()))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresRoleStore_FindByName(t *testing.T) {
	mock, db := setupMockDB(t)
	store := NewPostgresRoleStore(db)
	roleID := uuid.New()

	mock.ExpectQuery(`SELECT id, name FROM roles WHERE lower\(name\) = lower\(\$1\)`).
		WithArgs("contractor").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(roleID.String(), "Contractor"))

	role, err := store.FindByName(context.Background(), "contractor")
	require.NoError(t, err)
	assert.Equal(t, id.RoleID(roleID), role.ID)
	assert.Equal(t, "Contractor", role.Name)
}

func TestPostgresRoleStore_List(t *testing.T) {
	mock, db := setupMockDB(t)
	store := NewPostgresRoleStore(db)

	mock.ExpectQuery(`SELECT id, name FROM roles ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(uuid.NewString(), "Contractor").
			AddRow(uuid.NewString(), "Visitor"))

	roles, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "Visitor", roles[1].Name)
}

func TestPostgresContactStore_RoundTrip(t *testing.T) {
	mock, db := setupMockDB(t)
	store := NewPostgresContactStore(db)
	contact := &models.EmergencyContact{ID: id.ContactID(uuid.New()), Name: "Grace", Phone: "0400 111 222", Relationship: "Friend"}

	mock.ExpectExec(`INSERT INTO emergency_contacts`).
		WithArgs(contact.ID.String(), "Grace", "0400 111 222", "Friend").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT id, name, phone, relationship FROM emergency_contacts`).
		WithArgs(contact.ID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone", "relationship"}).
			AddRow(contact.ID.String(), "Grace", "0400 111 222", "Friend"))

	require.NoError(t, store.Save(context.Background(), contact))
	found, err := store.FindByID(context.Background(), contact.ID)
	require.NoError(t, err)
	assert.Equal(t, *contact, *found)
	require.NoError(t, mock.ExpectationsWereMet())
}
