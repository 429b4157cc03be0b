package tx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_CommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO visits`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = SQLRunner{DB: db}.RunInTx(context.Background(), func(ctx context.Context) error {
		_, ok := From(ctx)
		assert.True(t, ok, "transaction bound to context")
		_, err := Use(ctx, db).ExecContext(ctx, `INSERT INTO visits (id) VALUES (1)`)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("member resolution failed")
	err = Run(context.Background(), db, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_NestedReusesOuter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	err = Run(context.Background(), db, func(ctx context.Context) error {
		outer, _ := From(ctx)
		return Run(ctx, db, func(inner context.Context) error {
			got, _ := From(inner)
			assert.Same(t, outer, got)
			return nil
		})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLockRunner_Reentrant(t *testing.T) {
	var r LockRunner
	calls := 0
	err := r.RunInTx(context.Background(), func(ctx context.Context) error {
		calls++
		return r.RunInTx(ctx, func(context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestSQLRunner_AppliesTimeout(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	err = SQLRunner{DB: db, Timeout: time.Minute}.RunInTx(context.Background(), func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
