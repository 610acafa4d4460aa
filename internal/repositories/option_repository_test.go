package repositories

import (
	"context"
	"testing"
	"time"

	"caa_portal_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var optionRowColumns = []string{"id", "category", "key", "value", "label", "is_active", "sort_order", "metadata", "created_at", "updated_at"}

func TestOptionRepository_GetActiveOptionsByCategory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOptionRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM system_options\s+WHERE category = \$1 AND is_active = TRUE\s+ORDER BY sort_order, label`).
		WithArgs("nationality").
		WillReturnRows(sqlmock.NewRows(optionRowColumns).
			AddRow(1, "nationality", "KE", "kenyan", "Kenyan", true, 1, nil, now, now).
			AddRow(2, "nationality", nil, "other", "Other", true, 999, nil, now, now))

	opts, err := repo.GetActiveOptionsByCategory(context.Background(), "nationality")
	require.NoError(t, err)
	require.Len(t, opts, 2)
	require.NotNil(t, opts[0].Key)
	assert.Equal(t, "KE", *opts[0].Key)
	assert.Nil(t, opts[1].Key)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOptionRepository_GetActiveOptionsByCategory_InactiveCategoryIsEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOptionRepository(db)

	mock.ExpectQuery(`FROM system_options`).
		WithArgs("retired").
		WillReturnRows(sqlmock.NewRows(optionRowColumns))

	opts, err := repo.GetActiveOptionsByCategory(context.Background(), "retired")
	require.NoError(t, err)
	assert.NotNil(t, opts)
	assert.Empty(t, opts)
}

func TestOptionRepository_UpsertOption(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOptionRepository(db)
	now := time.Now()
	sortOrder := 4

	mock.ExpectQuery(`(?s)INSERT INTO system_options .+ON CONFLICT \(category, value\) DO UPDATE`).
		WithArgs("gender", "nonbinary", "Non-binary", nil, 4, nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(optionRowColumns).
			AddRow(60, "gender", nil, "nonbinary", "Non-binary", true, 4, nil, now, now))

	opt, err := repo.UpsertOption(context.Background(), db, models.OptionUpsert{
		Category: "gender", Value: "nonbinary", Label: "Non-binary", SortOrder: &sortOrder,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(60), opt.ID)
	assert.True(t, opt.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOptionRepository_IsActiveOption(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOptionRepository(db)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("gender", "female").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.IsActiveOption(context.Background(), "gender", "female")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOptionRepository_DeleteOption(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOptionRepository(db)

	mock.ExpectExec(`DELETE FROM system_options WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM system_options WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.DeleteOption(context.Background(), db, 3))
	assert.ErrorIs(t, repo.DeleteOption(context.Background(), db, 4), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslateError(t *testing.T) {
	dup := translateError(&pq.Error{Code: "23505", Constraint: "users_email_key"}, "creating user")
	assert.ErrorIs(t, dup, ErrDuplicateKey)
	assert.Contains(t, dup.Error(), "users_email_key")

	fk := translateError(&pq.Error{Code: "23503", Constraint: "users_organization_id_fkey"}, "creating user")
	assert.ErrorIs(t, fk, ErrForeignKey)

	other := translateError(&pq.Error{Code: "42P01"}, "creating user")
	assert.ErrorIs(t, other, ErrDatabaseError)
}
