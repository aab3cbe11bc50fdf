package cascade_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"menufic/apperr"
	"menufic/cascade"
	"menufic/model"
	"menufic/storage"
	"menufic/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func categoryPlan() cascade.Plan {
	img := "user/u1/restaurant/menu/m1/a.png"
	return cascade.ForCategory(&model.Category{
		ID:     "c1",
		UserID: "u1",
		Items:  []model.MenuItem{{ID: "i1", ImageID: &img}},
	})
}

func TestExecuteRollsBackOnFailedStatement(t *testing.T) {
	db, mock := newMockDB(t)
	store := storage.NewMemoryStore()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "menu_items"`)).
		WithArgs("c1", "u1").
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	exec := cascade.NewExecutor(db, store, testutil.Logger(t))
	outcome, err := exec.Execute(context.Background(), categoryPlan())
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.ErrorContains(t, err, "deadlock detected")

	// Storage cleanup runs alongside the transaction regardless of its result.
	assert.True(t, outcome.Attempted)
	assert.Equal(t, []string{"delete"}, store.Calls())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteCommitsInLeafToRootOrder(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "menu_items" WHERE category_id IN ($1) AND user_id = $2`)).
		WithArgs("c1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "categories" WHERE id IN ($1) AND user_id = $2`)).
		WithArgs("c1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "images" WHERE id IN ($1)`)).
		WithArgs("user/u1/restaurant/menu/m1/a.png").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := cascade.NewExecutor(db, storage.NewMemoryStore(), testutil.Logger(t)).Execute(context.Background(), categoryPlan())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteTargetGoneIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "menu_items"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "categories"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := cascade.NewExecutor(db, storage.NewMemoryStore(), testutil.Logger(t)).Execute(context.Background(), categoryPlan())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
