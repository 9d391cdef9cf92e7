package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ra-lab-allocator/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var draftRowColumns = []string{"id", "name", "seed", "allocations", "unallocated_labs", "slot_map", "created_by", "created_at", "updated_at"}

func TestDraftRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDraftRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO allocation_drafts")).
		WithArgs(sqlmock.AnyArg(), "Fall draft", nil, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	draft := &models.Draft{Name: "Fall draft", Allocations: models.AllocationList{{RAName: "Asha", Slot: "L1+L2"}}}
	require.NoError(t, repo.Create(context.Background(), draft))
	assert.NotEmpty(t, draft.ID)
	assert.False(t, draft.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDraftRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDraftRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO allocation_drafts")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Draft{Name: "Fall draft"})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDraftRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDraftRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(draftRowColumns).
		AddRow("d-1", "Fall draft", int64(42), `[{"raName":"Asha","slot":"L1+L2"}]`, `[]`, `{"L1":"A1"}`, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, seed, allocations, unallocated_labs, slot_map, created_by, created_at, updated_at FROM allocation_drafts WHERE id = $1")).
		WithArgs("d-1").
		WillReturnRows(rows)

	draft, err := repo.FindByID(context.Background(), "d-1")
	require.NoError(t, err)
	require.Len(t, draft.Allocations, 1)
	assert.Equal(t, "Asha", draft.Allocations[0].RAName)
	assert.Equal(t, "A1", draft.SlotMap["L1"])
	require.NotNil(t, draft.Seed)
	assert.Equal(t, int64(42), *draft.Seed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDraftRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDraftRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, seed, allocations, unallocated_labs, slot_map, created_by, created_at, updated_at FROM allocation_drafts WHERE LOWER(name) LIKE $1 ORDER BY created_at DESC LIMIT 10 OFFSET 10")).
		WithArgs("%fall%").
		WillReturnRows(sqlmock.NewRows(draftRowColumns).AddRow("d-1", "Fall", nil, `[]`, `[]`, `{}`, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM allocation_drafts WHERE LOWER(name) LIKE $1")).
		WithArgs("%fall%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	drafts, total, err := repo.List(context.Background(), models.DraftFilter{Search: "Fall", Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, drafts, 1)
	assert.Equal(t, 11, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDraftRepositoryExistsByName(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDraftRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM allocation_drafts WHERE LOWER(name) = LOWER($1) AND id <> $2 LIMIT 1")).
		WithArgs("Fall", "d-1").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByName(context.Background(), "Fall", "d-1")
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDraftRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDraftRepository(db)

	name := "Renamed"
	allocations := models.AllocationList{}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE allocation_drafts SET name = $1, allocations = $2, updated_at = $3 WHERE id = $4")).
		WithArgs(name, sqlmock.AnyArg(), sqlmock.AnyArg(), "d-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), "d-1", UpdateDraftParams{Name: &name, Allocations: &allocations}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDraftRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDraftRepository(db)

	name := "Renamed"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE allocation_drafts SET name = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "missing", UpdateDraftParams{Name: &name})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, repo.Update(context.Background(), "missing", UpdateDraftParams{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDraftRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDraftRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM allocation_drafts WHERE id = $1")).
		WithArgs("d-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM allocation_drafts WHERE id = $1")).
		WithArgs("d-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "d-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "d-2"), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
