package devices

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rbustosc/fieldsync/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestGetByCode_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "company_id", "code", "secret_hash", "name"}).
		AddRow(int64(7), int64(3), "TERM-01", "$2a$10$hash", "Gate terminal")
	mock.ExpectQuery(`SELECT id, company_id, code, secret_hash, name FROM devices`).
		WithArgs("TERM-01").
		WillReturnRows(rows)

	got, err := repo.GetByCode(context.Background(), "TERM-01")
	if err != nil {
		t.Fatalf("GetByCode error: %v", err)
	}
	if got.ID != 7 || got.CompanyID != 3 || got.SecretHash != "$2a$10$hash" {
		t.Fatalf("unexpected device: %+v", got)
	}
}

func TestGetByCode_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, company_id, code, secret_hash, name FROM devices`).
		WithArgs("NOPE").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByCode(context.Background(), "NOPE")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected common.ErrNotFound, got %v", err)
	}
}

func TestGetByCode_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, company_id, code, secret_hash, name FROM devices`).
		WithArgs("TERM-01").
		WillReturnError(errors.New("db down"))

	_, err := repo.GetByCode(context.Background(), "TERM-01")
	if err == nil || errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
