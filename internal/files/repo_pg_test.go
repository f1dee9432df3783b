package files

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newFixtureFile() File {
	return File{
		ID:         "file-1",
		UserID:     "user-1",
		FileName:   "photo.jpg",
		FileType:   "image/jpeg",
		FileSize:   4,
		Data:       []byte("data"),
		Category:   CategoryImage,
		UploadedAt: time.Now().UTC(),
	}
}

func TestPGRepoCreateReservesQuota(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	f := newFixtureFile()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT storage_used, storage_quota FROM users").
		WithArgs(f.UserID).
		WillReturnRows(sqlmock.NewRows([]string{"storage_used", "storage_quota"}).AddRow(int64(100), int64(1000)))
	mock.ExpectExec("INSERT INTO files").
		WithArgs(f.ID, f.UserID, f.FileName, f.FileType, f.FileSize, f.Data, []byte(nil), string(f.Category), f.Description, f.UploadedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE users SET storage_used = storage_used").
		WithArgs(f.FileSize, f.UserID).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Create(context.Background(), f); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateQuotaExceededWritesNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	f := newFixtureFile()
	f.FileSize = 50

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT storage_used, storage_quota FROM users").
		WithArgs(f.UserID).
		WillReturnRows(sqlmock.NewRows([]string{"storage_used", "storage_quota"}).AddRow(int64(960), int64(1000)))
	mock.ExpectRollback()

	if err := repo.Create(context.Background(), f); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateClassifiesPacketLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	f := newFixtureFile()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT storage_used, storage_quota FROM users").
		WithArgs(f.UserID).
		WillReturnRows(sqlmock.NewRows([]string{"storage_used", "storage_quota"}).AddRow(int64(0), int64(1000)))
	mock.ExpectExec("INSERT INTO files").
		WillReturnError(errors.New("Packet for query is too large (16777216 > 4194304)"))
	mock.ExpectRollback()

	err = repo.Create(context.Background(), f)
	var limitErr *StorageLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected StorageLimitError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteCascadeOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	uploadedAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, user_id, file_name, file_type, file_size, category, uploaded_at FROM files").
		WithArgs("file-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "file_name", "file_type", "file_size", "category", "uploaded_at"}).
			AddRow("file-1", "user-1", "clip.mp4", "video/mp4", int64(42), "VIDEO", uploadedAt))
	mock.ExpectExec("UPDATE files SET removed = TRUE").
		WithArgs("file-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE posts SET file_id = NULL").
		WithArgs("file-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE messages SET file_id = NULL").
		WithArgs("file-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM public_shares").
		WithArgs("file-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET storage_used = GREATEST").
		WithArgs(int64(42), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM files").
		WithArgs("file-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleted, err := repo.Delete(context.Background(), "file-1", "user-1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.FileSize != 42 || deleted.Category != CategoryVideo {
		t.Fatalf("unexpected deleted file %+v", deleted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteRejectsNonOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, user_id, file_name, file_type, file_size, category, uploaded_at FROM files").
		WithArgs("file-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "file_name", "file_type", "file_size", "category", "uploaded_at"}).
			AddRow("file-1", "owner-1", "clip.mp4", "video/mp4", int64(42), "VIDEO", time.Now().UTC()))
	mock.ExpectRollback()

	if _, err := repo.Delete(context.Background(), "file-1", "intruder"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
