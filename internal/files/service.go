package files

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediavault-backend/internal/extract"
	"mediavault-backend/internal/imaging"
	"mediavault-backend/internal/shared/telemetry"
	"mediavault-backend/internal/shared/util"
	"mediavault-backend/internal/users"
)

type Service struct {
	Repo         Repo
	Owners       *users.Service
	MaxFileBytes int64
}

func NewService(repo Repo, owners *users.Service, maxFileBytes int64) *Service {
	return &Service{Repo: repo, Owners: owners, MaxFileBytes: maxFileBytes}
}

// UploadInput carries everything needed to store a file for an
// authenticated identity.
type UploadInput struct {
	OwnerID     string
	OwnerEmail  string
	OwnerName   string
	FileName    string
	FileType    string
	Description string
	Data        []byte
}

// Upload validates, classifies and persists a payload. Image uploads get
// a fixed-width thumbnail rendered up front; document uploads with no
// description get a short excerpt when one can be extracted. The quota
// reservation happens inside the repo write, so a rejected upload leaves
// the ledger untouched.
func (s *Service) Upload(ctx context.Context, in UploadInput) (File, error) {
	if s == nil || s.Repo == nil {
		return File{}, errors.New("files service not configured")
	}
	if len(in.Data) == 0 {
		return File{}, errors.New("file payload is empty")
	}
	if s.MaxFileBytes > 0 && int64(len(in.Data)) > s.MaxFileBytes {
		return File{}, ErrFileTooLarge
	}

	owner, err := s.Owners.ResolveOwner(ctx, in.OwnerID, in.OwnerEmail, in.OwnerName)
	if err != nil {
		return File{}, err
	}

	name, err := util.SanitizeFileName(in.FileName)
	if err != nil {
		return File{}, err
	}

	f := File{
		ID:          uuid.NewString(),
		UserID:      owner.ID,
		FileName:    name,
		FileType:    strings.TrimSpace(in.FileType),
		FileSize:    int64(len(in.Data)),
		Data:        in.Data,
		Category:    CategoryFor(in.FileType, name),
		Description: strings.TrimSpace(in.Description),
		UploadedAt:  time.Now().UTC(),
	}

	if f.Category == CategoryImage {
		f.Thumbnail = imaging.Thumbnail(f.Data)
	}
	if f.Description == "" && f.Category == CategoryDocument {
		if excerpt, err := extract.Excerpt(f.Data, f.FileType, f.FileName); err == nil && excerpt != "" {
			f.Description = excerpt
		}
	}

	if err := s.Repo.Create(ctx, f); err != nil {
		return File{}, err
	}

	telemetry.Info("files.uploaded", map[string]any{
		"file_id":  f.ID,
		"user_id":  f.UserID,
		"category": string(f.Category),
		"size":     f.FileSize,
	})
	f.Data = nil
	return f, nil
}

// Get loads the full file including its payload.
func (s *Service) Get(ctx context.Context, id string) (File, error) {
	if s == nil || s.Repo == nil {
		return File{}, errors.New("files service not configured")
	}
	if strings.TrimSpace(id) == "" {
		return File{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// Meta loads the file's metadata without touching the binary columns.
func (s *Service) Meta(ctx context.Context, id string) (File, error) {
	if s == nil || s.Repo == nil {
		return File{}, errors.New("files service not configured")
	}
	if strings.TrimSpace(id) == "" {
		return File{}, ErrNotFound
	}
	return s.Repo.GetMeta(ctx, id)
}

// List returns the owner's files, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]File, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("files service not configured")
	}
	return s.Repo.ListByUser(ctx, userID)
}

// Delete hard-deletes one of the caller's files, cascading through
// references, shares and the storage ledger.
func (s *Service) Delete(ctx context.Context, id, ownerID string) (File, error) {
	if s == nil || s.Repo == nil {
		return File{}, errors.New("files service not configured")
	}
	f, err := s.Repo.Delete(ctx, id, ownerID)
	if err != nil {
		return File{}, err
	}
	telemetry.Info("files.deleted", map[string]any{
		"file_id": f.ID,
		"user_id": f.UserID,
		"size":    f.FileSize,
	})
	return f, nil
}
