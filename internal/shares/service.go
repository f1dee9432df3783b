package shares

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediavault-backend/internal/files"
	"mediavault-backend/internal/shared/telemetry"
)

type Service struct {
	Repo          Repo
	Files         *files.Service
	PublicBaseURL string
}

func NewService(repo Repo, filesSvc *files.Service, publicBaseURL string) *Service {
	return &Service{Repo: repo, Files: filesSvc, PublicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// CreateInput carries a grant request from the file's owner.
type CreateInput struct {
	FileID         string
	CallerID       string
	CallerAdmin    bool
	ExpiresAt      *time.Time
	MaxAccessCount *int
}

// CreateGrant mints a public grant for a file, or re-serves the file's
// existing active grant unchanged: sharing twice never resets a counter
// or extends a deadline. A re-served grant missing its QR gets one
// rendered on the way out.
func (s *Service) CreateGrant(ctx context.Context, in CreateInput) (ShareGrant, error) {
	if s == nil || s.Repo == nil {
		return ShareGrant{}, errors.New("shares service not configured")
	}

	f, err := s.Files.Meta(ctx, in.FileID)
	if err != nil {
		return ShareGrant{}, err
	}
	if files.Authorize(files.Caller{UserID: in.CallerID, Admin: in.CallerAdmin}, f) == files.AccessDenied {
		return ShareGrant{}, files.ErrUnauthorized
	}

	now := time.Now().UTC()
	existing, err := s.Repo.GetActiveByFile(ctx, in.FileID)
	if err == nil && !existing.Expired(now) && !existing.Exhausted() {
		if len(existing.QRCode) == 0 {
			if qr := renderQR(s.ShareURL(existing.ShareToken)); qr != nil {
				if err := s.Repo.UpdateQR(ctx, existing.ID, qr); err == nil {
					existing.QRCode = qr
				}
			}
		}
		return existing, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return ShareGrant{}, err
	}
	// An expired or exhausted grant may still read active until its lazy
	// deactivation lands; retire it so the file keeps a single active
	// grant once the replacement exists.
	if err == nil {
		if derr := s.Repo.Deactivate(ctx, existing.ID); derr != nil {
			return ShareGrant{}, derr
		}
	}

	g := ShareGrant{
		ID:             uuid.NewString(),
		FileID:         in.FileID,
		ShareToken:     uuid.NewString(),
		ExpiresAt:      in.ExpiresAt,
		MaxAccessCount: in.MaxAccessCount,
		Active:         true,
		CreatedAt:      now,
	}
	g.QRCode = renderQR(s.ShareURL(g.ShareToken))

	if err := s.Repo.Create(ctx, g); err != nil {
		return ShareGrant{}, err
	}
	telemetry.Info("shares.created", map[string]any{
		"share_id": g.ID,
		"file_id":  g.FileID,
	})
	return g, nil
}

// Resolve returns grant info for a token without consuming an access.
// The state checks mirror Access so an expired or exhausted link reads
// as dead even before its lazy deactivation lands.
func (s *Service) Resolve(ctx context.Context, token string) (ShareGrant, files.File, error) {
	g, err := s.Repo.GetByToken(ctx, token)
	if err != nil {
		return ShareGrant{}, files.File{}, err
	}
	if !g.Active {
		return ShareGrant{}, files.File{}, ErrShareInactive
	}
	if g.Expired(time.Now().UTC()) {
		return ShareGrant{}, files.File{}, ErrShareExpired
	}
	if g.Exhausted() {
		return ShareGrant{}, files.File{}, ErrShareLimitReached
	}
	f, err := s.Files.Meta(ctx, g.FileID)
	if err != nil {
		return ShareGrant{}, files.File{}, err
	}
	return g, f, nil
}

// AccessAndServe consumes one access and returns the payload.
func (s *Service) AccessAndServe(ctx context.Context, token string) (files.File, ShareGrant, error) {
	g, err := s.Repo.Access(ctx, token, time.Now().UTC())
	if err != nil {
		return files.File{}, ShareGrant{}, err
	}
	f, err := s.Files.Get(ctx, g.FileID)
	if err != nil {
		return files.File{}, ShareGrant{}, err
	}
	return f, g, nil
}

// QRFor returns the rendered QR for a token, ErrNotFound when the grant
// has none.
func (s *Service) QRFor(ctx context.Context, token string) ([]byte, error) {
	g, err := s.Repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(g.QRCode) == 0 {
		return nil, ErrNotFound
	}
	return g.QRCode, nil
}

// Deactivate turns a grant off. Owner of the shared file only;
// idempotent once authorized.
func (s *Service) Deactivate(ctx context.Context, grantID, callerID string, callerAdmin bool) error {
	g, err := s.Repo.GetByID(ctx, grantID)
	if err != nil {
		return err
	}
	f, err := s.Files.Meta(ctx, g.FileID)
	if err != nil {
		return err
	}
	if files.Authorize(files.Caller{UserID: callerID, Admin: callerAdmin}, f) == files.AccessDenied {
		return files.ErrUnauthorized
	}
	return s.Repo.Deactivate(ctx, grantID)
}

// ShareURL is the public link a grant's QR encodes.
func (s *Service) ShareURL(token string) string {
	return s.PublicBaseURL + "/api/v1/public/share/" + token
}
