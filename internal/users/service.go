package users

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// ResolveOwner returns the owner for an authenticated identity,
// provisioning a row with the default quota on first sight. Identity
// issuance itself happens elsewhere; this is the "resolve owner by
// identity" seam the storage subsystem consumes.
func (s *Service) ResolveOwner(ctx context.Context, userID, email, displayName string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	user, err := s.Repo.GetByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	if email == "" {
		email = userID + "@local"
	}
	fresh := User{
		ID:           userID,
		Email:        email,
		DisplayName:  displayName,
		Role:         "user",
		StorageQuota: DefaultStorageQuota,
	}
	if err := s.Repo.Upsert(ctx, fresh); err != nil {
		return User{}, err
	}
	return s.Repo.GetByID(ctx, userID)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}
