package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/kudos-board/internal/apperror"
	"github.com/sakif/kudos-board/internal/auth"
	"github.com/sakif/kudos-board/internal/model"
	"github.com/sakif/kudos-board/internal/repository"
)

// ProfileFetcher looks up a caller's full profile at the identity provider.
// auth.UserInfoClient implements it.
type ProfileFetcher interface {
	Fetch(ctx context.Context, accessToken string) (*auth.Profile, error)
}

// UserService keeps the users table in step with verified identities.
//
//	UserHandler / SyncUser middleware → UserService → UserRepository
//	                                  ↘ ProfileFetcher (optional)
type UserService struct {
	users    repository.UserRepository
	profiles ProfileFetcher
	logger   *slog.Logger
}

// NewUserService creates a UserService. profiles may be nil, which turns
// userinfo enrichment off.
func NewUserService(users repository.UserRepository, profiles ProfileFetcher, logger *slog.Logger) *UserService {
	return &UserService{
		users:    users,
		profiles: profiles,
		logger:   logger,
	}
}

// Sync upserts the caller from the token claims alone.
// Claims the token does not carry leave the stored values untouched.
func (s *UserService) Sync(ctx context.Context, id *auth.Identity) (*model.User, error) {
	if id == nil || id.UserID == "" {
		return nil, apperror.Unauthorized("Unauthorized")
	}

	user := userFromIdentity(id)
	if err := s.users.UpsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("upserting user %s: %w", id.UserID, err)
	}

	s.logger.Debug("user upserted",
		slog.String("userID", user.ID),
		slog.String("name", user.DisplayName()),
	)
	return user, nil
}

// CurrentUser returns the caller's stored record after syncing it.
//
// USERINFO ENRICHMENT:
// Many identity providers keep session tokens small and leave the email out.
// When that happens and a ProfileFetcher is configured, the missing claims
// are fetched from the provider first. A failed fetch is logged and the
// request carries on with what the token had.
func (s *UserService) CurrentUser(ctx context.Context, id *auth.Identity) (*model.User, error) {
	if id == nil || id.UserID == "" {
		return nil, apperror.Unauthorized("Unauthorized")
	}

	if id.Email == "" && s.profiles != nil {
		id = s.enrich(ctx, id)
	}

	return s.Sync(ctx, id)
}

// List returns every user, for the recipient picker.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// enrich returns a copy of id with empty fields filled from the userinfo
// endpoint. The profile must belong to the same subject.
func (s *UserService) enrich(ctx context.Context, id *auth.Identity) *auth.Identity {
	p, err := s.profiles.Fetch(ctx, id.Token)
	if err != nil {
		s.logger.Warn("userinfo lookup failed",
			slog.String("userID", id.UserID),
			slog.String("error", err.Error()),
		)
		return id
	}
	if p.Subject != id.UserID {
		s.logger.Warn("userinfo subject mismatch",
			slog.String("userID", id.UserID),
			slog.String("subject", p.Subject),
		)
		return id
	}

	out := *id
	fill(&out.Email, p.Email)
	fill(&out.FirstName, p.GivenName)
	fill(&out.LastName, p.FamilyName)
	fill(&out.ProfileImageURL, p.Picture)
	return &out
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func userFromIdentity(id *auth.Identity) *model.User {
	return &model.User{
		ID:              id.UserID,
		Email:           model.StringPtr(id.Email),
		FirstName:       model.StringPtr(id.FirstName),
		LastName:        model.StringPtr(id.LastName),
		ProfileImageURL: model.StringPtr(id.ProfileImageURL),
	}
}
