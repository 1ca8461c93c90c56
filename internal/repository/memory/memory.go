// Package memory is an in-process repository.Store.
//
// It keeps the same contract as the SQL stores (foreign keys, upsert merge,
// hidden filtering, newest-first order) so handler and server tests can run
// the full stack without a database. Data lives only as long as the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sakif/kudos-board/internal/model"
	"github.com/sakif/kudos-board/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store guards all state with one RWMutex: reads (feed, users) share the
// lock, writes take it exclusively.
type Store struct {
	mu     sync.RWMutex
	users  map[string]model.User
	kudos  []model.Kudo // insertion order == id order
	nextID int64

	// now is swappable so tests can force equal timestamps.
	now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:  make(map[string]model.User),
		nextID: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// UpsertUser merges non-nil profile fields into an existing user or inserts
// a new one, then copies the stored row back into user.
func (s *Store) UpsertUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now()
	stored, ok := s.users[user.ID]
	if !ok {
		stored = model.User{ID: user.ID, CreatedAt: ts}
	}
	stored.Email = coalesce(user.Email, stored.Email)
	stored.FirstName = coalesce(user.FirstName, stored.FirstName)
	stored.LastName = coalesce(user.LastName, stored.LastName)
	stored.ProfileImageURL = coalesce(user.ProfileImageURL, stored.ProfileImageURL)
	stored.UpdatedAt = ts

	s.users[user.ID] = stored
	*user = stored
	return nil
}

// GetUser returns a copy of the user, or (nil, nil) when unknown.
func (s *Store) GetUser(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// ListUsers returns all users ordered by creation time, then id.
func (s *Store) ListUsers(context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// CreateKudo appends a kudo. Both users must exist, as with a foreign key.
func (s *Store) CreateKudo(_ context.Context, fromUserID string, in model.NewKudo) (*model.Kudo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []string{fromUserID, in.ToUserID} {
		if _, ok := s.users[id]; !ok {
			return nil, fmt.Errorf("memory: inserting kudo: foreign key violation: user %q does not exist", id)
		}
	}

	k := model.Kudo{
		ID:         s.nextID,
		FromUserID: fromUserID,
		ToUserID:   in.ToUserID,
		Message:    in.Message,
		Category:   in.Category,
		CreatedAt:  s.now(),
	}
	s.nextID++
	s.kudos = append(s.kudos, k)

	return &k, nil
}

// ListKudos returns visible kudos newest first, ties broken by higher id.
func (s *Store) ListKudos(context.Context) ([]model.KudoWithUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	feed := []model.KudoWithUser{}
	for _, k := range s.kudos {
		if k.Hidden {
			continue
		}
		feed = append(feed, model.KudoWithUser{
			Kudo:     k,
			FromUser: s.users[k.FromUserID],
			ToUser:   s.users[k.ToUserID],
		})
	}
	sort.SliceStable(feed, func(i, j int) bool {
		if !feed[i].CreatedAt.Equal(feed[j].CreatedAt) {
			return feed[i].CreatedAt.After(feed[j].CreatedAt)
		}
		return feed[i].ID > feed[j].ID
	})
	return feed, nil
}

// HideKudo sets Hidden on the matching kudo, if any.
func (s *Store) HideKudo(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.kudos {
		if s.kudos[i].ID == id {
			s.kudos[i].Hidden = true
			return nil
		}
	}
	return nil
}

func coalesce(incoming, stored *string) *string {
	if incoming != nil {
		v := *incoming
		return &v
	}
	return stored
}
