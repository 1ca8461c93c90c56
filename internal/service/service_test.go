package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/sakif/kudos-board/internal/model"
)

// =========================================================================
// FAKES
// =========================================================================
//
// fakeStore implements repository.UserRepository and
// repository.KudoRepository in memory. The *Err fields simulate a database
// failure for the matching method.
type fakeStore struct {
	users  map[string]model.User
	kudos  []model.Kudo
	hidden []int64

	listUsersErr error
	upsertErr    error
	createErr    error
	listKudosErr error
	hideErr      error

	createCalls int
	upsertCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]model.User)}
}

func (f *fakeStore) GetUser(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeStore) ListUsers(context.Context) ([]model.User, error) {
	if f.listUsersErr != nil {
		return nil, f.listUsersErr
	}
	out := []model.User{}
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeStore) UpsertUser(_ context.Context, user *model.User) error {
	f.upsertCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	stored, ok := f.users[user.ID]
	if !ok {
		stored = model.User{ID: user.ID, CreatedAt: time.Now()}
	}
	if user.Email != nil {
		stored.Email = user.Email
	}
	if user.FirstName != nil {
		stored.FirstName = user.FirstName
	}
	if user.LastName != nil {
		stored.LastName = user.LastName
	}
	if user.ProfileImageURL != nil {
		stored.ProfileImageURL = user.ProfileImageURL
	}
	stored.UpdatedAt = time.Now()
	f.users[user.ID] = stored
	*user = stored
	return nil
}

func (f *fakeStore) CreateKudo(_ context.Context, fromUserID string, in model.NewKudo) (*model.Kudo, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	k := model.Kudo{
		ID:         int64(len(f.kudos) + 1),
		FromUserID: fromUserID,
		ToUserID:   in.ToUserID,
		Message:    in.Message,
		Category:   in.Category,
		CreatedAt:  time.Now(),
	}
	f.kudos = append(f.kudos, k)
	return &k, nil
}

func (f *fakeStore) ListKudos(context.Context) ([]model.KudoWithUser, error) {
	if f.listKudosErr != nil {
		return nil, f.listKudosErr
	}
	out := []model.KudoWithUser{}
	for i := len(f.kudos) - 1; i >= 0; i-- {
		if !f.kudos[i].Hidden {
			out = append(out, model.KudoWithUser{Kudo: f.kudos[i]})
		}
	}
	return out, nil
}

func (f *fakeStore) HideKudo(_ context.Context, id int64) error {
	if f.hideErr != nil {
		return f.hideErr
	}
	f.hidden = append(f.hidden, id)
	for i := range f.kudos {
		if f.kudos[i].ID == id {
			f.kudos[i].Hidden = true
		}
	}
	return nil
}

// fakeRecorder counts metric events.
type fakeRecorder struct {
	created map[model.Category]int
	hidden  int
}

func (r *fakeRecorder) KudoCreated(c model.Category) {
	if r.created == nil {
		r.created = make(map[model.Category]int)
	}
	r.created[c]++
}

func (r *fakeRecorder) KudoHidden() { r.hidden++ }

var errDBDown = errors.New("database is down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
