package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sakif/kudos-board/internal/model"
)

// newMockDB wires gorm's postgres dialect onto a go-sqlmock connection, so
// the generated SQL can be asserted without a running server.
func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), gormConfig())
	require.NoError(t, err)

	return newWithGorm(gdb), mock
}

var errConnReset = errors.New("connection reset by peer")

func TestGetUser_NotFoundReturnsNil(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name", "last_name", "profile_image_url", "created_at", "updated_at"}))

	user, err := db.GetUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser_Found(t *testing.T) {
	db, mock := newMockDB(t)
	ts := now()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name", "last_name", "profile_image_url", "created_at", "updated_at"}).
			AddRow("seed_1", "alice@example.com", "Alice", "Engineer", nil, ts, ts))

	user, err := db.GetUser(context.Background(), "seed_1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "seed_1", user.ID)
	assert.Equal(t, "Alice Engineer", user.DisplayName())
	assert.Nil(t, user.ProfileImageURL)
}

func TestGetUser_StorageFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(errConnReset)

	user, err := db.GetUser(context.Background(), "seed_1")
	assert.ErrorIs(t, err, errConnReset)
	assert.Nil(t, user)
}

func TestUpsertUser_UsesOnConflictWithCoalesce(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`INSERT INTO "users" .+ ON CONFLICT \("id"\) DO UPDATE SET .*COALESCE\(excluded\.email, users\.email\)`).
		WillReturnError(errConnReset)

	err := db.UpsertUser(context.Background(), &model.User{ID: "seed_1"})
	assert.ErrorIs(t, err, errConnReset)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateKudo_StorageFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO "kudos"`).WillReturnError(errConnReset)

	_, err := db.CreateKudo(context.Background(), "seed_1", model.NewKudo{
		ToUserID: "seed_2",
		Message:  "Thanks for the design review",
		Category: model.CategoryHelpful,
	})
	assert.ErrorIs(t, err, errConnReset)
}

func TestListKudos_FiltersHiddenNewestFirst(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "kudos" WHERE hidden = $1 ORDER BY created_at DESC, id DESC`)).
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "from_user_id", "to_user_id", "message", "category", "hidden", "created_at"}))

	kudos, err := db.ListKudos(context.Background())
	require.NoError(t, err)
	assert.Empty(t, kudos)
	assert.NotNil(t, kudos)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHideKudo(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "kudos" SET "hidden"=$1 WHERE id = $2`)).
		WithArgs(true, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Zero rows affected: unknown id is still a success.
	require.NoError(t, db.HideKudo(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}
