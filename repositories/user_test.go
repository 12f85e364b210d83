package repositories

import (
	"testing"

	"group-chat/domain"
	"group-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Create_User_And_Get_By_ID(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository, err := NewUserRepository(db)
	req.NoError(err)
	defer repository.Close()

	// When a user is created
	created, err := repository.CreateUser("alice", "alice@example.com", "hash", domain.StatusSimple)
	req.NoError(err)
	req.Equal(int64(1), created.ID)
	req.False(created.RegisteredAt.IsZero())

	// Then it can be read back by id
	fetched, err := repository.GetUserByID(created.ID)
	req.NoError(err)
	req.Equal(created.Username, fetched.Username)
	req.Equal(created.Email, fetched.Email)
	req.Equal(created.Status, fetched.Status)
}

func Test_Create_Multiple_Users_Assigns_Increasing_IDs(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository, err := NewUserRepository(db)
	req.NoError(err)
	defer repository.Close()

	alice, err := repository.CreateUser("alice", "alice@example.com", "hash", domain.StatusSimple)
	req.NoError(err)
	bob, err := repository.CreateUser("bob", "bob@example.com", "hash", domain.StatusAdmin)
	req.NoError(err)

	req.Greater(bob.ID, alice.ID)
}

func Test_Get_User_By_Username(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository, err := NewUserRepository(db)
	req.NoError(err)
	defer repository.Close()

	created, err := repository.CreateUser("alice", "alice@example.com", "hash", domain.StatusSimple)
	req.NoError(err)

	fetched, err := repository.GetUserByUsername("alice")
	req.NoError(err)
	req.Equal(created.ID, fetched.ID)
	req.Equal("alice", fetched.Username)
}

func Test_Create_User_Duplicate_Username(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository, err := NewUserRepository(db)
	req.NoError(err)
	defer repository.Close()

	_, err = repository.CreateUser("alice", "alice@example.com", "hash", domain.StatusSimple)
	req.NoError(err)

	// When the same username registers again
	_, err = repository.CreateUser("alice", "other@example.com", "hash", domain.StatusSimple)

	// Then the second creation is refused
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_Get_Unknown_User(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository, err := NewUserRepository(db)
	req.NoError(err)
	defer repository.Close()

	_, err = repository.GetUserByID(42)
	req.ErrorIs(err, errors.ErrUserNotFound)

	_, err = repository.GetUserByUsername("nobody")
	req.ErrorIs(err, errors.ErrUserNotFound)
}
