//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"fmt"
	"time"

	"group-chat/domain"
	"group-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

type IUserRepository interface {
	CreateUser(username, email, hashedPassword string, status domain.UserStatus) (domain.User, error)
	GetUserByID(id int64) (domain.User, error)
	GetUserByUsername(username string) (domain.User, error)
}

type UserRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

func NewUserRepository(db *badger.DB) (*UserRepository, error) {
	seq, err := db.GetSequence([]byte(seqUserKey), 64)
	if err != nil {
		return nil, fmt.Errorf("db.GetSequence: %w", err)
	}
	return &UserRepository{db: db, seq: seq}, nil
}

// Close releases the id sequence lease. Unused leased ids are lost, which
// only leaves gaps; ids stay strictly increasing.
func (u *UserRepository) Close() error {
	return u.seq.Release()
}

// CreateUser persists a new profile and returns it with its assigned id.
// The username doubles as the credential subject, so it must be unique.
func (u *UserRepository) CreateUser(username, email, hashedPassword string, status domain.UserStatus) (domain.User, error) {
	n, err := u.seq.Next()
	if err != nil {
		return domain.User{}, fmt.Errorf("seq.Next: %w", err)
	}

	user := domain.User{
		ID:           int64(n) + 1,
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Status:       status,
		RegisteredAt: time.Now().UTC(),
	}

	data, err := cbor.Marshal(fromUser(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("cbor.Marshal: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		nameKey := usernameKey(username)
		if _, err := txn.Get(nameKey); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(userKey(user.ID), data); err != nil {
			return err
		}
		return txn.Set(nameKey, []byte(fmt.Sprintf("%019d", user.ID)))
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (u *UserRepository) GetUserByID(id int64) (domain.User, error) {
	var record userRecord
	err := u.db.View(func(txn *badger.Txn) error {
		return getRecord(txn, userKey(id), &record)
	})
	if err == badger.ErrKeyNotFound {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return toUser(record), nil
}

// GetUserByUsername resolves the username index, then loads the profile.
func (u *UserRepository) GetUserByUsername(username string) (domain.User, error) {
	var record userRecord
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey(username))
		if err != nil {
			return err
		}

		var id int64
		if err := item.Value(func(val []byte) error {
			_, err := fmt.Sscanf(string(val), "%d", &id)
			return err
		}); err != nil {
			return err
		}

		return getRecord(txn, userKey(id), &record)
	})
	if err == badger.ErrKeyNotFound {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return toUser(record), nil
}

func getRecord(txn *badger.Txn, key []byte, out any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, out)
	})
}
