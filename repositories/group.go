//go:generate go run go.uber.org/mock/mockgen -source=group.go -destination=../mocks/mock_group_repository.go -package=mocks
package repositories

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"group-chat/domain"
	"group-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

type IGroupRepository interface {
	CreateGroup(ownerID int64, name string) (domain.Group, error)
	GetGroup(id domain.GroupID) (domain.Group, error)
	RenameGroup(id domain.GroupID, name string) (domain.Group, error)
	AddMember(groupID domain.GroupID, userID int64) (bool, error)
	IsMember(groupID domain.GroupID, userID int64) (bool, error)
	MemberIDs(groupID domain.GroupID) ([]int64, error)
	GroupsForUser(userID int64) ([]domain.Group, error)
}

type GroupRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

func NewGroupRepository(db *badger.DB) (*GroupRepository, error) {
	seq, err := db.GetSequence([]byte(seqGroupKey), 64)
	if err != nil {
		return nil, fmt.Errorf("db.GetSequence: %w", err)
	}
	return &GroupRepository{db: db, seq: seq}, nil
}

func (g *GroupRepository) Close() error {
	return g.seq.Release()
}

// CreateGroup persists the group and the owner's membership in one
// transaction: a group never exists without its owner being a member.
func (g *GroupRepository) CreateGroup(ownerID int64, name string) (domain.Group, error) {
	n, err := g.seq.Next()
	if err != nil {
		return domain.Group{}, fmt.Errorf("seq.Next: %w", err)
	}

	now := time.Now().UTC()
	group := domain.Group{
		ID:        domain.GroupID(int64(n) + 1),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
	}

	groupData, err := cbor.Marshal(fromGroup(group))
	if err != nil {
		return domain.Group{}, fmt.Errorf("cbor.Marshal: %w", err)
	}
	memberData, err := cbor.Marshal(membershipRecord{
		GroupID:  int64(group.ID),
		UserID:   ownerID,
		JoinedAt: now.UnixNano(),
	})
	if err != nil {
		return domain.Group{}, fmt.Errorf("cbor.Marshal: %w", err)
	}

	err = g.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(groupKey(group.ID), groupData); err != nil {
			return err
		}
		if err := txn.Set(memberKey(group.ID, ownerID), memberData); err != nil {
			return err
		}
		return txn.Set(userGroupKey(ownerID, group.ID), nil)
	})
	if err != nil {
		return domain.Group{}, err
	}
	return group, nil
}

func (g *GroupRepository) GetGroup(id domain.GroupID) (domain.Group, error) {
	var record groupRecord
	err := g.db.View(func(txn *badger.Txn) error {
		return getRecord(txn, groupKey(id), &record)
	})
	if err == badger.ErrKeyNotFound {
		return domain.Group{}, errors.ErrGroupNotFound
	}
	if err != nil {
		return domain.Group{}, err
	}
	return toGroup(record), nil
}

// RenameGroup re-reads the group inside the transaction so a group deleted
// by the surrounding CRUD layer between read and use surfaces as not found,
// never as a stale write.
func (g *GroupRepository) RenameGroup(id domain.GroupID, name string) (domain.Group, error) {
	var record groupRecord
	err := g.db.Update(func(txn *badger.Txn) error {
		if err := getRecord(txn, groupKey(id), &record); err != nil {
			return err
		}
		record.Name = name

		data, err := cbor.Marshal(record)
		if err != nil {
			return err
		}
		return txn.Set(groupKey(id), data)
	})
	if err == badger.ErrKeyNotFound {
		return domain.Group{}, errors.ErrGroupNotFound
	}
	if err != nil {
		return domain.Group{}, err
	}
	return toGroup(record), nil
}

// AddMember records the membership and reports whether it was actually
// created. An existing membership is left untouched and reported as false,
// which keeps the operation idempotent at the commit level.
func (g *GroupRepository) AddMember(groupID domain.GroupID, userID int64) (bool, error) {
	added := false
	err := g.db.Update(func(txn *badger.Txn) error {
		key := memberKey(groupID, userID)
		if _, err := txn.Get(key); err == nil {
			return nil
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		data, err := cbor.Marshal(membershipRecord{
			GroupID:  int64(groupID),
			UserID:   userID,
			JoinedAt: time.Now().UTC().UnixNano(),
		})
		if err != nil {
			return err
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		if err := txn.Set(userGroupKey(userID, groupID), nil); err != nil {
			return err
		}
		added = true
		return nil
	})
	return added, err
}

func (g *GroupRepository) IsMember(groupID domain.GroupID, userID int64) (bool, error) {
	err := g.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(memberKey(groupID, userID))
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemberIDs returns the user ids holding a membership in the group, in
// ascending id order. Ids are parsed from the key suffix; values are never
// loaded.
func (g *GroupRepository) MemberIDs(groupID domain.GroupID) ([]int64, error) {
	var ids []int64
	err := g.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := memberPrefix(groupID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id, err := parseKeySuffix(it.Item().Key(), len(prefix))
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GroupsForUser returns the groups where the user holds a membership,
// newest group id first. The user-side index is scanned in reverse and each
// group is resolved within the same snapshot; an index entry whose group has
// been deleted in the meantime is skipped.
func (g *GroupRepository) GroupsForUser(userID int64) ([]domain.Group, error) {
	var groups []domain.Group
	err := g.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := userGroupPrefix(userID)
		seekKey := append(append([]byte{}, prefix...), []byte(maxPaddedID)...)

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			groupID, err := parseKeySuffix(it.Item().Key(), len(prefix))
			if err != nil {
				return err
			}

			var record groupRecord
			if err := getRecord(txn, groupKey(domain.GroupID(groupID)), &record); err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}
			groups = append(groups, toGroup(record))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func parseKeySuffix(key []byte, prefixLen int) (int64, error) {
	suffix := strings.TrimLeft(string(key[prefixLen:]), "0")
	if suffix == "" {
		return 0, nil
	}
	return strconv.ParseInt(suffix, 10, 64)
}
