//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"group-chat/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	StoreMessage(groupID domain.GroupID, userID int64, text string) (domain.Message, error)
	GetMessages(groupID domain.GroupID, limit int, beforeID *int64) ([]domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte(seqMessageKey), 128)
	if err != nil {
		return nil, fmt.Errorf("db.GetSequence: %w", err)
	}
	return &MessageRepository{db: db, seq: seq, log: log}, nil
}

func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

// StoreMessage persists a message under "msg:{group}:{id}" with both parts
// zero-padded, so a plain prefix scan yields messages in id order. The id is
// taken from a badger sequence at commit time and is the authoritative order
// between messages of a group.
func (m *MessageRepository) StoreMessage(groupID domain.GroupID, userID int64, text string) (domain.Message, error) {
	n, err := m.seq.Next()
	if err != nil {
		return domain.Message{}, fmt.Errorf("seq.Next: %w", err)
	}

	message := domain.Message{
		ID:        int64(n) + 1,
		GroupID:   groupID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	data, err := cbor.Marshal(fromMessage(message))
	if err != nil {
		return domain.Message{}, fmt.Errorf("cbor.Marshal: %w", err)
	}

	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(groupID, message.ID), data)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// GetMessages returns up to limit messages of the group with id < beforeID
// (all ids when beforeID is nil), oldest first. The iterator walks backwards
// from the pagination bound so the result is always the most recent window,
// then the batch is flipped into chronological order.
func (m *MessageRepository) GetMessages(groupID domain.GroupID, limit int, beforeID *int64) ([]domain.Message, error) {
	var raw [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := messagePrefix(groupID)

		var seekKey []byte
		switch beforeID {
		case nil:
			seekKey = append(append([]byte{}, prefix...), []byte(maxPaddedID)...)
		default:
			// Largest possible key strictly below beforeID.
			seekKey = messageKey(groupID, *beforeID-1)
		}

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if len(raw) == limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", limit))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte{}, value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, b := range raw {
		var record messageRecord
		if err := cbor.Unmarshal(b, &record); err != nil {
			return nil, err
		}
		messages = append(messages, toMessage(record))
	}
	return lo.Reverse(messages), nil
}
