//go:generate go run go.uber.org/mock/mockgen -source=conversation.go -destination=../mocks/mock_conversation_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"event-lab/domain"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IConversationRepository interface {
	Append(message domain.ChatMessage) error
	GetMessages(conversation domain.ConversationID, cursor *string) ([]domain.ChatMessage, *string, error)
}

type ConversationRepository struct {
	db            *badger.DB
	seq           *badger.Sequence
	log           *slog.Logger
	limitMessages *int
}

// NewConversationRepository leases a badger sequence used to order messages
// appended at the same instant. Close releases it.
func NewConversationRepository(db *badger.DB, log *slog.Logger, limitMessages *int) (*ConversationRepository, error) {
	seq, err := db.GetSequence([]byte("seq:msg"), 100)
	if err != nil {
		return nil, fmt.Errorf("lease message sequence: %w", err)
	}
	return &ConversationRepository{db: db, seq: seq, log: log, limitMessages: limitMessages}, nil
}

func (c *ConversationRepository) Close() error {
	return c.seq.Release()
}

type DiskMessage struct {
	ID            uuid.UUID `json:"id"`
	Conversation  string    `json:"conversation"`
	Sender        string    `json:"sender"`
	Text          string    `json:"text"`
	LinkedEventID string    `json:"linked_event_id,omitempty"`
	At            int64     `json:"at"`
}

// Append persists a message under "msg:{conversation}:{timestamp_padded}:{sequence_padded}".
// The 19-digit timestamp keeps keys sorted by time, the sequence keeps the
// append order of messages sharing a timestamp.
func (c *ConversationRepository) Append(message domain.ChatMessage) error {
	n, err := c.seq.Next()
	if err != nil {
		return err
	}
	key := fmt.Sprintf("msg:%s:%019d:%020d", message.Conversation, message.At.UnixNano(), n)
	bytes, err := json.Marshal(DiskMessage{
		ID:            message.ID,
		Conversation:  string(message.Conversation),
		Sender:        string(message.Sender),
		Text:          message.Text,
		LinkedEventID: string(message.LinkedEventID),
		At:            message.At.UnixNano(),
	})
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetMessages walks a conversation backwards, newest message first.
// The returned cursor is the key suffix of the last message read; passing it
// back resumes right after it. The cursor is nil once nothing is left.
func (c *ConversationRepository) GetMessages(conversation domain.ConversationID, cursor *string) ([]domain.ChatMessage, *string, error) {
	var messages []domain.ChatMessage
	var lastKey string
	err := c.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", conversation)
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Highest possible timestamp, then walk back
			seekKey = append([]byte(prefixStr), []byte("9999999999999999999;")...)
		default:
			seekKey = append([]byte(prefixStr), []byte(*cursor)...)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()) == string(seekKey) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if c.limitMessages != nil && len(messages) == *c.limitMessages {
				c.log.Debug("Maximum of messages reached", "limit", *c.limitMessages)
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefixStr):])
			err := item.Value(func(value []byte) error {
				var disk DiskMessage
				if err := json.Unmarshal(value, &disk); err != nil {
					return err
				}
				messages = append(messages, toChatMessage(disk))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if len(messages) == 0 {
		return messages, nil, nil
	}
	return messages, &lastKey, nil
}

func toChatMessage(d DiskMessage) domain.ChatMessage {
	return domain.ChatMessage{
		ID:            d.ID,
		Conversation:  domain.ConversationID(d.Conversation),
		Sender:        domain.Sender(d.Sender),
		Text:          d.Text,
		LinkedEventID: domain.EventID(d.LinkedEventID),
		At:            fromUnixNano(d.At),
	}
}
