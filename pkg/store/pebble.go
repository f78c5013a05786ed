package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"chatportal/pkg/logger"
	"chatportal/pkg/models"
	"chatportal/pkg/telemetry"
)

// ErrNotFound is returned when a conversation, message or share token is
// absent from the store.
var ErrNotFound = errors.New("not found")

// Key layout:
//
//	conv:<id>:meta                         conversation JSON
//	conv:<id>:msg:<padded-unixnano>-<seq>  message JSON, iteration order = creation order
//	msg:<messageID>                        the conv msg key the message lives under
//	share:<token>                          conversation ID
const (
	convPrefix  = "conv:"
	msgIndex    = "msg:"
	sharePrefix = "share:"
)

// Store is a key-ordered document store for conversations and messages,
// backed by Pebble. It is opened by the host process and injected into the
// engine; it performs no locking beyond Pebble's own write serialization.
type Store struct {
	db   *pebble.DB
	path string

	// seq reduces key collisions when messages share a nanosecond timestamp.
	seq uint64
}

// Open opens (or creates) a Pebble database at the given path.
func Open(path string) (*Store, error) {
	logger.Log.Info("opening_pebble_db", zap.String("path", path))
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Log.Error("pebble_open_failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	logger.Log.Info("pebble_opened", zap.String("path", path))
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return err
	}
	s.db = nil
	logger.Log.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and usable.
func (s *Store) Ready() bool {
	return s != nil && s.db != nil
}

func convMetaKey(id string) []byte {
	return []byte(convPrefix + id + ":meta")
}

// SaveConversation writes the conversation record. A single Set gives the
// atomic status/summary/end-time update the end transition relies on.
func (s *Store) SaveConversation(c models.Conversation) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	if err := s.db.Set(convMetaKey(c.ID), b, pebble.Sync); err != nil {
		logger.Log.Error("save_conversation_failed", zap.String("conversation", c.ID), zap.Error(err))
		return err
	}
	telemetry.StoreOps.WithLabelValues("save_conversation").Inc()
	logger.Log.Debug("conversation_saved", zap.String("conversation", c.ID), zap.String("status", c.Status))
	return nil
}

// GetConversation loads a conversation by ID.
func (s *Store) GetConversation(id string) (models.Conversation, error) {
	var c models.Conversation
	v, closer, err := s.db.Get(convMetaKey(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return c, ErrNotFound
		}
		return c, err
	}
	defer closer.Close()
	if err := json.Unmarshal(v, &c); err != nil {
		return c, fmt.Errorf("invalid conversation record: %w", err)
	}
	return c, nil
}

// ListConversations returns all conversation records in key order.
func (s *Store) ListConversations() ([]models.Conversation, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	prefix := []byte(convPrefix)
	suffix := []byte(":meta")
	var out []models.Conversation
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		if !bytes.HasSuffix(iter.Key(), suffix) {
			continue
		}
		var c models.Conversation
		if err := json.Unmarshal(iter.Value(), &c); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, iter.Error()
}

// AppendMessage appends a message to its conversation under a sortable
// timestamp key and indexes it by message ID.
func (s *Store) AppendMessage(m models.Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	n := atomic.AddUint64(&s.seq, 1)
	key := fmt.Sprintf("%s%s:msg:%020d-%06d", convPrefix, m.ConversationID, m.Timestamp.UTC().UnixNano(), n)
	if err := s.db.Set([]byte(key), b, pebble.Sync); err != nil {
		logger.Log.Error("append_message_failed", zap.String("conversation", m.ConversationID), zap.String("key", key), zap.Error(err))
		return err
	}
	if err := s.db.Set([]byte(msgIndex+m.ID), []byte(key), pebble.Sync); err != nil {
		logger.Log.Error("append_message_index_failed", zap.String("msg_id", m.ID), zap.Error(err))
		return err
	}
	telemetry.StoreOps.WithLabelValues("append_message").Inc()
	logger.Log.Debug("message_saved", zap.String("conversation", m.ConversationID), zap.String("msg_id", m.ID), zap.String("role", m.Role))
	return nil
}

// GetMessage loads a message by its ID via the index.
func (s *Store) GetMessage(id string) (models.Message, error) {
	var m models.Message
	key, err := s.messageKey(id)
	if err != nil {
		return m, err
	}
	v, closer, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return m, ErrNotFound
		}
		return m, err
	}
	defer closer.Close()
	if err := json.Unmarshal(v, &m); err != nil {
		return m, fmt.Errorf("invalid message record: %w", err)
	}
	return m, nil
}

// UpdateMessage rewrites a message in place. Only reaction and bookmark
// mutations go through here; content is never edited.
func (s *Store) UpdateMessage(m models.Message) error {
	key, err := s.messageKey(m.ID)
	if err != nil {
		return err
	}
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := s.db.Set(key, b, pebble.Sync); err != nil {
		logger.Log.Error("update_message_failed", zap.String("msg_id", m.ID), zap.Error(err))
		return err
	}
	telemetry.StoreOps.WithLabelValues("update_message").Inc()
	return nil
}

func (s *Store) messageKey(id string) ([]byte, error) {
	v, closer, err := s.db.Get([]byte(msgIndex + id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), v...), nil
}

// ListMessages returns all messages of a conversation in creation order.
func (s *Store) ListMessages(conversationID string) ([]models.Message, error) {
	prefix := []byte(convPrefix + conversationID + ":msg:")
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Message
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, iter.Error()
}

// SaveShareToken indexes a share token to its conversation ID.
func (s *Store) SaveShareToken(token, conversationID string) error {
	return s.db.Set([]byte(sharePrefix+token), []byte(conversationID), pebble.Sync)
}

// DeleteShareToken removes a superseded share token index entry.
func (s *Store) DeleteShareToken(token string) error {
	return s.db.Delete([]byte(sharePrefix+token), pebble.Sync)
}

// GetConversationIDByShareToken resolves a share token to a conversation ID.
func (s *Store) GetConversationIDByShareToken(token string) (string, error) {
	v, closer, err := s.db.Get([]byte(sharePrefix + token))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	defer closer.Close()
	return string(v), nil
}
