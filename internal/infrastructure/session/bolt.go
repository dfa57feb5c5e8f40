package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/akhil1198/ER/internal/application/port"
	"github.com/akhil1198/ER/internal/domain/conversation"
)

var bucketSessions = []byte("sessions")

// BoltStore persists sessions as JSON in a bbolt file so conversations
// survive restarts
type BoltStore struct {
	db     *bolt.DB
	logger *zap.Logger
}

var _ port.SessionStore = (*BoltStore)(nil)

// NewBoltStore opens or creates the store at path
func NewBoltStore(path string, logger *zap.Logger) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSessions)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create sessions bucket: %w", err)
	}

	logger.Info("Session store opened", zap.String("path", path))
	return &BoltStore{db: db, logger: logger}, nil
}

func (b *BoltStore) Get(ctx context.Context, id string) (*conversation.Session, error) {
	var s conversation.Session
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSessions).Get([]byte(id))
		if data == nil {
			return port.ErrSessionNotFound
		}
		return json.Unmarshal(data, &s)
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (b *BoltStore) Save(ctx context.Context, s *conversation.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Put([]byte(s.ID), data)
	})
}

func (b *BoltStore) Delete(ctx context.Context, id string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Delete([]byte(id))
	})
}

// idleProbe decodes only the timestamp needed to decide idleness
type idleProbe struct {
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListIdle returns ids, in key order, of sessions untouched since cutoff.
// Undecodable entries count as idle so the sweeper removes them.
func (b *BoltStore) ListIdle(ctx context.Context, cutoff time.Time) ([]string, error) {
	var ids []string
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var probe idleProbe
			if err := json.Unmarshal(v, &probe); err != nil {
				b.logger.Warn("Undecodable session entry", zap.ByteString("id", k), zap.Error(err))
				ids = append(ids, string(k))
				return nil
			}
			if probe.UpdatedAt.Before(cutoff) {
				ids = append(ids, string(k))
			}
			return nil
		})
	})
	return ids, err
}

func (b *BoltStore) Close() error {
	return b.db.Close()
}
