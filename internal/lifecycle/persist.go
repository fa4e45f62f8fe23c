package lifecycle

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/apperr"
	"github.com/benvon/questlog/internal/storage"
)

// write is one record change of an operation; a nil value deletes the key.
// prev holds the stored value before the operation and is restored on failure.
type write struct {
	collection storage.Collection
	key        string
	value      []byte
	prev       []byte
}

func encode[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, apperr.Computation("failed to encode record: %v", err)
	}
	return b, nil
}

func change[T any](c storage.Collection, key string, next, prev *T) (write, error) {
	value, err := encode(next)
	if err != nil {
		return write{}, err
	}
	before, err := encode(prev)
	if err != nil {
		return write{}, err
	}
	return write{collection: c, key: key, value: value, prev: before}, nil
}

// commit applies writes in order. When one fails, the writes already applied
// are reverted best-effort and a PersistenceError is returned.
func (m *Manager) commit(ctx context.Context, writes []write) error {
	for i, w := range writes {
		if err := m.put(ctx, w.collection, w.key, w.value); err != nil {
			m.revert(ctx, writes[:i])
			op := "set"
			if w.value == nil {
				op = "delete"
			}
			return apperr.Persistence(op, string(w.collection), err)
		}
	}
	return nil
}

func (m *Manager) revert(ctx context.Context, applied []write) {
	for i := len(applied) - 1; i >= 0; i-- {
		w := applied[i]
		if err := m.put(ctx, w.collection, w.key, w.prev); err != nil {
			m.logger.Error("rollback_write_failed",
				zap.Error(err),
				zap.String("collection", string(w.collection)),
				zap.String("key", w.key),
			)
		}
	}
}

func (m *Manager) put(ctx context.Context, c storage.Collection, key string, value []byte) error {
	if value == nil {
		return m.store.Delete(ctx, c, key)
	}
	return m.store.Set(ctx, c, key, value)
}
