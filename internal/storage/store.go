package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection names a keyed group of persisted records
type Collection string

const (
	CollectionTasks         Collection = "tasks"
	CollectionCategories    Collection = "categories"
	CollectionProfile       Collection = "profile"
	CollectionDailyMissions Collection = "daily_missions"
	CollectionPreferences   Collection = "preferences"
)

// Collections lists every collection the engine persists
var Collections = []Collection{
	CollectionTasks,
	CollectionCategories,
	CollectionProfile,
	CollectionDailyMissions,
	CollectionPreferences,
}

// ParseCollection validates a collection name
func ParseCollection(s string) (Collection, error) {
	for _, c := range Collections {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// Singleton key used by collections holding one record
const SingletonKey = "current"

// Store is the key/value persistence contract. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, collection Collection, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, collection Collection, key string, value []byte) error
	Delete(ctx context.Context, collection Collection, key string) error
	Clear(ctx context.Context, collection Collection) error
	List(ctx context.Context, collection Collection) (map[string][]byte, error)
}

// GetJSON loads and decodes a record into v
func GetJSON(ctx context.Context, s Store, collection Collection, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, collection, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %s/%s: %w", collection, key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it
func SetJSON(ctx context.Context, s Store, collection Collection, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, key, err)
	}
	return s.Set(ctx, collection, key, raw)
}
