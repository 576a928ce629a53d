// Package notifyd implements the notification daemon: a durable badger
// registry of scheduled triggers, a cron-driven delivery engine that
// fires due entries through sinks, and the HTTP API the service's
// notify client talks to. It plays the role the OS notification center
// plays on a phone, which is why it keeps its own store and why wiping
// its data directory legitimately loses every registered trigger.
package notifyd

import (
	"encoding/json"
	"errors"
	"os"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/daymark/daymark/internal/notify"
)

// ErrNotFound is returned when a handle has no registry entry.
var ErrNotFound = errors.New("notification not found")

const keyPrefix = "notification:"

// Record is the stored form of one scheduled notification.
type Record struct {
	Handle      string             `json:"handle"`
	Trigger     notify.Trigger     `json:"trigger"`
	Content     notify.Content     `json:"content"`
	Correlation notify.Correlation `json:"correlation"`
	NextFireAt  time.Time          `json:"nextFireAt"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// Registry is the daemon's durable store of scheduled notifications.
type Registry struct {
	db *badger.DB
}

// RegistryOptions configures where the registry lives.
type RegistryOptions struct {
	// Dir is the badger directory. Ignored when InMemory is set.
	Dir string
	// InMemory runs the registry ephemeral, for tests and dev loops.
	InMemory bool
}

// OpenRegistry opens or creates the registry database.
func OpenRegistry(opts RegistryOptions) (*Registry, error) {
	var badgerOpts badger.Options
	if opts.InMemory || opts.Dir == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, err
		}
		badgerOpts = badger.DefaultOptions(opts.Dir)
	}
	badgerOpts = badgerOpts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	return &Registry{db: db}, nil
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	return r.db.Close()
}

func recordKey(handle string) []byte {
	return []byte(keyPrefix + handle)
}

// Put stores or replaces the record under its handle.
func (r *Registry) Put(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec.Handle), data)
	})
}

// Get retrieves one record by handle.
func (r *Registry) Get(handle string) (Record, error) {
	var rec Record
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(handle))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, err
}

// Delete removes a record. Unknown handles are a no-op, so cancel stays
// idempotent end to end.
func (r *Registry) Delete(handle string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(handle))
	})
}

// List returns every live record ordered by next fire time, then handle.
func (r *Registry) List() ([]Record, error) {
	var recs []Record
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 100
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec Record
				if err := json.Unmarshal(val, &rec); err != nil {
					return err
				}
				recs = append(recs, rec)
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
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].NextFireAt.Equal(recs[j].NextFireAt) {
			return recs[i].NextFireAt.Before(recs[j].NextFireAt)
		}
		return recs[i].Handle < recs[j].Handle
	})
	return recs, nil
}

// Due returns the records whose next fire time is at or before now.
func (r *Registry) Due(now time.Time) ([]Record, error) {
	all, err := r.List()
	if err != nil {
		return nil, err
	}
	var due []Record
	for _, rec := range all {
		if !rec.NextFireAt.After(now) {
			due = append(due, rec)
		}
	}
	return due, nil
}
