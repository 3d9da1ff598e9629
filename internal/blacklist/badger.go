// Streamchaser - Media Catalog Sync Jobs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamchaser

package blacklist

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/streamchaser/internal/metrics"
)

// keyPrefix namespaces blacklist keys inside the Badger database.
const keyPrefix = "blacklist:"

// BadgerSet stores one key per blacklisted id. The value is the Unix time
// (nanoseconds) the id was added.
type BadgerSet struct {
	db *badger.DB
}

// OpenBadgerSet opens (or creates) a Badger database in dir.
func OpenBadgerSet(dir string) (*BadgerSet, error) {
	if dir == "" {
		return nil, errors.New("blacklist badger_dir is required")
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil                // Suppress BadgerDB internal logs
	opts.ValueLogFileSize = 16 << 20 // 16MB, entries are tiny
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for blacklist: %w", err)
	}
	return &BadgerSet{db: db}, nil
}

// Backend implements Set.
func (s *BadgerSet) Backend() string {
	return BackendBadger
}

// Contains implements Set.
func (s *BadgerSet) Contains(_ context.Context, id string) (bool, error) {
	id, err := normalizeID(id)
	if err != nil {
		return false, err
	}
	found := false
	err = s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("lookup blacklist: %w", err)
	}
	return found, nil
}

// Add checks and sets id in one transaction. Conflicting concurrent
// transactions are retried.
func (s *BadgerSet) Add(ctx context.Context, id string) (added bool, err error) {
	defer func() { metrics.RecordBlacklistAdd(BackendBadger, added, err) }()

	id, err = normalizeID(id)
	if err != nil {
		return false, err
	}
	key := []byte(keyPrefix + id)

	err = retry.Do(
		func() error {
			added = false
			return s.db.Update(func(txn *badger.Txn) error {
				_, getErr := txn.Get(key)
				if getErr == nil {
					return nil
				}
				if !errors.Is(getErr, badger.ErrKeyNotFound) {
					return getErr
				}
				value := make([]byte, 8)
				binary.BigEndian.PutUint64(value, uint64(time.Now().UnixNano()))
				if setErr := txn.Set(key, value); setErr != nil {
					return setErr
				}
				added = true
				return nil
			})
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(10*time.Millisecond),
		retry.RetryIf(func(err error) bool { return errors.Is(err, badger.ErrConflict) }),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		added = false
		return false, fmt.Errorf("add to blacklist: %w", err)
	}
	return added, nil
}

// List implements Set. Ids are returned in key order.
func (s *BadgerSet) List(_ context.Context) ([]string, error) {
	ids := []string{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(keyPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list blacklist: %w", err)
	}
	return ids, nil
}

// Close closes the Badger database.
func (s *BadgerSet) Close() error {
	return s.db.Close()
}
