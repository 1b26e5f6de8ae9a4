// Package boltstore keeps journey records in a bbolt key-value file. It is
// the lightweight alternative to the SQLite store and keeps no event log.
package boltstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/abhisek/luminary/internal/journey"
)

var journeysBucket = []byte("journeys")

// Store implements journey.Store on top of bbolt.
type Store struct {
	db *bolt.DB
}

var (
	_ journey.Store  = (*Store)(nil)
	_ journey.Lister = (*Store)(nil)
)

// Open opens or creates the bbolt file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(journeysBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying file.
func (s *Store) Close() error {
	return s.db.Close()
}

// recordKey lays keys out as learner/subject so a learner's records share a
// prefix. Learner ids never contain a slash (UUIDs or "local").
func recordKey(k journey.Key) []byte {
	return []byte(k.LearnerID + "/" + k.SubjectID)
}

func (s *Store) LoadJourney(_ context.Context, key journey.Key) (*journey.Record, error) {
	var rec *journey.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(journeysBucket).Get(recordKey(key))
		if v == nil {
			return nil
		}
		rec = &journey.Record{}
		return json.Unmarshal(v, rec)
	})
	if err != nil {
		return nil, fmt.Errorf("load journey %s: %w", key, err)
	}
	return rec, nil
}

func (s *Store) SaveJourney(_ context.Context, key journey.Key, rec journey.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode journey %s: %w", key, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(journeysBucket).Put(recordKey(key), data)
	})
	if err != nil {
		return fmt.Errorf("save journey %s: %w", key, err)
	}
	return nil
}

func (s *Store) DeleteJourney(_ context.Context, key journey.Key) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(journeysBucket).Delete(recordKey(key))
	})
	if err != nil {
		return fmt.Errorf("delete journey %s: %w", key, err)
	}
	return nil
}

func (s *Store) ListJourneys(_ context.Context, learnerID string) ([]journey.SavedJourney, error) {
	prefix := []byte(learnerID + "/")
	var out []journey.SavedJourney
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(journeysBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var rec journey.Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			out = append(out, journey.SavedJourney{
				Key: journey.Key{
					LearnerID: learnerID,
					SubjectID: strings.TrimPrefix(string(k), string(prefix)),
				},
				Record: rec,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list journeys: %w", err)
	}
	return out, nil
}
