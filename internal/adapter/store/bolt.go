package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"recall/internal/domain"
	"recall/internal/port"
)

var (
	bucketTerms   = []byte("terms")
	bucketLengths = []byte("lengths")
	bucketStats   = []byte("stats")
	bucketVectors = []byte("vectors")
	keyStats      = []byte("corpus_stats")
)

// BoltIndexStore persists index-side state (postings, chunk lengths,
// corpus stats, vectors) in a single bolt file.
type BoltIndexStore struct {
	db *bbolt.DB
}

func NewBoltIndexStore(path string) (*BoltIndexStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketTerms, bucketLengths, bucketStats, bucketVectors} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltIndexStore{db: db}, nil
}

func (s *BoltIndexStore) ApplyBatch(batch port.IndexBatch) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		lengths := tx.Bucket(bucketLengths)
		for id, n := range batch.Lengths {
			if err := lengths.Put([]byte(id), []byte(fmt.Sprintf("%d", n))); err != nil {
				return err
			}
		}

		terms := tx.Bucket(bucketTerms)
		for term, newPostings := range batch.Postings {
			var existing []domain.Posting
			if data := terms.Get([]byte(term)); data != nil {
				if err := json.Unmarshal(data, &existing); err != nil {
					return err
				}
			}
			existing = append(existing, newPostings...)
			data, err := json.Marshal(existing)
			if err != nil {
				return err
			}
			if err := terms.Put([]byte(term), data); err != nil {
				return err
			}
		}

		data, err := json.Marshal(batch.Stats)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketStats).Put(keyStats, data)
	})
}

func (s *BoltIndexStore) GetPostings(term string) ([]domain.Posting, error) {
	var postings []domain.Posting
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketTerms).Get([]byte(term))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &postings)
	})
	return postings, err
}

func (s *BoltIndexStore) ChunkLength(chunkID string) (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketLengths).Get([]byte(chunkID))
		if data == nil {
			return nil
		}
		_, err := fmt.Sscanf(string(data), "%d", &n)
		return err
	})
	return n, err
}

func (s *BoltIndexStore) Stats() (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStats).Get(keyStats)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stats)
	})
	return stats, err
}

func (s *BoltIndexStore) PutVectors(items []port.VectorItem) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		for _, item := range items {
			data, err := json.Marshal(item.Vector)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(item.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltIndexStore) LoadVectors() ([]port.VectorItem, error) {
	var items []port.VectorItem
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		return b.ForEach(func(k, v []byte) error {
			var vec []float32
			if err := json.Unmarshal(v, &vec); err != nil {
				return nil // skip corrupted entries
			}
			items = append(items, port.VectorItem{ID: string(k), Vector: vec})
			return nil
		})
	})
	return items, err
}

func (s *BoltIndexStore) Close() error {
	return s.db.Close()
}
