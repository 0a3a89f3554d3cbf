package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"retail-insight-api/pkg/apperrors"
	"retail-insight-api/pkg/models"
)

// CreateAnalysis stores the analysis of a file. A file has at most one.
func (s *Store) CreateAnalysis(a *models.AnalysisResult) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := analysisKey(a.FileID)
		if _, err := txn.Get(key); err == nil {
			return apperrors.ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return setJSON(txn, key, a)
	})
}

// GetAnalysis returns the analysis of a file.
func (s *Store) GetAnalysis(fileID string) (*models.AnalysisResult, error) {
	var a models.AnalysisResult
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, analysisKey(fileID), &a)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// AppendChat adds a turn to a file's transcript.
func (s *Store) AppendChat(m *models.ChatMessage) error {
	key := fmt.Sprintf("%s%s:%020d:%s", chatPrefix, m.FileID, m.CreatedAt.UnixNano(), m.ID)
	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, []byte(key), m)
	})
}

// ListChat returns the most recent limit turns of a file's transcript,
// oldest first. limit <= 0 returns everything.
func (s *Store) ListChat(fileID string, limit int) ([]models.ChatMessage, error) {
	msgs := []models.ChatMessage{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = chatFilePrefix(fileID)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var m models.ChatMessage
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			}); err != nil {
				return err
			}
			msgs = append(msgs, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}
