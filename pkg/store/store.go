// Package store persists upload records, feedback analyses and chat
// transcripts in an embedded badger database.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"retail-insight-api/pkg/apperrors"
	"retail-insight-api/pkg/models"
)

const (
	filePrefix     = "file:"
	analysisPrefix = "analysis:"
	chatPrefix     = "chat:"
)

// Store wraps a badger database.
type Store struct {
	db     *badger.DB
	logger *zap.Logger
}

// Open opens (or creates) the database under dir.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{logger.Named("badger").Sugar()})
	return open(opts, logger)
}

// OpenInMemory opens a database that lives only in memory.
func OpenInMemory(logger *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	return open(opts, logger)
}

func open(opts badger.Options, logger *zap.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{db: db, logger: logger.Named("store")}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func fileKey(id string) []byte     { return []byte(filePrefix + id) }
func analysisKey(id string) []byte { return []byte(analysisPrefix + id) }
func chatFilePrefix(fileID string) []byte {
	return []byte(chatPrefix + fileID + ":")
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// SaveFile creates or replaces an upload record.
func (s *Store) SaveFile(f *models.UploadedFile) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, fileKey(f.ID), f)
	})
}

// GetFile returns the upload record for id.
func (s *Store) GetFile(id string) (*models.UploadedFile, error) {
	var f models.UploadedFile
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, fileKey(id), &f)
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFiles returns uploads of kind, newest first.
func (s *Store) ListFiles(kind models.FileKind) ([]models.UploadedFile, error) {
	files := []models.UploadedFile{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(filePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var f models.UploadedFile
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &f)
			}); err != nil {
				return err
			}
			if f.Kind == kind {
				files = append(files, f)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].UploadedAt.After(files[j].UploadedAt)
	})
	return files, nil
}

// DeleteFile removes an upload record together with its analysis and chat
// transcript.
func (s *Store) DeleteFile(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(fileKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		keys := [][]byte{fileKey(id), analysisKey(id)}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = chatFilePrefix(id)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		s.logger.Debug("Deleted file records", zap.String("file_id", id), zap.Int("keys", len(keys)))
		return nil
	})
}
