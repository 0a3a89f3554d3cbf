package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"retail-insight-api/pkg/apperrors"
	"retail-insight-api/pkg/dataset"
	"retail-insight-api/pkg/models"
	"retail-insight-api/pkg/store"
)

// MaxUploadBytes caps a single upload.
const MaxUploadBytes = 32 << 20

// FileService stores uploads and their records.
type FileService struct {
	store     *store.Store
	tables    *dataset.TableCache
	uploadDir string
	logger    *zap.Logger
}

// NewFileService creates a FileService that writes uploads under uploadDir.
func NewFileService(st *store.Store, tables *dataset.TableCache, uploadDir string, logger *zap.Logger) *FileService {
	return &FileService{
		store:     st,
		tables:    tables,
		uploadDir: uploadDir,
		logger:    logger.Named("files"),
	}
}

// Upload saves the content of r as a new file of kind. Retail tables are
// decoded once to fix their schema.
func (s *FileService) Upload(kind models.FileKind, filename string, r io.Reader) (*models.UploadedFile, error) {
	exts := dataset.DocumentExtensions
	if kind == models.FileKindRetail {
		exts = dataset.TableExtensions
	}
	if !dataset.SupportsExt(filename, exts) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFile, dataset.Ext(filename))
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("%w: the limit is %d MB", apperrors.ErrTooLarge, MaxUploadBytes>>20)
	}

	rec := &models.UploadedFile{
		ID:         uuid.NewString(),
		Kind:       kind,
		Filename:   filepath.Base(filename),
		Size:       int64(len(data)),
		UploadedAt: time.Now().UTC(),
	}

	if kind == models.FileKindRetail {
		table, err := dataset.ReadTable(filename, bytes.NewReader(data))
		if err != nil {
			return nil, apperrors.New(apperrors.KindParse, "The table could not be read. Check that it is a valid CSV or Excel file.", err)
		}
		rec.Schema = dataset.ExtractSchema(table)
	}

	dir := filepath.Join(s.uploadDir, string(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	rec.StoredPath = filepath.Join(dir, rec.ID+dataset.Ext(filename))
	if err := os.WriteFile(rec.StoredPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	if err := s.store.SaveFile(rec); err != nil {
		_ = os.Remove(rec.StoredPath)
		return nil, err
	}

	s.logger.Info("File uploaded",
		zap.String("file_id", rec.ID),
		zap.String("kind", string(kind)),
		zap.String("filename", rec.Filename),
		zap.Int64("size", rec.Size))
	return rec, nil
}

// Get returns the record of a file of kind.
func (s *FileService) Get(kind models.FileKind, id string) (*models.UploadedFile, error) {
	rec, err := s.store.GetFile(id)
	if err != nil {
		return nil, err
	}
	if rec.Kind != kind {
		return nil, apperrors.ErrNotFound
	}
	return rec, nil
}

// List returns files of kind, newest first.
func (s *FileService) List(kind models.FileKind) ([]models.UploadedFile, error) {
	return s.store.ListFiles(kind)
}

// Delete removes a file, its records and its stored bytes.
func (s *FileService) Delete(kind models.FileKind, id string) error {
	rec, err := s.Get(kind, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteFile(id); err != nil {
		return err
	}
	s.tables.Forget(id)
	if err := os.Remove(rec.StoredPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Failed to remove stored file", zap.String("path", rec.StoredPath), zap.Error(err))
	}
	s.logger.Info("File deleted", zap.String("file_id", id))
	return nil
}

// Content returns the stored bytes of a file.
func (s *FileService) Content(rec *models.UploadedFile) ([]byte, error) {
	data, err := os.ReadFile(rec.StoredPath)
	if err != nil {
		return nil, fmt.Errorf("read stored file: %w", err)
	}
	return data, nil
}

// RetailTable returns a retail file's record and its decoded table.
func (s *FileService) RetailTable(id string) (*models.UploadedFile, *dataset.Table, error) {
	rec, err := s.Get(models.FileKindRetail, id)
	if err != nil {
		return nil, nil, err
	}
	table, err := s.tables.Load(rec.ID, rec.StoredPath)
	if err != nil {
		return nil, nil, apperrors.New(apperrors.KindExecution, "The stored table could not be read.", err)
	}
	return rec, table, nil
}
