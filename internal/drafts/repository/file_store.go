package repository

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/pcbuildsite/pcbuild-backend/internal/drafts/domain"
	"github.com/pcbuildsite/pcbuild-backend/internal/storage/filestore"
)

const draftFilePerm os.FileMode = 0o644

// FileStore keeps the draft collection in a single pretty-printed JSON file.
// Nothing is cached between calls: every operation reads the file again so
// edits made outside the process are picked up.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// NewFileStore creates a FileStore backed by path. The file and its parent
// directory are created on the first write.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{
		path:   path,
		logger: logger.With(zap.String("store", "file"), zap.String("path", path)),
	}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) ([]domain.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

func (s *FileStore) Append(ctx context.Context, build BuildFunc) (domain.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return domain.Draft{}, &domain.PersistError{Op: "read", Err: err}
	}

	record, err := build(current)
	if err != nil {
		return domain.Draft{}, err
	}

	if err := s.write(append(current, record)); err != nil {
		return domain.Draft{}, err
	}
	return record, nil
}

func (s *FileStore) Delete(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return false, &domain.PersistError{Op: "read", Err: err}
	}

	kept, removed := removeDraft(current, id)
	if !removed {
		return false, nil
	}
	if err := s.write(kept); err != nil {
		return false, err
	}
	return true, nil
}

// Ping succeeds when the file is readable or does not exist yet.
func (s *FileStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FileStore) load() ([]domain.Draft, error) {
	data, err := filestore.ReadFileOrEmpty(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	drafts, err := decodeCollection(data)
	if err != nil {
		s.logger.Warn("draft collection is not a valid JSON list, treating it as empty", zap.Error(err))
		return []domain.Draft{}, nil
	}
	warnPassthrough(s.logger, drafts)
	return drafts, nil
}

func (s *FileStore) write(drafts []domain.Draft) error {
	data, err := encodeCollection(drafts)
	if err != nil {
		return &domain.PersistError{Op: "encode", Err: err}
	}
	if err := filestore.AtomicWrite(s.path, data, draftFilePerm); err != nil {
		return &domain.PersistError{Op: "write", Err: err}
	}
	return nil
}
