package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"graphtrust/internal/model"
	"graphtrust/pkg/platform/sentinel"
)

const (
	indexFileName  = "index.json"
	artifactSuffix = ".model"
	dirMode        = 0o750
	fileMode       = 0o640
)

// fileIndex is the on-disk registry manifest.
type fileIndex struct {
	Versions []model.Version `json:"versions"`
}

// FileRegistry keeps artifacts as files in a directory with a JSON index.
// Every write goes to a temp file first and is renamed into place, so readers
// in this or another process never see a half-written artifact or index.
type FileRegistry struct {
	mu   sync.Mutex
	dir  string
	opts options
}

// NewFile creates a registry rooted at dir, creating the directory if needed.
func NewFile(dir string, opts ...Option) (*FileRegistry, error) {
	if dir == "" {
		return nil, fmt.Errorf("model directory is required")
	}
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("create model directory: %w", err)
	}
	return &FileRegistry{dir: dir, opts: applyOptions(opts)}, nil
}

func (s *FileRegistry) Save(_ context.Context, v model.Version, artifact []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.readIndex()
	switch {
	case errors.Is(err, sentinel.ErrCorrupt):
		if err := s.quarantineIndex(err); err != nil {
			return err
		}
		idx = fileIndex{}
	case err != nil && !errors.Is(err, sentinel.ErrNotFound):
		return err
	}

	if err := s.writeAtomic(s.artifactPath(v.ID), artifact); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	for i := range idx.Versions {
		idx.Versions[i].Active = false
	}
	v.Active = true
	idx.Versions = append(idx.Versions, v)

	dropped := prune(idx.Versions, s.opts.retention)
	idx.Versions = without(idx.Versions, dropped)
	if err := s.writeIndex(idx); err != nil {
		_ = os.Remove(s.artifactPath(v.ID))
		return err
	}
	for _, old := range dropped {
		_ = os.Remove(s.artifactPath(old.ID))
	}
	return nil
}

func (s *FileRegistry) Active(_ context.Context) (*model.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	for _, v := range idx.Versions {
		if v.Active {
			return &v, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *FileRegistry) Load(_ context.Context, id uuid.UUID) ([]byte, error) {
	blob, err := os.ReadFile(s.artifactPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return blob, nil
}

func (s *FileRegistry) List(_ context.Context) ([]model.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.readIndex()
	if errors.Is(err, sentinel.ErrNotFound) {
		return []model.Version{}, nil
	}
	if err != nil {
		return nil, err
	}
	sortNewestFirst(idx.Versions)
	return idx.Versions, nil
}

func (s *FileRegistry) Activate(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.readIndex()
	if err != nil {
		return err
	}
	found := false
	for i := range idx.Versions {
		idx.Versions[i].Active = idx.Versions[i].ID == id
		found = found || idx.Versions[i].Active
	}
	if !found {
		return sentinel.ErrNotFound
	}
	return s.writeIndex(idx)
}

func (s *FileRegistry) artifactPath(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+artifactSuffix)
}

func (s *FileRegistry) readIndex() (fileIndex, error) {
	var idx fileIndex
	data, err := os.ReadFile(filepath.Join(s.dir, indexFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return idx, sentinel.ErrNotFound
	}
	if err != nil {
		return idx, fmt.Errorf("read model index: %w", err)
	}
	if err := json.Unmarshal(data, &idx); err != nil {
		return idx, fmt.Errorf("%w: model index: %v", sentinel.ErrCorrupt, err)
	}
	return idx, nil
}

// quarantineIndex moves an unreadable index aside so a new save starts from an
// empty registry. Artifacts it listed stay on disk for manual recovery.
func (s *FileRegistry) quarantineIndex(cause error) error {
	path := filepath.Join(s.dir, indexFileName)
	moved := fmt.Sprintf("%s.corrupt-%s", path, time.Now().UTC().Format("20060102T150405.000000000"))
	if err := os.Rename(path, moved); err != nil {
		return fmt.Errorf("quarantine model index: %w", err)
	}
	s.opts.logger.Warn("model index was corrupt, starting a new one",
		"moved_to", moved,
		"error", cause,
	)
	return nil
}

func (s *FileRegistry) writeIndex(idx fileIndex) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model index: %w", err)
	}
	if err := s.writeAtomic(filepath.Join(s.dir, indexFileName), data); err != nil {
		return fmt.Errorf("write model index: %w", err)
	}
	return nil
}

func (s *FileRegistry) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func without(versions, dropped []model.Version) []model.Version {
	if len(dropped) == 0 {
		return versions
	}
	drop := make(map[uuid.UUID]struct{}, len(dropped))
	for _, v := range dropped {
		drop[v.ID] = struct{}{}
	}
	out := versions[:0]
	for _, v := range versions {
		if _, ok := drop[v.ID]; !ok {
			out = append(out, v)
		}
	}
	return out
}
