package history

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	errs "github.com/matzehuels/bnbsearch/pkg/errors"
)

// FileStore appends records as JSON lines to a single file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore stores records in path, creating its directory.
func NewFileStore(path string) (*FileStore, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "create history dir")
	}
	return &FileStore{path: path}, nil
}

// Path returns the history file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Save(_ context.Context, r Record) error {
	line, err := json.Marshal(r)
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "encode record %s", r.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "open history")
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "write history")
	}
	return nil
}

// List skips lines that do not decode.
func (s *FileStore) List(_ context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "open history")
	}
	defer f.Close()

	var out []Record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "read history")
	}
	return newestFirst(out, limit), nil
}

func (s *FileStore) Close(context.Context) error { return nil }
