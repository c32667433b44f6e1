// Package store persists one task stack per namespace as a versioned JSON
// file. It performs no locking; callers rely on the claim-before-execute
// protocol for cross-process coordination.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/XertroV/tasks/cmdstack/internal/config"
	"github.com/XertroV/tasks/cmdstack/internal/models"
)

// CorruptStateError reports a stack file that exists but cannot be parsed.
type CorruptStateError struct {
	Path string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt task stack %s: %v (fix or delete the file)", e.Path, e.Err)
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}

// Store reads and writes stack files under one data directory.
type Store struct {
	dataDir string
}

func New(dataDir string) (*Store, error) {
	if strings.TrimSpace(dataDir) == "" {
		return nil, errors.New("data directory is required")
	}
	return &Store{dataDir: dataDir}, nil
}

func (s *Store) DataDir() string {
	return s.dataDir
}

// Path returns the backing file for namespace, validating the namespace.
func (s *Store) Path(namespace string) (string, error) {
	return config.StackFilePath(s.dataDir, namespace)
}

// Read loads the stack of namespace. A missing file is an empty stack.
func (s *Store) Read(namespace string) (*models.Stack, error) {
	path, err := s.Path(namespace)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &models.Stack{}, nil
		}
		return nil, fmt.Errorf("read task stack %s: %w", path, err)
	}
	stack := &models.Stack{}
	if err := decodeStrict(raw, stack); err != nil {
		return nil, &CorruptStateError{Path: path, Err: err}
	}
	return stack, nil
}

// Write replaces the stack of namespace. An empty stack removes the file.
func (s *Store) Write(namespace string, stack *models.Stack) error {
	path, err := s.Path(namespace)
	if err != nil {
		return err
	}
	if stack.IsEmpty() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove empty task stack %s: %w", path, err)
		}
		return nil
	}
	payload, err := json.MarshalIndent(stack, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task stack: %w", err)
	}
	payload = append(payload, '\n')
	if err := writeFileAtomic(path, payload, 0o644); err != nil {
		return fmt.Errorf("write task stack %s: %w", path, err)
	}
	return nil
}

// Delete removes the backing file of namespace if present.
func (s *Store) Delete(namespace string) error {
	return s.Write(namespace, &models.Stack{})
}

func decodeStrict(raw []byte, dst *models.Stack) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid JSON: trailing content")
	}
	return nil
}

// writeFileAtomic writes to a sibling temp file and renames it over path, so
// readers see either the old or the new content.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
