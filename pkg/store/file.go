/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileStore keeps one YAML file per key in a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, ErrMissingDir
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}

	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) (string, error) {
	name, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}

	return filepath.Join(s.dir, name), nil
}

// Load reads the record for key. A record without captured_at takes the
// file modification time instead.
func (s *FileStore) Load(_ context.Context, key string) (Record, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return Record{}, false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, false, nil
	}

	if err != nil {
		return Record{}, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Record{}, false, fmt.Errorf("%w: %s: %w", ErrInvalidRecord, path, err)
	}

	if doc.CapturedAt.IsZero() {
		info, err := os.Stat(path)
		if err != nil {
			return Record{}, false, fmt.Errorf("failed to stat %s: %w", path, err)
		}

		doc.CapturedAt = info.ModTime()
	}

	rec, err := doc.record()
	if err != nil {
		return Record{}, false, err
	}

	return rec, true, nil
}

// Save writes the record through a temporary file renamed over the old one.
func (s *FileStore) Save(_ context.Context, key string, rec Record) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(newDocument(rec))
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}

	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

func (*FileStore) Close() error {
	return nil
}
