package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/AlexZinkM/guest-wallet/internal/crypto"
	"github.com/AlexZinkM/guest-wallet/internal/model"
)

// FileName is the store file created inside the data directory.
const FileName = "local-keys.json"

// FileStore keeps all slots in one JSON file. When a password is set the file
// is sealed with crypto.Seal; otherwise it is plain JSON with mode 0600.
type FileStore struct {
	mu       sync.Mutex
	path     string
	password []byte
}

// NewFileStore opens (or prepares) the store file inside dir.
// password may be nil for an unencrypted store; the store keeps its own copy.
func NewFileStore(dir string, password []byte) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &FileStore{path: filepath.Join(dir, FileName)}
	if len(password) > 0 {
		s.password = make([]byte, len(password))
		copy(s.password, password)
	}

	// fail early on a wrong password or a sealed file opened without one
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the store file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(key string) (*model.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return nil, err
	}
	cred, ok := items[key]
	if !ok || cred == nil {
		return nil, ErrNotFound
	}
	return cred, nil
}

func (s *FileStore) Set(key string, cred *model.Credential) error {
	if cred == nil {
		return errors.New("credential cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	items[key] = cred.Clone()
	return s.save(items)
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return s.save(items)
}

// Close wipes the in-memory password copy.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.password)
	s.password = nil
	return nil
}

func (s *FileStore) load() (map[string]*model.Credential, error) {
	items := make(map[string]*model.Credential)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return items, nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	if len(data) == 0 {
		return items, nil
	}

	if crypto.IsSealed(data) {
		if len(s.password) == 0 {
			return nil, errors.New("store file is encrypted: password required")
		}
		data, err = crypto.Open(data, s.password)
		if err != nil {
			return nil, fmt.Errorf("failed to open store file: %w", err)
		}
		defer clear(data)
	}

	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal store file: %w", err)
	}
	return items, nil
}

func (s *FileStore) save(items map[string]*model.Credential) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	defer clear(data)

	if len(s.password) > 0 {
		sealed, err := crypto.Seal(data, s.password)
		if err != nil {
			return fmt.Errorf("failed to seal store: %w", err)
		}
		data = sealed
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".local-keys-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
