package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"wms/internal/models"
)

// On-disk namespaces. Logout removes both.
const (
	appPrefsFile  = "app_prefs.json"  // { "auth_token": "..." }
	userPrefsFile = "user_prefs.json" // identity of the logged-in driver
)

type appPrefs struct {
	AuthToken string `json:"auth_token"`
}

// FileStore persists the session as JSON under a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) *FileStore { return &FileStore{dir: dir} }

// Dir returns the directory holding the session files.
func (f *FileStore) Dir() string { return f.dir }

func (f *FileStore) Load() (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *FileStore) load() (models.Session, error) {
	var s models.Session
	found, err := readJSON(filepath.Join(f.dir, userPrefsFile), &s)
	if err != nil {
		return models.Session{}, err
	}
	if !found {
		return models.Session{}, ErrNoSession
	}
	if s.Token == "" {
		var app appPrefs
		if _, err := readJSON(filepath.Join(f.dir, appPrefsFile), &app); err != nil {
			return models.Session{}, err
		}
		s.Token = app.AuthToken
	}
	return s, nil
}

func (f *FileStore) Save(s models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(s)
}

func (f *FileStore) save(s models.Session) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(f.dir, appPrefsFile), appPrefs{AuthToken: s.Token}, 0o600); err != nil {
		return err
	}
	return writeJSON(filepath.Join(f.dir, userPrefsFile), s, 0o600)
}

func (f *FileStore) AuthToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var app appPrefs
	if _, err := readJSON(filepath.Join(f.dir, appPrefsFile), &app); err != nil {
		return ""
	}
	return app.AuthToken
}

func (f *FileStore) Update(fn func(*models.Session)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, err := f.load()
	if err != nil {
		return err
	}
	fn(&s)
	return f.save(s)
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, name := range []string{appPrefsFile, userPrefsFile} {
		if err := os.Remove(filepath.Join(f.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// readJSON reads path into out. found is false when the file does not exist.
func readJSON(path string, out any) (found bool, err error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, out)
}

// writeJSON writes v via a temp file, then atomically replaces the target.
func writeJSON(path string, v any, mode os.FileMode) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
