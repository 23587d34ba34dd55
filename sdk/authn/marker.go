package authn

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/ansycloud/console/internal/file"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// Marker is durable storage for a single fact: the user was authenticated as
// of the last session. It is a hint used to skip a loading state on startup.
// It is not a credential and nothing may treat it as proof of
// authentication. Implementations must never be handed a token; the
// interface only deals in the presence or absence of the marker.
type Marker interface {
	// IsSet returns true if the marker is present.
	IsSet() (bool, error)
	// Set records the marker.
	Set() error
	// Clear removes the marker. Clearing an absent marker is not an error.
	Clear() error
}

// MemoryMarker is a Marker that lives only as long as the process.
type MemoryMarker struct {
	mu  sync.Mutex
	set bool
}

// NewMemoryMarker returns a Marker that lives only as long as the process.
func NewMemoryMarker(set bool) *MemoryMarker {
	return &MemoryMarker{set: set}
}

func (m *MemoryMarker) IsSet() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set, nil
}

func (m *MemoryMarker) Set() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = true
	return nil
}

func (m *MemoryMarker) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = false
	return nil
}

type markerFile struct {
	Authenticated bool `json:"authenticated"`
}

// FileMarker is a Marker persisted as a small JSON file.
type FileMarker struct {
	path string
}

// NewFileMarker returns a Marker persisted at the specified path. If the path
// is empty, the marker is kept at $HOME/.ansycloud/session.
func NewFileMarker(path string) (*FileMarker, error) {
	if path == "" {
		homeDir, err := homedir.Dir()
		if err != nil {
			return nil, errors.Wrap(err, "error locating user's home directory")
		}
		path = filepath.Join(homeDir, ".ansycloud", "session")
	}
	return &FileMarker{path: path}, nil
}

// Path returns the location of the marker file.
func (f *FileMarker) Path() string {
	return f.path
}

func (f *FileMarker) IsSet() (bool, error) {
	if !file.Exists(f.path) {
		return false, nil
	}
	markerBytes, err := ioutil.ReadFile(f.path)
	if err != nil {
		return false, errors.Wrapf(err, "error reading session marker at %s", f.path)
	}
	m := markerFile{}
	if err := json.Unmarshal(markerBytes, &m); err != nil {
		return false, errors.Wrapf(err, "error parsing session marker at %s", f.path)
	}
	return m.Authenticated, nil
}

func (f *FileMarker) Set() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, "error creating directory %s", dir)
	}
	markerBytes, err := json.Marshal(markerFile{Authenticated: true})
	if err != nil {
		return errors.Wrap(err, "error marshaling session marker")
	}
	if err := ioutil.WriteFile(f.path, markerBytes, 0600); err != nil {
		return errors.Wrapf(err, "error writing to %s", f.path)
	}
	return nil
}

func (f *FileMarker) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "error deleting session marker at %s", f.path)
	}
	return nil
}
