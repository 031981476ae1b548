package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/yndnr/dew-go/internal/core/domain"
	"github.com/yndnr/dew-go/pkg/crypto/adaptive"
)

const (
	// FormatVersion is the envelope version written by Save.
	FormatVersion = 1

	// DefaultPath is the snapshot location used when none is configured.
	DefaultPath = "data/todos.json"

	tempPattern = ".tmp-*"
)

// Config configures the snapshot manager.
type Config struct {
	// Path is the snapshot file location.
	Path string

	// Encryption enables sealing of the payload. Zero value disables it.
	Encryption EncryptionConfig
}

// DefaultConfig returns default snapshot configuration.
func DefaultConfig() Config {
	return Config{Path: DefaultPath}
}

// Info holds snapshot metadata.
type Info struct {
	Path    string    `json:"path"`
	Found   bool      `json:"found"`
	Version int       `json:"version"`
	Count   int       `json:"count"`
	Size    int64     `json:"size"`
	SavedAt time.Time `json:"saved_at"`
	Sealed  bool      `json:"sealed"`
}

// envelope is the on-disk layout.
type envelope struct {
	Version int                     `json:"version"`
	SavedAt time.Time               `json:"saved_at"`
	Count   int                     `json:"count"`
	Payload map[string]*domain.Todo `json:"payload"`
	Sealed  []byte                  `json:"sealed,omitempty"`
	Cipher  adaptive.CipherType     `json:"cipher,omitempty"`
	Salt    []byte                  `json:"salt,omitempty"`
}

// Manager reads and writes the snapshot file.
type Manager struct {
	path   string
	sealer *sealer
}

// NewManager creates a new snapshot manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Path == "" {
		return nil, errors.New("snapshot: path is required")
	}

	s, err := newSealer(cfg.Encryption)
	if err != nil {
		return nil, err
	}

	return &Manager{
		path:   cfg.Path,
		sealer: s,
	}, nil
}

// Path returns the snapshot file location.
func (m *Manager) Path() string {
	return m.path
}

// Encrypted reports whether Save seals the payload.
func (m *Manager) Encrypted() bool {
	return m.sealer != nil
}

// Save writes todos to the snapshot file, replacing any previous snapshot.
//
// The write is atomic: either the new snapshot is fully in place or the
// previous one is untouched. Failures are reported as ErrPersistenceFailure.
func (m *Manager) Save(todos map[string]*domain.Todo) (*Info, error) {
	payload := todos
	if payload == nil {
		payload = map[string]*domain.Todo{}
	}

	env := envelope{
		Version: FormatVersion,
		SavedAt: time.Now().UTC(),
		Count:   len(payload),
		Payload: payload,
	}

	if m.sealer != nil {
		plain, err := json.Marshal(payload)
		if err != nil {
			return nil, persistenceError("encode payload", err)
		}
		sealed, cipherType, salt, err := m.sealer.seal(plain)
		if err != nil {
			return nil, persistenceError("seal payload", err)
		}
		env.Payload = nil
		env.Sealed = sealed
		env.Cipher = cipherType
		env.Salt = salt
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, persistenceError("encode envelope", err)
	}
	data = append(data, '\n')

	if err := writeFileAtomic(m.path, data); err != nil {
		return nil, persistenceError("write", err)
	}

	return &Info{
		Path:    m.path,
		Found:   true,
		Version: env.Version,
		Count:   env.Count,
		Size:    int64(len(data)),
		SavedAt: env.SavedAt,
		Sealed:  m.sealer != nil,
	}, nil
}

// Load reads the snapshot file.
//
// A missing file yields an empty map and Info.Found == false. A file that
// cannot be parsed, carries an unknown version, or holds invalid records
// yields ErrCorruptSnapshot.
func (m *Manager) Load() (map[string]*domain.Todo, *Info, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]*domain.Todo{}, &Info{Path: m.path}, nil
		}
		return nil, nil, fmt.Errorf("snapshot: read %s: %w", m.path, err)
	}

	var header struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, nil, corruptError("parse envelope", err)
	}
	if header.Version == nil {
		return nil, nil, domain.ErrCorruptSnapshot.WithDetails("missing version")
	}
	if *header.Version != FormatVersion {
		return nil, nil, domain.ErrCorruptSnapshot.WithDetails(fmt.Sprintf("unsupported version %d", *header.Version))
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, corruptError("parse envelope", err)
	}

	todos := env.Payload
	if len(env.Sealed) > 0 {
		if m.sealer == nil {
			return nil, nil, domain.ErrCorruptSnapshot.WithCause(ErrKeyRequired)
		}
		plain, err := m.sealer.open(env.Sealed, env.Cipher, env.Salt)
		if err != nil {
			return nil, nil, domain.ErrCorruptSnapshot.WithCause(err)
		}
		todos = nil
		if err := json.Unmarshal(plain, &todos); err != nil {
			return nil, nil, corruptError("parse sealed payload", err)
		}
	}
	if todos == nil {
		return nil, nil, domain.ErrCorruptSnapshot.WithDetails("missing payload")
	}

	for id, todo := range todos {
		if todo == nil {
			return nil, nil, domain.ErrCorruptSnapshot.WithDetails("null record " + id)
		}
		if todo.ID != id {
			return nil, nil, domain.ErrCorruptSnapshot.WithDetails(fmt.Sprintf("record key %q holds id %q", id, todo.ID))
		}
		if err := todo.Validate(); err != nil {
			return nil, nil, domain.ErrCorruptSnapshot.WithCause(err)
		}
	}

	return todos, &Info{
		Path:    m.path,
		Found:   true,
		Version: env.Version,
		Count:   len(todos),
		Size:    int64(len(data)),
		SavedAt: env.SavedAt,
		Sealed:  len(env.Sealed) > 0,
	}, nil
}

// writeFileAtomic writes data to a temp file next to path, syncs it and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.CreateTemp(dir, filepath.Base(path)+tempPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := file.Name()
	defer os.Remove(tempPath) // no-op after a successful rename

	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	syncDir(dir)
	return nil
}

// syncDir makes the rename durable. Best effort; some platforms cannot
// fsync a directory.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

func persistenceError(op string, err error) error {
	return domain.ErrPersistenceFailure.WithDetails(op).WithCause(err)
}

func corruptError(op string, err error) error {
	return domain.ErrCorruptSnapshot.WithDetails(op).WithCause(err)
}
