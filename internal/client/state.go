// Local annotation state store.
//
// The store keeps one JSON document per speech under a state directory,
// named speech_assoc_<speechID>.json. Each document holds the clean text,
// the association set, and the per-association toggles with their
// monotonic versions. The local copy is authoritative for display; the
// backend mirror exists for cross-device recovery.
package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/trippingly/go-speech-backend/internal/annotate"
)

// ErrNoState is returned by Load when no local state exists for a speech.
var ErrNoState = errors.New("no local state for speech")

// statePrefix and stateSuffix frame the per-speech state file name.
const (
	statePrefix = "speech_assoc_"
	stateSuffix = ".json"
)

// ToggleState is the locally persisted display flag for one association.
// Version increments on every local flip so racing mirrors resolve
// last-write-wins on the backend.
type ToggleState struct {
	ShowOriginal bool  `json:"showOriginal"`
	Version      int64 `json:"version"`
}

// SpeechState is the persisted annotation state of one speech.
type SpeechState struct {
	SpeechID  string    `json:"speechId"`
	Name      string    `json:"name"`
	CleanText string    `json:"cleanText"`
	UpdatedAt time.Time `json:"updatedAt"`

	Associations []annotate.Association `json:"associations"`
	// Toggles is keyed by local association ID.
	Toggles map[string]ToggleState `json:"toggles"`
	// RemoteIDs maps local association IDs to the IDs the backend assigned
	// when the association was mirrored. An association absent from this
	// map has not been mirrored yet.
	RemoteIDs map[string]string `json:"remoteIds"`
}

// ensureMaps initializes the state's maps so callers can write into them.
func (s *SpeechState) ensureMaps() {
	if s.Toggles == nil {
		s.Toggles = make(map[string]ToggleState)
	}
	if s.RemoteIDs == nil {
		s.RemoteIDs = make(map[string]string)
	}
}

// StateStore persists SpeechState documents in a directory.
type StateStore struct {
	dir string
}

// DefaultStateDir returns the per-user state directory
// (~/.trippingly by default).
func DefaultStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".trippingly"), nil
}

// NewStateStore opens (creating if needed) a state store rooted at dir.
func NewStateStore(dir string) (*StateStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &StateStore{dir: dir}, nil
}

// path returns the state file path for a speech ID.
func (s *StateStore) path(speechID string) string {
	return filepath.Join(s.dir, statePrefix+speechID+stateSuffix)
}

// Load reads the state for one speech, or ErrNoState when absent.
func (s *StateStore) Load(speechID string) (*SpeechState, error) {
	buf, err := os.ReadFile(s.path(speechID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoState
		}
		return nil, err
	}
	var st SpeechState
	if err := json.Unmarshal(buf, &st); err != nil {
		return nil, err
	}
	st.ensureMaps()
	return &st, nil
}

// Save writes the state atomically (temp file then rename) so a crash
// mid-write never corrupts existing state.
func (s *StateStore) Save(st *SpeechState) error {
	st.ensureMaps()
	st.UpdatedAt = time.Now().UTC()

	buf, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, statePrefix+"*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path(st.SpeechID))
}

// Delete removes the state for one speech. Deleting absent state succeeds.
func (s *StateStore) Delete(speechID string) error {
	err := os.Remove(s.path(speechID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// List returns the speech IDs with local state, in directory order.
func (s *StateStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, statePrefix) || !strings.HasSuffix(name, stateSuffix) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, statePrefix), stateSuffix)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
