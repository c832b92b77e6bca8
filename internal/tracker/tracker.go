// Package tracker holds the active conversation selection and the stack
// of previously active conversations, persisted across invocations.
package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raphaelgruber/termchat/internal/models"
)

// maxHistory bounds the previous-active stack. In practice the stack
// stays tiny; the cap is only a safety valve, oldest entries go first.
const maxHistory = 100

// state is the durable snapshot, one file per user. The field names match
// the layout the original tool kept at the top of its conversations file.
type state struct {
	Active    string          `json:"active"`
	Previous  []string        `json:"previous_active"`
	Platform  models.Platform `json:"platform"`
	MaxTokens int             `json:"max_tokens"`
}

// Tracker tracks which conversation is current and which were current
// before it. An empty Active means no named conversation is selected:
// either nothing at all, or a temporary one the caller holds in memory.
type Tracker struct {
	path  string
	state state
}

// Load reads the tracker state from path, falling back to the given
// defaults when no state file exists yet.
func Load(path string, defaultPlatform models.Platform, defaultMaxTokens int) (*Tracker, error) {
	t := &Tracker{
		path: path,
		state: state{
			Platform:  defaultPlatform,
			MaxTokens: defaultMaxTokens,
		},
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tracker state: %w", err)
	}
	if err := json.Unmarshal(data, &t.state); err != nil {
		return nil, fmt.Errorf("parse tracker state %s: %w", path, err)
	}
	if t.state.Platform == "" {
		t.state.Platform = defaultPlatform
	}
	if t.state.MaxTokens <= 0 {
		t.state.MaxTokens = defaultMaxTokens
	}
	return t, nil
}

// Active returns the currently selected conversation name, or "" when
// none is selected.
func (t *Tracker) Active() string {
	return t.state.Active
}

// SetActive selects a conversation. If a different named conversation was
// current, its name is pushed onto the previous-active stack; a name may
// appear there multiple times if reselected. Passing "" vacates the
// selection (for temporary conversations or no selection at all).
func (t *Tracker) SetActive(name string) {
	current := t.state.Active
	if current != "" && current != name {
		t.push(current)
	}
	t.state.Active = name
}

func (t *Tracker) push(name string) {
	t.state.Previous = append(t.state.Previous, name)
	if len(t.state.Previous) > maxHistory {
		t.state.Previous = t.state.Previous[len(t.state.Previous)-maxHistory:]
	}
}

// PopPrevious removes and returns the most recently pushed name that
// still exists according to the predicate, pruning stale entries as it
// goes. Deleted conversations are reconciled here, on read, not eagerly.
// Returns "" when the stack is exhausted.
func (t *Tracker) PopPrevious(exists func(string) bool) string {
	for len(t.state.Previous) > 0 {
		last := len(t.state.Previous) - 1
		name := t.state.Previous[last]
		t.state.Previous = t.state.Previous[:last]
		if exists(name) {
			return name
		}
	}
	return ""
}

// OnDelete reacts to a conversation being removed from the store: all
// stack occurrences of the name are scrubbed, and if it was current the
// most recent still-existing prior conversation becomes current.
func (t *Tracker) OnDelete(name string, exists func(string) bool) {
	kept := t.state.Previous[:0]
	for _, n := range t.state.Previous {
		if n != name {
			kept = append(kept, n)
		}
	}
	t.state.Previous = kept

	if t.state.Active == name {
		t.state.Active = t.PopPrevious(exists)
	}
}

// OnRename replaces old with new everywhere: the current selection and
// every stack occurrence.
func (t *Tracker) OnRename(oldName, newName string) {
	if t.state.Active == oldName {
		t.state.Active = newName
	}
	for i, n := range t.state.Previous {
		if n == oldName {
			t.state.Previous[i] = newName
		}
	}
}

// Previous returns a copy of the previous-active stack, oldest first.
func (t *Tracker) Previous() []string {
	out := make([]string, len(t.state.Previous))
	copy(out, t.state.Previous)
	return out
}

// Platform returns the default platform for new conversations.
func (t *Tracker) Platform() models.Platform {
	return t.state.Platform
}

// SetPlatform updates the default platform.
func (t *Tracker) SetPlatform(platform models.Platform) {
	t.state.Platform = platform
}

// MaxTokens returns the default response cap for new conversations.
func (t *Tracker) MaxTokens() int {
	return t.state.MaxTokens
}

// SetMaxTokens updates the default response cap.
func (t *Tracker) SetMaxTokens(n int) {
	t.state.MaxTokens = n
}

// Save writes the state snapshot with the same temp-then-rename
// discipline the store uses.
func (t *Tracker) Save() error {
	data, err := json.MarshalIndent(t.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tracker state: %w", err)
	}
	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		return fmt.Errorf("commit tracker state: %w", err)
	}
	return nil
}
