package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/raphaelgruber/termchat/internal/models"
)

const recordExt = ".json"

// Store is a file-backed conversation store. Each conversation lives in
// its own JSON file named after the conversation, so writes to one record
// never touch another. Records are written to a temp file and renamed
// into place; a crash mid-write leaves no parseable partial record.
type Store struct {
	dir    string
	logger *slog.Logger

	mu sync.Mutex
}

// New creates a store rooted at dir, creating the directory if needed.
// A nil logger disables logging.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{dir: dir, logger: logger}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+recordExt)
}

func (s *Store) exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

// Exists reports whether a conversation with the given name is persisted.
func (s *Store) Exists(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exists(name)
}

// Create persists a new empty conversation.
func (s *Store) Create(name string, platform models.Platform, maxTokens int) (*models.Conversation, error) {
	now := time.Now().UTC()
	conv := &models.Conversation{
		Name:      name,
		Platform:  platform,
		MaxTokens: maxTokens,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Insert(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Insert persists a fully-formed conversation under its name, failing
// with ErrDuplicateName if the name is taken. Used for promoting
// temporary conversations that already carry messages.
func (s *Store) Insert(conv *models.Conversation) error {
	if err := models.ValidateName(conv.Name); err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exists(conv.Name) {
		return fmt.Errorf("create conversation %q: %w", conv.Name, ErrDuplicateName)
	}
	if err := s.write(conv); err != nil {
		return fmt.Errorf("create conversation %q: %w", conv.Name, err)
	}
	s.logger.Debug("conversation created", "name", conv.Name, "platform", conv.Platform)
	return nil
}

// Get loads a conversation by name.
func (s *Store) Get(name string) (*models.Conversation, error) {
	if err := models.ValidateName(name); err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(name)
}

// Rename changes a conversation's identity without altering its messages.
// Renaming a conversation to its own name is a no-op. On failure the
// store is unchanged.
func (s *Store) Rename(oldName, newName string) error {
	if err := models.ValidateName(oldName); err != nil {
		return fmt.Errorf("rename conversation: %w", err)
	}
	if err := models.ValidateName(newName); err != nil {
		return fmt.Errorf("rename conversation %q: %w", oldName, err)
	}
	if oldName == newName {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.exists(oldName) {
		return fmt.Errorf("rename conversation %q: %w", oldName, ErrNotFound)
	}
	if s.exists(newName) {
		return fmt.Errorf("rename conversation %q to %q: %w", oldName, newName, ErrDuplicateName)
	}
	if err := os.Rename(s.path(oldName), s.path(newName)); err != nil {
		return fmt.Errorf("rename conversation %q to %q: %w", oldName, newName, err)
	}
	s.logger.Debug("conversation renamed", "from", oldName, "to", newName)
	return nil
}

// Delete removes a conversation's durable record entirely.
func (s *Store) Delete(name string) error {
	if err := models.ValidateName(name); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return fmt.Errorf("delete conversation %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete conversation %q: %w", name, err)
	}
	s.logger.Debug("conversation deleted", "name", name)
	return nil
}

// Clone creates an independent conversation copying the source's messages
// and platform/token settings. Timestamps are reset to clone time.
func (s *Store) Clone(newName, sourceName string) (*models.Conversation, error) {
	if err := models.ValidateName(sourceName); err != nil {
		return nil, fmt.Errorf("clone conversation: %w", err)
	}
	if err := models.ValidateName(newName); err != nil {
		return nil, fmt.Errorf("clone conversation %q: %w", sourceName, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	source, err := s.read(sourceName)
	if err != nil {
		return nil, fmt.Errorf("clone conversation: %w", err)
	}
	if s.exists(newName) {
		return nil, fmt.Errorf("clone conversation %q to %q: %w", sourceName, newName, ErrDuplicateName)
	}

	now := time.Now().UTC()
	clone := &models.Conversation{
		Name:      newName,
		Platform:  source.Platform,
		MaxTokens: source.MaxTokens,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  models.CloneMessages(source.Messages),
	}
	if err := s.write(clone); err != nil {
		return nil, fmt.Errorf("clone conversation %q to %q: %w", sourceName, newName, err)
	}
	s.logger.Debug("conversation cloned", "source", sourceName, "clone", newName)
	return clone, nil
}

// AppendMessage appends one message to a conversation and bumps its
// updated timestamp. The whole record is rewritten atomically.
func (s *Store) AppendMessage(name string, msg models.Message) error {
	if err := models.ValidateName(name); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.read(name)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	conv.Messages = append(conv.Messages, msg)
	conv.UpdatedAt = time.Now().UTC()
	if err := s.write(conv); err != nil {
		return fmt.Errorf("append message to %q: %w", name, err)
	}
	return nil
}

// List returns summaries of all fully-committed conversations, most
// recently updated first. Unparseable records are skipped rather than
// failing the listing.
func (s *Store) List() ([]models.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	var summaries []models.Summary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), recordExt)
		conv, err := s.read(name)
		if err != nil {
			s.logger.Warn("skipping unreadable conversation record", "name", name, "error", err)
			continue
		}
		summaries = append(summaries, models.Summary{
			Name:         conv.Name,
			Platform:     conv.Platform,
			MessageCount: len(conv.Messages),
			CreatedAt:    conv.CreatedAt,
			UpdatedAt:    conv.UpdatedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// read loads and parses a single record. Callers hold s.mu.
func (s *Store) read(name string) (*models.Conversation, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("conversation %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read conversation %q: %w", name, err)
	}
	var conv models.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("parse conversation %q: %w", name, err)
	}
	conv.Name = name
	return &conv, nil
}

// write marshals a record to a temp file in the store directory and
// renames it over the final path. Callers hold s.mu.
func (s *Store) write(conv *models.Conversation) error {
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp record: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp record: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(conv.Name)); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}
