// Package manager orchestrates the conversation store, the active
// conversation tracker, and the chat session. It owns the lifecycle of
// named and temporary conversations and the invariants across them.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/termchat/internal/alias"
	"github.com/raphaelgruber/termchat/internal/models"
	"github.com/raphaelgruber/termchat/internal/store"
	"github.com/raphaelgruber/termchat/internal/tracker"
)

// ErrNoActive indicates an operation needing an active conversation was
// called while none is selected.
var ErrNoActive = errors.New("no active conversation")

// ChatSession is the model API collaborator. Complete streams partial
// text chunks to onChunk while buffering the full assistant reply.
type ChatSession interface {
	Complete(ctx context.Context, messages []models.Message, maxTokens int, onChunk func(string)) (string, error)
}

// Info describes the current session parameters.
type Info struct {
	Active         string
	Temporary      bool
	Platform       models.Platform
	MaxTokens      int
	Conversations  int
	ActiveMessages int
}

// Manager coordinates store, tracker, alias generation, and the chat
// session. Not safe for concurrent use; the tool is single-threaded.
type Manager struct {
	store   *store.Store
	tracker *tracker.Tracker
	session ChatSession
	alias   *alias.Generator
	known   map[models.Platform]bool
	logger  *slog.Logger

	// temp holds the in-memory temporary conversation while one is
	// active; nil otherwise. It is written to the store only on
	// promotion.
	temp *models.Conversation
}

// New creates a manager. session may be nil for commands that never talk
// to the model; known lists the platforms configuration accepts.
func New(s *store.Store, t *tracker.Tracker, session ChatSession, gen *alias.Generator, known []models.Platform, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	knownSet := make(map[models.Platform]bool, len(known))
	for _, p := range known {
		knownSet[p] = true
	}
	return &Manager{
		store:   s,
		tracker: t,
		session: session,
		alias:   gen,
		known:   knownSet,
		logger:  logger,
	}
}

// Create starts a new conversation and makes it active. With a name the
// conversation is persisted immediately; without one a temporary,
// unnamed session is held in memory until its first completed exchange
// promotes it.
func (m *Manager) Create(name string) (*models.Conversation, error) {
	now := time.Now().UTC()
	if name == "" {
		m.temp = &models.Conversation{
			Platform:  m.tracker.Platform(),
			MaxTokens: m.tracker.MaxTokens(),
			CreatedAt: now,
			UpdatedAt: now,
		}
		m.tracker.SetActive("")
		if err := m.tracker.Save(); err != nil {
			return nil, err
		}
		m.logger.Debug("temporary conversation started")
		return m.temp, nil
	}

	conv, err := m.store.Create(name, m.tracker.Platform(), m.tracker.MaxTokens())
	if err != nil {
		return nil, err
	}
	m.temp = nil
	m.tracker.SetActive(name)
	if err := m.tracker.Save(); err != nil {
		return nil, err
	}
	m.logger.Debug("conversation created", "name", name)
	return conv, nil
}

// Select makes a named conversation active, pushing the prior one onto
// the history stack.
func (m *Manager) Select(name string) (*models.Conversation, error) {
	conv, err := m.store.Get(name)
	if err != nil {
		return nil, err
	}
	m.temp = nil
	m.tracker.SetActive(name)
	if err := m.tracker.Save(); err != nil {
		return nil, err
	}
	return conv, nil
}

// Send appends the user message to the active conversation, streams the
// assistant reply through onChunk, and persists the completed exchange.
//
// For a named conversation the user message is committed before the
// model call, so a failed or interrupted call still leaves it durable;
// the assistant message is committed only when the stream completes, so
// partial replies are never persisted.
//
// A temporary conversation is promoted on its first completed exchange:
// an alias is generated and the conversation is written to the store as
// a named record in one step. The promoted name is reported through the
// returned conversation.
func (m *Manager) Send(ctx context.Context, text string, onChunk func(string)) (*models.Conversation, error) {
	if m.session == nil {
		return nil, fmt.Errorf("send message: chat session not configured")
	}
	if m.temp != nil {
		return m.sendTemporary(ctx, text, onChunk)
	}

	name := m.tracker.Active()
	if name == "" {
		return nil, fmt.Errorf("send message: %w", ErrNoActive)
	}
	conv, err := m.store.Get(name)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	userMsg := models.Message{Role: models.RoleUser, Content: text}
	if err := m.store.AppendMessage(name, userMsg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	history := append(models.CloneMessages(conv.Messages), userMsg)

	reply, err := m.session.Complete(ctx, history, conv.MaxTokens, onChunk)
	if err != nil {
		// The user message stays committed; partial progress is
		// visible and the failure surfaces to the caller.
		return nil, fmt.Errorf("send to %q: %w", name, err)
	}
	if err := m.store.AppendMessage(name, models.Message{Role: models.RoleAssistant, Content: reply}); err != nil {
		return nil, fmt.Errorf("send to %q: %w", name, err)
	}
	return m.store.Get(name)
}

func (m *Manager) sendTemporary(ctx context.Context, text string, onChunk func(string)) (*models.Conversation, error) {
	userMsg := models.Message{Role: models.RoleUser, Content: text}
	m.temp.Messages = append(m.temp.Messages, userMsg)

	reply, err := m.session.Complete(ctx, m.temp.Messages, m.temp.MaxTokens, onChunk)
	if err != nil {
		// Nothing durable yet; the user message stays in the
		// in-memory session for a retry.
		return nil, fmt.Errorf("send message: %w", err)
	}
	m.temp.Messages = append(m.temp.Messages, models.Message{Role: models.RoleAssistant, Content: reply})
	m.temp.UpdatedAt = time.Now().UTC()

	name := m.alias.Generate(ctx, m.existingNames(), text)
	m.temp.Name = name
	if err := m.store.Insert(m.temp); err != nil {
		return nil, fmt.Errorf("promote temporary conversation: %w", err)
	}
	conv := m.temp
	m.temp = nil
	m.tracker.SetActive(name)
	if err := m.tracker.Save(); err != nil {
		return nil, err
	}
	m.logger.Info("temporary conversation promoted", "name", name)
	return conv, nil
}

// Rename changes a conversation's name, keeping the tracker's current
// selection and history stack consistent.
func (m *Manager) Rename(oldName, newName string) error {
	if err := m.store.Rename(oldName, newName); err != nil {
		return err
	}
	m.tracker.OnRename(oldName, newName)
	return m.tracker.Save()
}

// RenameAuto renames a conversation to a generated alias seeded from its
// last message. An empty conversation cannot be summarized.
func (m *Manager) RenameAuto(ctx context.Context, oldName string) (string, error) {
	conv, err := m.store.Get(oldName)
	if err != nil {
		return "", err
	}
	if len(conv.Messages) == 0 {
		return "", fmt.Errorf("rename conversation %q: cannot generate alias for empty conversation: %w", oldName, models.ErrValidation)
	}
	seed := conv.Messages[len(conv.Messages)-1].Content

	existing := m.existingNames()
	delete(existing, oldName)
	newName := m.alias.Generate(ctx, existing, seed)
	if err := m.Rename(oldName, newName); err != nil {
		return "", err
	}
	return newName, nil
}

// Delete removes a conversation. If it was active, the most recent
// still-existing prior conversation becomes active; with the stack
// exhausted no conversation remains selected.
func (m *Manager) Delete(name string) error {
	if err := m.store.Delete(name); err != nil {
		return err
	}
	m.tracker.OnDelete(name, m.store.Exists)
	return m.tracker.Save()
}

// Clone copies a conversation under a new name without changing the
// active selection.
func (m *Manager) Clone(newName, sourceName string) (*models.Conversation, error) {
	return m.store.Clone(newName, sourceName)
}

// List returns conversation summaries, most recently updated first.
func (m *Manager) List() ([]models.Summary, error) {
	return m.store.List()
}

// Show returns a conversation by name, or the active one when name is
// empty (including an in-memory temporary conversation).
func (m *Manager) Show(name string) (*models.Conversation, error) {
	if name != "" {
		return m.store.Get(name)
	}
	if m.temp != nil {
		return m.temp, nil
	}
	active := m.tracker.Active()
	if active == "" {
		return nil, ErrNoActive
	}
	return m.store.Get(active)
}

// Active returns the active conversation name and whether the current
// session is a temporary, unnamed one.
func (m *Manager) Active() (string, bool) {
	return m.tracker.Active(), m.temp != nil
}

// Info reports the current session parameters.
func (m *Manager) Info() (Info, error) {
	summaries, err := m.store.List()
	if err != nil {
		return Info{}, err
	}
	info := Info{
		Active:        m.tracker.Active(),
		Temporary:     m.temp != nil,
		Platform:      m.tracker.Platform(),
		MaxTokens:     m.tracker.MaxTokens(),
		Conversations: len(summaries),
	}
	switch {
	case m.temp != nil:
		info.ActiveMessages = len(m.temp.Messages)
	case info.Active != "":
		conv, err := m.store.Get(info.Active)
		if err == nil {
			info.ActiveMessages = len(conv.Messages)
		}
	}
	return info, nil
}

// SetDefaults updates the default platform and/or response cap for new
// conversations. Zero values leave the corresponding default untouched.
func (m *Manager) SetDefaults(platform models.Platform, maxTokens int) error {
	if platform != "" {
		if !m.known[platform] {
			return fmt.Errorf("unknown platform %q: %w", platform, models.ErrValidation)
		}
		m.tracker.SetPlatform(platform)
	}
	if maxTokens != 0 {
		if err := models.ValidateMaxTokens(maxTokens); err != nil {
			return err
		}
		m.tracker.SetMaxTokens(maxTokens)
	}
	return m.tracker.Save()
}

func (m *Manager) existingNames() map[string]bool {
	existing := map[string]bool{}
	summaries, err := m.store.List()
	if err != nil {
		m.logger.Warn("could not list conversations for alias generation", "error", err)
		return existing
	}
	for _, s := range summaries {
		existing[s.Name] = true
	}
	return existing
}
