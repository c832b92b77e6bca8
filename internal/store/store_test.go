package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raphaelgruber/termchat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)

	conv, err := s.Create("work", models.PlatformOpenAI, 1024)
	require.NoError(t, err)
	assert.Equal(t, "work", conv.Name)
	assert.Equal(t, models.PlatformOpenAI, conv.Platform)
	assert.Equal(t, 1024, conv.MaxTokens)

	got, err := s.Get("work")
	require.NoError(t, err)
	assert.Equal(t, conv.Name, got.Name)
	assert.Equal(t, conv.Platform, got.Platform)
	assert.Empty(t, got.Messages)
}

func TestCreateDuplicate(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("work", models.PlatformOpenAI, 1024)
	require.NoError(t, err)

	_, err = s.Create("work", models.PlatformDeepseek, 512)
	require.ErrorIs(t, err, ErrDuplicateName)
	assert.Contains(t, err.Error(), "work")

	// The original record is untouched.
	got, err := s.Get("work")
	require.NoError(t, err)
	assert.Equal(t, models.PlatformOpenAI, got.Platform)
}

func TestCreateInvalidName(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"", "a/b", "..\\evil", ".hidden"} {
		_, err := s.Create(name, models.PlatformOpenAI, 1024)
		assert.ErrorIs(t, err, models.ErrValidation, "name %q", name)
	}
}

func TestTraversalNameNeverLeavesStoreDir(t *testing.T) {
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "conversations"), nil)
	require.NoError(t, err)

	// A record one level above the store directory must be unreachable
	// through any store operation.
	outside := filepath.Join(dir, "victim.json")
	require.NoError(t, os.WriteFile(outside, []byte("{}"), 0o600))

	err = s.Delete("../victim")
	require.ErrorIs(t, err, models.ErrValidation)
	_, err = os.Stat(outside)
	require.NoError(t, err, "file outside the store directory must survive")

	_, err = s.Get("../victim")
	assert.ErrorIs(t, err, models.ErrValidation)

	err = s.AppendMessage("../victim", models.Message{Role: models.RoleUser, Content: "hi"})
	assert.ErrorIs(t, err, models.ErrValidation)

	err = s.Rename("../victim", "stolen")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = s.Clone("copy", "../victim")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestRenameRoundTrip(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("a", models.PlatformOpenAI, 1024)
	require.NoError(t, err)
	require.NoError(t, s.AppendMessage("a", models.Message{Role: models.RoleUser, Content: "hello"}))
	require.NoError(t, s.AppendMessage("a", models.Message{Role: models.RoleAssistant, Content: "hi there"}))

	original, err := s.Get("a")
	require.NoError(t, err)

	require.NoError(t, s.Rename("a", "b"))
	require.NoError(t, s.Rename("b", "a"))

	restored, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, original.Messages, restored.Messages)

	_, err = s.Get("b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRenameErrors(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("b", models.PlatformOpenAI, 1024)
	require.NoError(t, err)
	_, err = s.Create("c", models.PlatformOpenAI, 1024)
	require.NoError(t, err)
	require.NoError(t, s.AppendMessage("b", models.Message{Role: models.RoleUser, Content: "in b"}))

	err = s.Rename("missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Rename("b", "c")
	require.ErrorIs(t, err, ErrDuplicateName)

	// Both records unchanged after the failed rename.
	b, err := s.Get("b")
	require.NoError(t, err)
	assert.Len(t, b.Messages, 1)
	c, err := s.Get("c")
	require.NoError(t, err)
	assert.Empty(t, c.Messages)
}

func TestRenameSameNameNoOp(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("a", models.PlatformOpenAI, 1024)
	require.NoError(t, err)
	assert.NoError(t, s.Rename("a", "a"))
	assert.True(t, s.Exists("a"))
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("gone", models.PlatformOpenAI, 1024)
	require.NoError(t, err)
	require.NoError(t, s.Delete("gone"))
	assert.False(t, s.Exists("gone"))

	err = s.Delete("gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCloneIndependence(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("source", models.PlatformDeepseek, 2048)
	require.NoError(t, err)
	require.NoError(t, s.AppendMessage("source", models.Message{Role: models.RoleUser, Content: "original"}))

	clone, err := s.Clone("copy", "source")
	require.NoError(t, err)
	assert.Equal(t, models.PlatformDeepseek, clone.Platform)
	assert.Equal(t, 2048, clone.MaxTokens)
	assert.Len(t, clone.Messages, 1)

	// Mutating the clone leaves the source unchanged.
	require.NoError(t, s.AppendMessage("copy", models.Message{Role: models.RoleAssistant, Content: "only in copy"}))

	source, err := s.Get("source")
	require.NoError(t, err)
	assert.Len(t, source.Messages, 1)
	assert.Equal(t, "original", source.Messages[0].Content)
}

func TestCloneErrors(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Clone("copy", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Create("a", models.PlatformOpenAI, 1024)
	require.NoError(t, err)
	_, err = s.Create("b", models.PlatformOpenAI, 1024)
	require.NoError(t, err)

	_, err = s.Clone("b", "a")
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestAppendMessageOrderAndTimestamp(t *testing.T) {
	s := newTestStore(t)

	conv, err := s.Create("chat", models.PlatformOpenAI, 1024)
	require.NoError(t, err)
	created := conv.UpdatedAt

	require.NoError(t, s.AppendMessage("chat", models.Message{Role: models.RoleUser, Content: "first"}))
	require.NoError(t, s.AppendMessage("chat", models.Message{Role: models.RoleAssistant, Content: "second"}))

	got, err := s.Get("chat")
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "first", got.Messages[0].Content)
	assert.Equal(t, "second", got.Messages[1].Content)
	assert.False(t, got.UpdatedAt.Before(created))

	err = s.AppendMessage("missing", models.Message{Role: models.RoleUser, Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrdersByUpdate(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"oldest", "middle", "newest"} {
		_, err := s.Create(name, models.PlatformOpenAI, 1024)
		require.NoError(t, err)
		// Distinct mtimes even on coarse clocks.
		time.Sleep(5 * time.Millisecond)
	}
	require.NoError(t, s.AppendMessage("oldest", models.Message{Role: models.RoleUser, Content: "bump"}))

	summaries, err := s.List()
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "oldest", summaries[0].Name)
	assert.Equal(t, 1, summaries[0].MessageCount)
}

func TestListSkipsCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, nil)
	require.NoError(t, err)

	_, err = s.Create("good", models.PlatformOpenAI, 1024)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	summaries, err := s.List()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "good", summaries[0].Name)
}

func TestNameUniquenessInvariant(t *testing.T) {
	s := newTestStore(t)

	// A mixed sequence of lifecycle operations never produces two
	// records with the same name.
	_, err := s.Create("a", models.PlatformOpenAI, 1024)
	require.NoError(t, err)
	_, err = s.Create("b", models.PlatformOpenAI, 1024)
	require.NoError(t, err)
	_, err = s.Clone("c", "a")
	require.NoError(t, err)
	require.NoError(t, s.Rename("b", "d"))
	require.NoError(t, s.Delete("a"))
	_, err = s.Create("a", models.PlatformOpenAI, 1024)
	require.NoError(t, err)
	_ = s.Rename("c", "d") // collides, must fail
	_, _ = s.Clone("d", "a")

	summaries, err := s.List()
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, sum := range summaries {
		assert.False(t, seen[sum.Name], "duplicate name %q", sum.Name)
		seen[sum.Name] = true
	}
	assert.Len(t, summaries, 3)
}

func TestInsertPreservesMessages(t *testing.T) {
	s := newTestStore(t)

	conv := &models.Conversation{
		Name:      "promoted",
		Platform:  models.PlatformDeepseek,
		MaxTokens: 1024,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
		Messages: []models.Message{
			{Role: models.RoleUser, Content: "hi"},
			{Role: models.RoleAssistant, Content: "hello"},
		},
	}
	require.NoError(t, s.Insert(conv))

	got, err := s.Get("promoted")
	require.NoError(t, err)
	assert.Equal(t, conv.Messages, got.Messages)

	err = s.Insert(conv)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestConcurrentRecordsDoNotInterfere(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create("one", models.PlatformOpenAI, 1024)
	require.NoError(t, err)
	_, err = s.Create("two", models.PlatformOpenAI, 1024)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, s.AppendMessage("one", models.Message{Role: models.RoleUser, Content: fmt.Sprintf("m%d", i)}))
	}

	two, err := s.Get("two")
	require.NoError(t, err)
	assert.Empty(t, two.Messages)
}

func TestErrorsAreDistinguishable(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrDuplicateName))
}
