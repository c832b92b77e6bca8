package tracker

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/raphaelgruber/termchat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	trk, err := Load(filepath.Join(t.TempDir(), "state.json"), models.PlatformDeepseek, 1024)
	require.NoError(t, err)
	return trk
}

func always(string) bool { return true }

func TestLoadDefaults(t *testing.T) {
	trk := newTestTracker(t)

	assert.Equal(t, "", trk.Active())
	assert.Empty(t, trk.Previous())
	assert.Equal(t, models.PlatformDeepseek, trk.Platform())
	assert.Equal(t, 1024, trk.MaxTokens())
}

func TestSetActivePushesPrevious(t *testing.T) {
	trk := newTestTracker(t)

	trk.SetActive("a")
	assert.Empty(t, trk.Previous(), "first selection pushes nothing")

	trk.SetActive("b")
	assert.Equal(t, []string{"a"}, trk.Previous())

	// Reselecting the current name is not a transition.
	trk.SetActive("b")
	assert.Equal(t, []string{"a"}, trk.Previous())

	// A name may appear multiple times when reselected.
	trk.SetActive("a")
	trk.SetActive("b")
	assert.Equal(t, []string{"a", "b", "a"}, trk.Previous())
}

func TestCurrentNeverOnStack(t *testing.T) {
	trk := newTestTracker(t)

	trk.SetActive("a")
	trk.SetActive("b")
	trk.SetActive("c")
	for _, n := range trk.Previous() {
		assert.NotEqual(t, trk.Active(), n)
	}
}

func TestVacatingPushesCurrent(t *testing.T) {
	trk := newTestTracker(t)

	trk.SetActive("a")
	trk.SetActive("")
	assert.Equal(t, "", trk.Active())
	assert.Equal(t, []string{"a"}, trk.Previous())

	// Selecting after a temporary session pushes nothing extra.
	trk.SetActive("b")
	assert.Equal(t, []string{"a"}, trk.Previous())
}

func TestPopPreviousPrunesDeleted(t *testing.T) {
	trk := newTestTracker(t)

	trk.SetActive("a")
	trk.SetActive("b")
	trk.SetActive("c")

	// "b" was deleted from the store since being pushed.
	name := trk.PopPrevious(func(n string) bool { return n != "b" })
	assert.Equal(t, "a", name)
	assert.Empty(t, trk.Previous())

	assert.Equal(t, "", trk.PopPrevious(always))
}

func TestOnDeleteRestoresPrevious(t *testing.T) {
	trk := newTestTracker(t)

	trk.SetActive("a")
	trk.SetActive("b")

	trk.OnDelete("b", always)
	assert.Equal(t, "a", trk.Active())
	assert.Empty(t, trk.Previous())
}

func TestOnDeleteScrubsStack(t *testing.T) {
	trk := newTestTracker(t)

	trk.SetActive("a")
	trk.SetActive("b")
	trk.SetActive("a")
	trk.SetActive("c")
	// Stack: a, b, a

	trk.OnDelete("a", always)
	assert.Equal(t, "c", trk.Active(), "deleting a non-current name keeps current")
	assert.Equal(t, []string{"b"}, trk.Previous())
}

func TestOnDeleteExhaustedStack(t *testing.T) {
	trk := newTestTracker(t)

	trk.SetActive("only")
	trk.OnDelete("only", always)
	assert.Equal(t, "", trk.Active())
}

func TestOnRenameReplacesEverywhere(t *testing.T) {
	trk := newTestTracker(t)

	trk.SetActive("a")
	trk.SetActive("b")
	trk.SetActive("a")
	// Stack: a, b; current a

	trk.OnRename("a", "z")
	assert.Equal(t, "z", trk.Active())
	assert.Equal(t, []string{"z", "b"}, trk.Previous())
}

func TestHistoryCapacity(t *testing.T) {
	trk := newTestTracker(t)

	for i := 0; i <= maxHistory+10; i++ {
		trk.SetActive(fmt.Sprintf("conv_%d", i))
	}
	prev := trk.Previous()
	require.Len(t, prev, maxHistory)
	// Oldest entries were discarded.
	assert.Equal(t, fmt.Sprintf("conv_%d", 10), prev[0])
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	trk, err := Load(path, models.PlatformDeepseek, 1024)
	require.NoError(t, err)
	trk.SetActive("a")
	trk.SetActive("b")
	trk.SetPlatform(models.PlatformOpenAI)
	trk.SetMaxTokens(2048)
	require.NoError(t, trk.Save())

	restored, err := Load(path, models.PlatformDeepseek, 1024)
	require.NoError(t, err)
	assert.Equal(t, "b", restored.Active())
	assert.Equal(t, []string{"a"}, restored.Previous())
	assert.Equal(t, models.PlatformOpenAI, restored.Platform())
	assert.Equal(t, 2048, restored.MaxTokens())
}
