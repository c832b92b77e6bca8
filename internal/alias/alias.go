// Package alias produces unique human-readable names for unnamed
// conversations.
package alias

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// maxAttempts bounds collision-suffix retries before falling back to a
// uuid fragment, which cannot collide with anything meaningful.
const maxAttempts = 16

const maxSlugLen = 64

// Summarizer produces a short title for a piece of conversation text.
// Typically backed by the model API; may be nil when no client is
// available, in which case only synthetic names are generated.
type Summarizer interface {
	Title(ctx context.Context, text string) (string, error)
}

// Generator derives conversation names, preferring a model-generated
// title slug and falling back to synthetic conv_<n> names.
type Generator struct {
	summarizer Summarizer
	logger     *slog.Logger
}

// New creates a generator. Both arguments may be nil.
func New(summarizer Summarizer, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{summarizer: summarizer, logger: logger}
}

// Generate returns a name not present in existing. If seed text is given
// and a summarizer is configured, the name is derived from a model title;
// the summarize call is not retried on failure, the synthetic fallback is
// used instead so naming can never fail an exchange that already
// completed. Collisions get a numeric suffix, then a uuid fragment.
func (g *Generator) Generate(ctx context.Context, existing map[string]bool, seed string) string {
	base := ""
	if g.summarizer != nil && strings.TrimSpace(seed) != "" {
		title, err := g.summarizer.Title(ctx, seed)
		if err != nil {
			g.logger.Debug("title generation failed, using synthetic name", "error", err)
		} else {
			base = Slug(title)
		}
	}
	if base == "" {
		base = fmt.Sprintf("conv_%d", len(existing)+1)
	}

	if !existing[base] {
		return base
	}
	for i := 2; i < maxAttempts+2; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !existing[candidate] {
			return candidate
		}
	}
	return fmt.Sprintf("%s_%s", base, uuid.NewString()[:8])
}

// Slug sanitizes a title into an identifier-safe conversation name:
// lowercase, spaces to underscores, everything outside [a-z0-9_-]
// dropped, trimmed to a sane length.
func Slug(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	title = strings.ReplaceAll(title, "\n", " ")

	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	slug := strings.Trim(b.String(), "_-")
	for strings.Contains(slug, "__") {
		slug = strings.ReplaceAll(slug, "__", "_")
	}
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "_-")
	}
	return slug
}
