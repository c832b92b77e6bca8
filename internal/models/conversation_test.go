package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"simple", "work", true},
		{"with underscores", "weekend_trip_ideas", true},
		{"with dash and digits", "conv-2", true},
		{"empty", "", false},
		{"path separator", "a/b", false},
		{"backslash", `a\b`, false},
		{"leading dot", ".hidden", false},
		{"too long", strings.Repeat("x", 200), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrValidation)
			}
		})
	}
}

func TestValidateMaxTokens(t *testing.T) {
	assert.NoError(t, ValidateMaxTokens(1))
	assert.ErrorIs(t, ValidateMaxTokens(0), ErrValidation)
	assert.ErrorIs(t, ValidateMaxTokens(-100), ErrValidation)
}

func TestCloneMessagesIndependence(t *testing.T) {
	src := []Message{{Role: RoleUser, Content: "hello"}}
	dst := CloneMessages(src)
	dst[0].Content = "changed"
	dst = append(dst, Message{Role: RoleAssistant, Content: "extra"})

	assert.Equal(t, "hello", src[0].Content)
	assert.Len(t, src, 1)
	assert.Len(t, dst, 2)

	assert.Nil(t, CloneMessages(nil))
}
