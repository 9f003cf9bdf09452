package input

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/assetchat/internal/adapters/driving/tui/styles"
)

func TestNewQuestionInput(t *testing.T) {
	in := NewQuestionInput(styles.DefaultStyles())
	require.NotNil(t, in)
	assert.Empty(t, in.Value())
	assert.True(t, in.Focused())

	in = NewQuestionInput(nil)
	assert.NotNil(t, in.styles)
	assert.NotNil(t, in.Init())
}

func TestQuestionInput_Typing(t *testing.T) {
	in := NewQuestionInput(nil)

	for _, r := range "MPT-001" {
		in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	assert.Equal(t, "MPT-001", in.Value())
	assert.Contains(t, in.View(), "You:")

	in.Reset()
	assert.Empty(t, in.Value())
}

func TestQuestionInput_CharLimit(t *testing.T) {
	in := NewQuestionInput(nil)
	in.SetValue(strings.Repeat("a", MaxQuestionLength+20))
	assert.Len(t, in.Value(), MaxQuestionLength)
}

func TestQuestionInput_FocusBlur(t *testing.T) {
	in := NewQuestionInput(nil)
	in.Blur()
	assert.False(t, in.Focused())
	in.Focus()
	assert.True(t, in.Focused())
}

func TestQuestionInput_SetWidth(t *testing.T) {
	tests := []struct {
		width     int
		wantInner int
	}{
		{100, 88},
		{20, 20},
	}

	for _, tt := range tests {
		in := NewQuestionInput(nil)
		in.SetWidth(tt.width)
		assert.Equal(t, tt.width, in.Width())
		assert.Equal(t, tt.wantInner, in.textinput.Width)
	}
}
