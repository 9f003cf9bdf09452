package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	tests := []struct {
		name    string
		binding key.Binding
		key     string
	}{
		{"quit", km.Quit, "ctrl+c"},
		{"help", km.Help, "?"},
		{"back", km.Back, "esc"},
		{"send", km.Send, "enter"},
		{"up arrow", km.Up, "up"},
		{"up vim", km.Up, "k"},
		{"down arrow", km.Down, "down"},
		{"down vim", km.Down, "j"},
		{"scroll up", km.ScrollUp, "pgup"},
		{"scroll down", km.ScrollDown, "pgdown"},
		{"reset", km.Reset, "ctrl+r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Matches(tt.key, tt.binding))
		})
	}
}

func TestQuitDoesNotStealTyping(t *testing.T) {
	km := DefaultKeyMap()
	assert.False(t, Matches("q", km.Quit), "q must stay typeable in questions")
}

func TestMatches_NoMatch(t *testing.T) {
	assert.False(t, Matches("x", DefaultKeyMap().Send))
}

func TestHelpGroups(t *testing.T) {
	km := DefaultKeyMap()
	assert.Len(t, km.ChatHelp(), 4)
	assert.Len(t, km.ListHelp(), 4)

	total := 0
	for _, group := range km.FullHelp() {
		total += len(group)
	}
	assert.Equal(t, 10, total)
}
