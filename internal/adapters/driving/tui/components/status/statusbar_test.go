package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/assetchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/assetchat/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())
	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.Turns())

	bar = NewBar(nil, nil)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
	assert.Nil(t, bar.Init())

	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Same(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *Bar)
		want  string
	}{
		{"ready", func(*Bar) {}, "Ready"},
		{"thinking", func(b *Bar) { b.SetState(StateThinking) }, "Thinking..."},
		{
			"error with message",
			func(b *Bar) {
				b.SetState(StateError)
				b.SetMessage("timeout")
			},
			"Error: timeout",
		},
		{"error without message", func(b *Bar) { b.SetState(StateError) }, "Error"},
		{
			"mode and turns",
			func(b *Bar) {
				b.SetMode("Retrieval")
				b.SetTurns(3)
			},
			"3 questions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(160)
			tt.setup(bar)
			view := bar.View()
			assert.Contains(t, view, tt.want)
			assert.Contains(t, view, "enter: ask")
		})
	}
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetMode("Summary")
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetTurns(2)

	bar.Clear()
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.Turns())
	assert.Equal(t, "Summary", bar.mode)
}

func TestBar_Width(t *testing.T) {
	bar := NewBar(nil, nil)
	assert.Equal(t, 80, bar.Width())
	bar.SetWidth(120)
	assert.Equal(t, 120, bar.Width())
	assert.Len(t, bar.Bindings(), 4)
}
