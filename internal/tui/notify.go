package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

type changedMsg struct{}

// waitForChange delivers one changedMsg per wake-up on ch.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}
