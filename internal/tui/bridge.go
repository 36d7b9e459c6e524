package tui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// providerChangedMsg tells the event loop that provider state moved. It
// carries no data; Update rereads the provider.
type providerChangedMsg struct{}

// changeBridge forwards provider change callbacks into the program. The
// callbacks may fire from inside Update, so sending never blocks the caller,
// and bursts of changes collapse into one message.
type changeBridge struct {
	pending atomic.Bool
	send    func(tea.Msg)
}

func newChangeBridge(send func(tea.Msg)) *changeBridge {
	return &changeBridge{send: send}
}

func (b *changeBridge) notify() {
	if !b.pending.CompareAndSwap(false, true) {
		return
	}
	go func() {
		b.pending.Store(false)
		b.send(providerChangedMsg{})
	}()
}

// Run starts the program and blocks until the user quits.
func Run(app *App, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	p := tea.NewProgram(app, opts...)
	app.provider.OnChange(newChangeBridge(p.Send).notify)
	defer app.Close()

	_, err := p.Run()
	return err
}
