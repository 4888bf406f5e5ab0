package ui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Sink receives progress events from scan workers.
type Sink interface {
	OnEvent(Event)
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) OnEvent(Event) {}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- ev
}

// RunProgress shows progress on out while work runs. work must not close the
// channel; RunProgress closes it when work returns and waits for the UI.
func RunProgress(out io.Writer, title string, files []string, work func(Sink) error) error {
	events := make(chan Event, 256)
	errCh := make(chan error, 1)
	go func() {
		err := work(ChannelSink{Ch: events})
		close(events)
		errCh <- err
	}()

	program := tea.NewProgram(NewProgressModel(title, files, events), tea.WithOutput(out), tea.WithInput(nil))
	_, uiErr := program.Run()
	// UI мог выйти раньше, события надо дочитать, иначе воркеры встанут
	go func() {
		for range events {
		}
	}()
	err := <-errCh
	if err != nil {
		return err
	}
	return uiErr
}
