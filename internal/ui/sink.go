package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"hwdash/internal/metrics"
)

type snapshotMsg struct {
	payload metrics.DashboardPayload
}

type historyMsg struct {
	history metrics.History
}

type fetchErrorMsg struct {
	err error
}

type clearErrorMsg struct{}

type pulseEndMsg struct {
	id uint64
}

// Sink forwards poll results into a running program so the board and charts
// are only ever touched from the update loop. Pass (*tea.Program).Send.
type Sink struct {
	send func(tea.Msg)
}

func NewSink(send func(tea.Msg)) *Sink {
	return &Sink{send: send}
}

func (s *Sink) ClearError()         { s.send(clearErrorMsg{}) }
func (s *Sink) ShowError(err error) { s.send(fetchErrorMsg{err: err}) }

func (s *Sink) ApplySnapshot(p metrics.DashboardPayload) {
	s.send(snapshotMsg{payload: p})
}

func (s *Sink) ApplyHistory(h metrics.History) {
	s.send(historyMsg{history: h})
}
