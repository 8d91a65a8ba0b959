package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/snapshop/snapshop/internal/nav"
	"github.com/snapshop/snapshop/internal/search"
)

// screenMsg is implemented by results addressed to one screen instance.
type screenMsg interface {
	screenID() int
}

type navigateMsg struct {
	transition nav.Transition
}

type submitResultMsg struct {
	id      int
	results search.ResultSet
	err     error
}

func (m submitResultMsg) screenID() int { return m.id }

type listResultMsg struct {
	id      int
	results search.ResultSet
	err     error
}

func (m listResultMsg) screenID() int { return m.id }

type linkAction int

const (
	linkOpen linkAction = iota
	linkCopy
)

type linkActionMsg struct {
	id     int
	action linkAction
	link   string
	err    error
}

func (m linkActionMsg) screenID() int { return m.id }

type hintExpiredMsg struct {
	id  int
	seq int
}

func (m hintExpiredMsg) screenID() int { return m.id }

// Commands

func navigateCmd(tr nav.Transition) tea.Cmd {
	return func() tea.Msg {
		return navigateMsg{transition: tr}
	}
}

func submitCmd(ctx context.Context, client search.Searcher, id int, req search.UploadRequest) tea.Cmd {
	return func() tea.Msg {
		results, err := client.SubmitImage(ctx, req)
		if err != nil {
			return submitResultMsg{id: id, err: err}
		}
		return submitResultMsg{id: id, results: results}
	}
}

func listCmd(ctx context.Context, client search.Searcher, id int) tea.Cmd {
	return func() tea.Msg {
		results, err := client.ListItems(ctx)
		if err != nil {
			return listResultMsg{id: id, err: err}
		}
		return listResultMsg{id: id, results: results}
	}
}

func hintExpiryCmd(id, seq int) tea.Cmd {
	return tea.Tick(HintDuration, func(time.Time) tea.Msg {
		return hintExpiredMsg{id: id, seq: seq}
	})
}
