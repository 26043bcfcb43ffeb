package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treewalk/pkg/animate"
	"github.com/matzehuels/treewalk/pkg/diagram"
	"github.com/matzehuels/treewalk/pkg/errors"
	"github.com/matzehuels/treewalk/pkg/render/sink"
	"github.com/matzehuels/treewalk/pkg/tree"
)

var (
	watchInputStyle  = lipgloss.NewStyle().Foreground(colorValue)
	watchCursorStyle = lipgloss.NewStyle().Foreground(colorAccent)
	watchFrameStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

func (c *CLI) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Interactive terminal view: type a value, press enter to search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			m := newWatchModel(ctx, a)
			defer m.unsubscribe()

			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		},
	}
}

// =============================================================================
// watchModel - bubbletea model for the watch command
// =============================================================================

type (
	treeLoadedMsg struct {
		nodes int
		stale bool
		err   error
	}
	pathMsg struct {
		raw  string
		path []tree.NodeID
		err  error
	}
	surfaceMsg     diagram.Event
	surfaceDoneMsg struct{}
	sessionDoneMsg struct {
		id    string
		state animate.State
		step  int
		err   error
	}
)

type watchModel struct {
	ctx         context.Context
	app         *app
	events      <-chan diagram.Event
	unsubscribe func()

	input   string
	status  string
	failed  bool
	session string
}

func newWatchModel(ctx context.Context, a *app) watchModel {
	ch, cancel := a.surface.Subscribe(64)
	return watchModel{ctx: ctx, app: a, events: ch, unsubscribe: cancel, status: "Loading tree..."}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.loadTree(), waitForSurface(m.events))
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.setStatus("Refreshing...", false)
			return m, m.loadTree()
		case tea.KeyEnter:
			raw := m.input
			m.input = ""
			return m, m.search(raw)
		case tea.KeyBackspace:
			if r := []rune(m.input); len(r) > 0 {
				m.input = string(r[:len(r)-1])
			}
		case tea.KeyRunes, tea.KeySpace:
			m.input += string(msg.Runes)
		}

	case treeLoadedMsg:
		switch {
		case msg.err != nil:
			m.setStatus(errors.UserMessage(msg.err), true)
		case msg.stale:
			m.setStatus(fmt.Sprintf("%d nodes (cached, service unreachable)", msg.nodes), true)
		default:
			m.setStatus(fmt.Sprintf("%d nodes", msg.nodes), false)
		}

	case pathMsg:
		if msg.err != nil {
			m.setStatus(errors.UserMessage(msg.err), true)
			return m, nil
		}
		sess := m.app.animator.Animate(msg.path)
		m.session = sess.ID()
		m.setStatus(fmt.Sprintf("Searching %s: %d steps", msg.raw, len(msg.path)), false)
		return m, waitForSession(sess)

	case sessionDoneMsg:
		if msg.id != m.session {
			return m, nil
		}
		switch {
		case msg.err != nil:
			m.setStatus(errors.UserMessage(msg.err), true)
		case msg.state == animate.StateCompleted:
			m.setStatus(fmt.Sprintf("Done after %d steps", msg.step+1), false)
		}

	case surfaceMsg:
		return m, waitForSurface(m.events)
	}
	return m, nil
}

func (m *watchModel) setStatus(s string, failed bool) {
	m.status, m.failed = s, failed
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(appName))
	if m.app.client != nil {
		b.WriteString("  " + StyleDim.Render(m.app.client.Server()))
	}
	b.WriteString("\n\n")

	b.WriteString(StyleDim.Render("search "+iconInfo+" ") + watchInputStyle.Render(m.input) + watchCursorStyle.Render("█"))
	b.WriteString("\n\n")

	if sc := m.app.surface.Snapshot(); sc != nil {
		b.WriteString(watchFrameStyle.Render(strings.TrimRight(sink.RenderTerminal(sc), "\n")))
	} else {
		b.WriteString(StyleDim.Render("no tree loaded"))
	}
	b.WriteString("\n\n")

	if m.failed {
		b.WriteString(styleIconError.Render(iconError) + " " + m.status)
	} else {
		b.WriteString(styleIconInfo.Render(iconInfo) + " " + m.status)
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("⏎ search  ctrl+r refresh  esc quit"))
	return b.String()
}

// =============================================================================
// Commands
// =============================================================================

func (m watchModel) loadTree() tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		n, stale, err := a.draw(ctx)
		return treeLoadedMsg{nodes: n, stale: stale, err: err}
	}
}

func (m watchModel) search(raw string) tea.Cmd {
	ctx, a := m.ctx, m.app
	return func() tea.Msg {
		_, path, err := a.searchPath(ctx, raw)
		return pathMsg{raw: strings.TrimSpace(raw), path: path, err: err}
	}
}

func waitForSurface(ch <-chan diagram.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return surfaceDoneMsg{}
		}
		return surfaceMsg(ev)
	}
}

func waitForSession(s *animate.Session) tea.Cmd {
	return func() tea.Msg {
		<-s.Done()
		return sessionDoneMsg{id: s.ID(), state: s.State(), step: s.Step(), err: s.Err()}
	}
}
