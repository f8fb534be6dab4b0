package tui

import (
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cli/go-gh/pkg/browser"

	"github.com/spiffcs/usersearch/internal/constants"
	"github.com/spiffcs/usersearch/internal/model"
	"github.com/spiffcs/usersearch/internal/search"
)

// maxLoginLength is the longest username GitHub allows.
const maxLoginLength = 39

// Searcher is the part of the search controller the widget drives.
type Searcher interface {
	OnSearchTermChanged(term string)
	LoadMore()
	Updates() <-chan search.State
}

// Browser opens a URL outside the terminal.
type Browser interface {
	Browse(url string) error
}

// RateLimitFunc reports whether the API is currently rate limited.
type RateLimitFunc func() (limited bool, resetAt time.Time)

// SearchModel is the Bubble Tea model for the interactive user search.
type SearchModel struct {
	ctrl      Searcher
	input     textinput.Model
	spinner   spinner.Model
	help      help.Model
	keys      keyMap
	browser   Browser
	rateLimit RateLimitFunc
	now       func() time.Time

	initialTerm string
	state       search.State
	cursor      int
	width       int
	height      int
	statusMsg   string
	quitting    bool
}

// stateMsg carries a controller snapshot into the update loop.
type stateMsg search.State

// openedMsg reports the outcome of opening a URL.
type openedMsg struct {
	url string
	err error
}

// clearStatusMsg is a message to clear the status
type clearStatusMsg struct{}

// SearchOption is a functional option for configuring a SearchModel.
type SearchOption func(*SearchModel)

// WithInitialTerm pre-fills the search box and starts searching for term.
func WithInitialTerm(term string) SearchOption {
	return func(m *SearchModel) {
		m.initialTerm = term
	}
}

// WithBrowser replaces the browser used to open profiles and repositories.
func WithBrowser(b Browser) SearchOption {
	return func(m *SearchModel) {
		m.browser = b
	}
}

// WithRateLimit shows a warning while fn reports a rate limit.
func WithRateLimit(fn RateLimitFunc) SearchOption {
	return func(m *SearchModel) {
		m.rateLimit = fn
	}
}

// NewSearchModel creates the search widget around ctrl.
func NewSearchModel(ctrl Searcher, opts ...SearchOption) SearchModel {
	ti := textinput.New()
	ti.Placeholder = "Search GitHub users"
	ti.Prompt = "> "
	ti.CharLimit = maxLoginLength
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	b := browser.New("", io.Discard, io.Discard)

	m := SearchModel{
		ctrl:    ctrl,
		input:   ti,
		spinner: s,
		help:    help.New(),
		keys:    defaultKeyMap(),
		browser: &b,
		now:     time.Now,
		width:   80,
		height:  24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.initialTerm != "" {
		m.input.SetValue(m.initialTerm)
	}
	return m
}

// Init implements tea.Model
func (m SearchModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick, waitForState(m.ctrl.Updates())}
	if m.initialTerm != "" {
		ctrl, term := m.ctrl, m.initialTerm
		cmds = append(cmds, func() tea.Msg {
			ctrl.OnSearchTermChanged(term)
			return nil
		})
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case stateMsg:
		m.state = search.State(msg)
		m.clampCursor()
		return m, waitForState(m.ctrl.Updates())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case openedMsg:
		if msg.err != nil {
			m.statusMsg = "Could not open browser: " + msg.err.Error()
		} else {
			m.statusMsg = "Opened " + msg.url
		}
		return m, clearStatusAfter(constants.StatusMessageDuration)

	case clearStatusMsg:
		m.statusMsg = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey processes keyboard input
func (m SearchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.state.Repos)-1 {
			m.cursor++
		} else if m.state.CanLoadMore() {
			// Scrolling past the end pulls in the next page.
			m.ctrl.LoadMore()
		}
		return m, nil

	case key.Matches(msg, m.keys.LoadMore):
		if m.state.CanLoadMore() {
			m.ctrl.LoadMore()
		}
		return m, nil

	case key.Matches(msg, m.keys.Open):
		if r := m.selectedRepo(); r != nil {
			return m, m.openURL(r.URL)
		}
		if m.state.Profile != nil {
			return m, m.openURL(m.state.Profile.ProfileURL)
		}
		return m, nil

	case key.Matches(msg, m.keys.OpenProfile):
		if m.state.Profile != nil {
			return m, m.openURL(m.state.Profile.ProfileURL)
		}
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.input.SetValue("")
		m.termChanged()
		return m, nil
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != prev {
		m.termChanged()
	}
	return m, cmd
}

func (m *SearchModel) termChanged() {
	m.cursor = 0
	m.ctrl.OnSearchTermChanged(m.input.Value())
}

func (m SearchModel) selectedRepo() *model.Repository {
	if m.cursor < 0 || m.cursor >= len(m.state.Repos) {
		return nil
	}
	return &m.state.Repos[m.cursor]
}

func (m *SearchModel) clampCursor() {
	if m.cursor >= len(m.state.Repos) {
		m.cursor = len(m.state.Repos) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m SearchModel) openURL(url string) tea.Cmd {
	if url == "" {
		return nil
	}
	b := m.browser
	return func() tea.Msg {
		return openedMsg{url: url, err: b.Browse(url)}
	}
}

// View implements tea.Model
func (m SearchModel) View() string {
	if m.quitting {
		return ""
	}
	return renderSearchView(m)
}

// State returns the last controller snapshot the widget received.
func (m SearchModel) State() search.State {
	return m.state
}

// clearStatusAfter returns a command that clears the status after a delay
func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// waitForState creates a command that waits for the next controller snapshot.
func waitForState(updates <-chan search.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}
