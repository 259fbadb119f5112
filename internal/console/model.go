// Package console is a terminal front end for the distributor price review workflow.
package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilboltonAD/marketplace-admin-api/internal/dto"
	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
)

// Backend is the subset of the price sync service the console drives.
type Backend interface {
	CreateSession(ctx context.Context, req dto.CreatePriceSyncSessionRequest, operator string) (*dto.PriceSyncSessionView, error)
	GetSession(ctx context.Context, id string) (*dto.PriceSyncSessionView, error)
	SwitchTab(ctx context.Context, id string, req dto.SwitchPriceSyncTabRequest) (*dto.PriceSyncSessionView, error)
	SetFilters(ctx context.Context, id string, req dto.UpdatePriceSyncFiltersRequest) (*dto.PriceSyncSessionView, error)
	SetPage(ctx context.Context, id string, req dto.SetPriceSyncPageRequest) (*dto.PriceSyncSessionView, error)
	ToggleSelection(ctx context.Context, id string, req dto.ToggleSelectionRequest) (*dto.PriceSyncSessionView, error)
	ToggleAll(ctx context.Context, id string) (*dto.PriceSyncSessionView, error)
	ClearSelection(ctx context.Context, id string) (*dto.PriceSyncSessionView, error)
	OpenReview(ctx context.Context, id string) (*dto.PriceSyncSessionView, error)
	CancelReview(ctx context.Context, id string) (*dto.PriceSyncSessionView, error)
	RemoveFromReview(ctx context.Context, id, recordID string) (*dto.PriceSyncSessionView, error)
	Commit(ctx context.Context, id, operator string) (*dto.PriceSyncCommitResult, error)
}

// Options configures the console.
type Options struct {
	Context  context.Context
	Backend  Backend
	Operator string
	PollTick time.Duration
}

// Model is the Bubble Tea state of the console.
type Model struct {
	ctx      context.Context
	backend  Backend
	operator string
	pollTick time.Duration
	keys     keyMap
	styles   styles

	width  int
	height int

	session *dto.PriceSyncSessionView
	cursor  int

	searching bool
	search    textinput.Model
	showHelp  bool

	notice    string
	noticeErr bool
}

// New builds the console model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}
	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "product name or SKU"
	search.CharLimit = 200

	return Model{
		ctx:      ctx,
		backend:  opts.Backend,
		operator: opts.Operator,
		pollTick: pollTick,
		keys:     defaultKeyMap(),
		styles:   defaultStyles(),
		search:   search,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.openSessionCmd(), tickCmd(m.pollTick))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if m.session == nil {
			return m, tickCmd(m.pollTick)
		}
		return m, tea.Batch(m.call(func(ctx context.Context, id string) (*dto.PriceSyncSessionView, error) {
			return m.backend.GetSession(ctx, id)
		}), tickCmd(m.pollTick))

	case sessionMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.session = msg.view
		m.clampCursor()
		if msg.notice != "" {
			m.notice = msg.notice
			m.noticeErr = false
		}
		return m, nil

	case commitMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		session := msg.result.Session
		m.session = &session
		m.cursor = 0
		m.notice = fmt.Sprintf("Applied %d price update(s); resolving in %s", len(msg.result.Committed), msg.result.ResolveAfter)
		m.noticeErr = false
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.session == nil {
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}
	if m.reviewOpen() {
		return m.handleReviewKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.session.Records)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.SwitchTab):
		next := models.PriceSyncViewSynced
		if m.session.View == models.PriceSyncViewSynced {
			next = models.PriceSyncViewAvailable
		}
		m.cursor = 0
		m.search.SetValue("")
		return m, m.call(func(ctx context.Context, id string) (*dto.PriceSyncSessionView, error) {
			return m.backend.SwitchTab(ctx, id, dto.SwitchPriceSyncTabRequest{View: string(next)})
		})
	case key.Matches(msg, m.keys.Toggle):
		rec := m.current()
		if rec == nil || m.session.View != models.PriceSyncViewAvailable {
			return m, nil
		}
		id := rec.ID
		return m, m.call(func(ctx context.Context, sid string) (*dto.PriceSyncSessionView, error) {
			return m.backend.ToggleSelection(ctx, sid, dto.ToggleSelectionRequest{RecordID: id})
		})
	case key.Matches(msg, m.keys.ToggleAll):
		if m.session.View != models.PriceSyncViewAvailable {
			return m, nil
		}
		return m, m.call(m.backend.ToggleAll)
	case key.Matches(msg, m.keys.Clear):
		return m, m.call(m.backend.ClearSelection)
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.session.Filters.Query)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Distributor):
		req := m.filterRequest()
		req.Distributor = nextDistributor(m.session.Filters.Distributor)
		m.cursor = 0
		return m, m.setFilters(req)
	case key.Matches(msg, m.keys.Status):
		if m.session.View != models.PriceSyncViewSynced {
			return m, nil
		}
		req := m.filterRequest()
		req.Status = nextStatus(m.session.Filters.Status)
		m.cursor = 0
		return m, m.setFilters(req)
	case key.Matches(msg, m.keys.Review):
		if len(m.session.Selection) == 0 {
			m.notice = "Select at least one price update to review"
			m.noticeErr = true
			return m, nil
		}
		m.cursor = 0
		return m, m.call(m.backend.OpenReview)
	case key.Matches(msg, m.keys.NextPage):
		if m.session.Pagination.Page < m.session.Pagination.TotalPages {
			m.cursor = 0
			return m, m.page(m.session.Pagination.Page + 1)
		}
	case key.Matches(msg, m.keys.PrevPage):
		if m.session.Pagination.Page > 1 {
			m.cursor = 0
			return m, m.page(m.session.Pagination.Page - 1)
		}
	}
	return m, nil
}

func (m Model) handleReviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.session.Review.Items
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Remove):
		if m.cursor >= len(items) {
			return m, nil
		}
		id := items[m.cursor].ID
		return m, m.call(func(ctx context.Context, sid string) (*dto.PriceSyncSessionView, error) {
			return m.backend.RemoveFromReview(ctx, sid, id)
		})
	case key.Matches(msg, m.keys.Commit):
		if !m.session.Review.CanCommit {
			return m, nil
		}
		return m, m.commitCmd()
	case key.Matches(msg, m.keys.Cancel):
		m.cursor = 0
		return m, m.call(m.backend.CancelReview)
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		req := m.filterRequest()
		req.Query = strings.TrimSpace(m.search.Value())
		m.cursor = 0
		return m, m.setFilters(req)
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) setError(err error) {
	m.notice = err.Error()
	m.noticeErr = true
}

func (m *Model) clampCursor() {
	limit := 0
	if m.reviewOpen() {
		limit = len(m.session.Review.Items)
	} else if m.session != nil {
		limit = len(m.session.Records)
	}
	if m.cursor >= limit {
		m.cursor = limit - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) reviewOpen() bool {
	return m.session != nil && m.session.Review != nil
}

func (m Model) current() *models.PriceUpdateRecord {
	if m.session == nil || m.cursor < 0 || m.cursor >= len(m.session.Records) {
		return nil
	}
	return &m.session.Records[m.cursor]
}

func (m Model) selected(id string) bool {
	for _, sel := range m.session.Selection {
		if sel == id {
			return true
		}
	}
	return false
}

func (m Model) filterRequest() dto.UpdatePriceSyncFiltersRequest {
	req := dto.UpdatePriceSyncFiltersRequest{Query: m.session.Filters.Query}
	if d := m.session.Filters.Distributor; d != "" {
		opt := dto.LabeledOption(string(d), d.Label())
		req.Distributor = &opt
	}
	if st := m.session.Filters.Status; st != "" {
		opt := dto.StringOption(string(st))
		req.Status = &opt
	}
	return req
}

// nextDistributor cycles all -> each distributor -> all.
func nextDistributor(current models.Distributor) *dto.Option {
	for i, d := range models.Distributors {
		if d != current {
			continue
		}
		if i+1 < len(models.Distributors) {
			next := models.Distributors[i+1]
			opt := dto.LabeledOption(string(next), next.Label())
			return &opt
		}
		return nil
	}
	first := models.Distributors[0]
	opt := dto.LabeledOption(string(first), first.Label())
	return &opt
}

// nextStatus cycles all -> PENDING -> SUCCESS -> FAILED -> all.
func nextStatus(current models.PriceUpdateStatus) *dto.Option {
	for i, st := range models.SyncedStatuses {
		if st != current {
			continue
		}
		if i+1 < len(models.SyncedStatuses) {
			opt := dto.StringOption(string(models.SyncedStatuses[i+1]))
			return &opt
		}
		return nil
	}
	opt := dto.StringOption(string(models.SyncedStatuses[0]))
	return &opt
}

// Messages

type tickMsg time.Time

type sessionMsg struct {
	view   *dto.PriceSyncSessionView
	err    error
	notice string
}

type commitMsg struct {
	result *dto.PriceSyncCommitResult
	err    error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) openSessionCmd() tea.Cmd {
	backend, ctx, operator := m.backend, m.ctx, m.operator
	return func() tea.Msg {
		view, err := backend.CreateSession(ctx, dto.CreatePriceSyncSessionRequest{}, operator)
		return sessionMsg{view: view, err: err}
	}
}

func (m Model) call(fn func(ctx context.Context, id string) (*dto.PriceSyncSessionView, error)) tea.Cmd {
	ctx, id := m.ctx, m.session.ID
	return func() tea.Msg {
		view, err := fn(ctx, id)
		return sessionMsg{view: view, err: err}
	}
}

func (m Model) setFilters(req dto.UpdatePriceSyncFiltersRequest) tea.Cmd {
	return m.call(func(ctx context.Context, id string) (*dto.PriceSyncSessionView, error) {
		return m.backend.SetFilters(ctx, id, req)
	})
}

func (m Model) page(page int) tea.Cmd {
	return m.call(func(ctx context.Context, id string) (*dto.PriceSyncSessionView, error) {
		return m.backend.SetPage(ctx, id, dto.SetPriceSyncPageRequest{Page: page})
	})
}

func (m Model) commitCmd() tea.Cmd {
	backend, ctx, id, operator := m.backend, m.ctx, m.session.ID, m.operator
	return func() tea.Msg {
		result, err := backend.Commit(ctx, id, operator)
		return commitMsg{result: result, err: err}
	}
}

// Run starts the console program.
func Run(opts Options) error {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(opts.Context))
	_, err := p.Run()
	return err
}
