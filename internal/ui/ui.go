package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"spotfave/internal/analysis"
	"spotfave/internal/formatter"
	"spotfave/internal/services"
	"spotfave/internal/shared"
	"spotfave/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	AnalysisView
	ConfirmView
	CurateView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx              context.Context
	view             ViewState
	catalog          services.CatalogService
	config           *shared.Config
	configPath       string
	curator          *tasks.CurateEngine
	analyzer         *analysis.Analyzer
	width            int
	height           int
	playlistList     list.Model
	playlists        []services.Playlist
	trackList        list.Model
	selectedPlaylist *services.PlaylistExport
	summary          *analysis.AudioSummary
	moods            *analysis.PlaylistAnalysis
	progressChan     chan tasks.ProgressUpdate
	progress         tasks.ProgressUpdate
	result           *tasks.CurateResult
	err              error
	help             help.Model
	keys             keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	lock    key.Binding
	analyze key.Binding
	curate  key.Binding
	yes     key.Binding
	no      key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "tracks"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		lock: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "toggle lock"),
		),
		analyze: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "analyze"),
		),
		curate: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "curate"),
		),
		yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		no: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "no"),
		),
		restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.lock, k.analyze},
		{k.curate, k.yes, k.no},
		{k.restart, k.quit},
	}
}

type playlistsFetchedMsg struct {
	playlists []services.Playlist
	err       error
}

type tracksFetchedMsg struct {
	playlist *services.PlaylistExport
	err      error
}

type analysisMsg struct {
	summary *analysis.AudioSummary
	moods   *analysis.PlaylistAnalysis
	err     error
}

type progressUpdateMsg tasks.ProgressUpdate

type curateCompleteMsg struct {
	result *tasks.CurateResult
	err    error
}

// ModelOpts contains the dependencies for a TUI session.
type ModelOpts struct {
	Catalog    services.CatalogService
	Config     *shared.Config
	ConfigPath string // lock toggles are persisted here; empty keeps them in memory
	Curator    *tasks.CurateEngine
	Analyzer   *analysis.Analyzer
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	return &Model{
		ctx:        ctx,
		view:       PlaylistListView,
		catalog:    opts.Catalog,
		config:     opts.Config,
		configPath: opts.ConfigPath,
		curator:    opts.Curator,
		analyzer:   opts.Analyzer,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init initializes the TUI by fetching the user's playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistList.Width() == 0 {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case AnalysisView:
			return m.handleAnalysisKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.playlists = msg.playlists
		m.playlistList = list.New(m.playlistItems(), list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Your Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case tracksFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistListView
			return m, nil
		}
		m.selectedPlaylist = msg.playlist
		items := make([]list.Item, len(msg.playlist.Tracks))
		for i, track := range msg.playlist.Tracks {
			items[i] = trackItem{track: track}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = fmt.Sprintf("Tracks in '%s'", msg.playlist.Playlist.Name)
		m.trackList.SetSize(m.width-4, m.height-8)
		m.view = TrackListView
		return m, nil

	case analysisMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistListView
			return m, nil
		}
		m.summary = msg.summary
		m.moods = msg.moods
		m.view = AnalysisView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case curateCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		if m.progressChan != nil {
			m.progressChan = nil
		}
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case TrackListView:
		return m.renderTrackList()
	case AnalysisView:
		return m.renderAnalysis()
	case ConfirmView:
		return m.renderConfirm()
	case CurateView:
		return m.renderCurate()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if pl, ok := m.selectedItem(); ok {
			return m, m.fetchTracks(pl.ID)
		}
	case "l":
		if pl, ok := m.selectedItem(); ok {
			m.toggleLock(pl)
			index := m.playlistList.Index()
			m.playlistList.SetItems(m.playlistItems())
			m.playlistList.Select(index)
		}
		return m, nil
	case "a":
		if pl, ok := m.selectedItem(); ok {
			return m, m.analyze(pl.ID)
		}
	case "c":
		if pl, ok := m.selectedItem(); ok {
			m.selectedPlaylist = &services.PlaylistExport{Playlist: pl}
			m.view = ConfirmView
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PlaylistListView
		return m, nil
	case "c":
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleAnalysisKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PlaylistListView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = PlaylistListView
		return m, nil
	case "y":
		m.view = CurateView
		return m, m.startCuration()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PlaylistListView
		m.selectedPlaylist = nil
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) playlistItems() []list.Item {
	items := make([]list.Item, len(m.playlists))
	for i, pl := range m.playlists {
		items[i] = playlistItem{playlist: pl, locked: m.config.IsPlaylistLocked(pl.ID)}
	}
	return items
}

func (m *Model) selectedItem() (services.Playlist, bool) {
	selected := m.playlistList.SelectedItem()
	if selected == nil {
		return services.Playlist{}, false
	}
	item, ok := selected.(playlistItem)
	return item.playlist, ok
}

func (m *Model) toggleLock(pl services.Playlist) {
	if m.config.IsPlaylistLocked(pl.ID) {
		m.config.UnlockPlaylist(pl.ID)
	} else {
		m.config.LockPlaylist(pl.ID, pl.Name)
	}
	if m.configPath != "" {
		// lock toggles take effect immediately for other commands
		_ = shared.SaveConfig(m.configPath, m.config)
	}
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.catalog.UserPlaylists(m.ctx)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) fetchTracks(playlistID string) tea.Cmd {
	return func() tea.Msg {
		playlist, err := m.catalog.PlaylistByID(m.ctx, playlistID)
		if err != nil {
			return tracksFetchedMsg{err: err}
		}
		tracks, err := m.catalog.PlaylistTracks(m.ctx, playlistID)
		if err != nil && len(tracks) == 0 {
			return tracksFetchedMsg{err: err}
		}
		return tracksFetchedMsg{playlist: &services.PlaylistExport{Playlist: *playlist, Tracks: tracks}}
	}
}

func (m *Model) analyze(playlistID string) tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.catalog.PlaylistTracks(m.ctx, playlistID)
		if err != nil && len(tracks) == 0 {
			return analysisMsg{err: err}
		}

		ids := make([]string, 0, len(tracks))
		for _, t := range tracks {
			ids = append(ids, t.ID)
		}
		features, err := m.fetchAllFeatures(ids)
		if err != nil {
			return analysisMsg{err: err}
		}

		return analysisMsg{
			summary: analysis.SummarizeAudio(tracks, features),
			moods:   m.analyzer.Analyze(m.ctx, ids),
		}
	}
}

func (m *Model) fetchAllFeatures(ids []string) ([]*services.AudioFeatures, error) {
	features := make([]*services.AudioFeatures, 0, len(ids))
	for i := 0; i < len(ids); i += services.MaxBatchItems {
		end := min(i+services.MaxBatchItems, len(ids))
		batch, err := m.catalog.AudioFeatures(m.ctx, ids[i:end])
		if err != nil {
			return nil, err
		}
		features = append(features, batch...)
	}
	return features, nil
}

func (m *Model) startCuration() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progressChan := m.progressChan

	go func() {
		result, err := m.curator.Curate(m.ctx, progressChan, m.selectedPlaylist.Playlist.ID, tasks.CurateOptions{})
		m.result = result
		m.err = err
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return curateCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return curateCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.lock, m.keys.analyze, m.keys.curate, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	helpKeys := []key.Binding{m.keys.curate, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderAnalysis() string {
	title := styles.title.Render("Playlist Analysis")

	body := string(formatter.AudioSummaryToText(m.summary))
	if m.moods != nil && !m.moods.Empty() {
		body += "\n" + string(formatter.AnalysisToText(m.moods))
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n%s", title, body, helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Curate a new playlist from '%s'?", m.selectedPlaylist.Playlist.Name))
	info := fmt.Sprintf("\nSource: %s\nTracks: %d\n", m.selectedPlaylist.Playlist.Name, m.selectedPlaylist.Playlist.TrackCount)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderCurate() string {
	title := styles.title.Render("Curating Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.AnalyzeTracks:
		phase = "Analyzing source tracks..."
	case tasks.FetchRecommendations:
		phase = "Requesting recommendations..."
	case tasks.CreatePlaylist:
		phase = "Creating playlist..."
	case tasks.PopulatePlaylist:
		phase = fmt.Sprintf("Adding tracks (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Curation failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Curation Complete!")
	info := fmt.Sprintf(
		"\nPlaylist: %s\nTracks added: %d\nShare link: %s",
		m.result.Playlist.Name,
		m.result.Added,
		m.result.ShareURL,
	)

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
