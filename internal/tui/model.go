package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sportanalyzer/internal/feedback"
	"sportanalyzer/internal/playback"
)

const (
	seekStep     = 5.0
	volumeStep   = 0.1
	seekIdle     = 600 * time.Millisecond
	defaultWidth = 80
	previewLines = 6
)

// Options configures a Model.
type Options struct {
	Title string
	// View is the analysis shown beside playback. A view without analysis
	// hides the feedback pane.
	View feedback.View
	Now  func() time.Time
}

// Model is the player screen.
type Model struct {
	ctrl  *playback.Controller
	title string
	view  feedback.View
	now   func() time.Time

	width     int
	dragging  bool
	drag      float64
	lastDrag  time.Time
	status    string
	closed    bool
	closedErr error
}

// New builds a player model around ctrl.
func New(ctrl *playback.Controller, opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return Model{
		ctrl:  ctrl,
		title: opts.Title,
		view:  opts.View,
		now:   now,
		width: defaultWidth,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case ProgressMsg:
		m.ctrl.OnEngineProgress(msg.Fraction)
	case DurationMsg:
		m.ctrl.OnEngineDuration(msg.Seconds)
	case PlayingMsg:
		m.ctrl.OnEnginePlaying(msg.Playing)
	case ReadyMsg:
		m.ctrl.OnEngineReady()
	case EngineErrorMsg:
		m.ctrl.OnEngineError(msg.Err)
	case EngineClosedMsg:
		m.closed = true
		m.closedErr = msg.Err
		return m, tea.Quit
	case tickMsg:
		if m.dragging && m.now().Sub(m.lastDrag) >= seekIdle {
			m.commitDrag()
		}
		return m, tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	state := m.ctrl.State()
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ", "p":
		m.report(m.ctrl.TogglePlay())
	case "m":
		m.report(m.ctrl.SetMuted(!state.Muted))
	case "+", "=":
		m.report(m.ctrl.SetVolume(playback.VolumeStep(state.Volume, volumeStep)))
	case "-", "_":
		m.report(m.ctrl.SetVolume(playback.VolumeStep(state.Volume, -volumeStep)))
	case "left", "h":
		m.dragBy(state, -seekStep)
	case "right", "l":
		m.dragBy(state, seekStep)
	case "home":
		m.dragTo(0)
	case "end":
		m.dragTo(1)
	case "enter":
		if m.dragging {
			m.commitDrag()
		}
	case "f":
		m.report(m.ctrl.RequestFullscreen())
	}
	return m, nil
}

func (m *Model) dragBy(state playback.State, seconds float64) {
	if state.Duration <= 0 {
		return
	}
	base := state.Played
	if m.dragging {
		base = m.drag
	}
	m.dragTo(base + seconds/state.Duration)
}

func (m *Model) dragTo(fraction float64) {
	if !m.dragging {
		m.ctrl.BeginSeek()
		m.dragging = true
	}
	m.drag = math.Min(math.Max(fraction, 0), 1)
	m.lastDrag = m.now()
	m.ctrl.UpdateSeekPreview(m.drag)
}

func (m *Model) commitDrag() {
	m.dragging = false
	m.report(m.ctrl.CommitSeek(m.drag))
}

func (m *Model) report(err error) {
	if err != nil {
		m.status = err.Error()
	}
}

// Closed reports whether the engine went away, with its terminal error.
func (m Model) Closed() (bool, error) {
	return m.closed, m.closedErr
}

func (m Model) View() string {
	state := m.ctrl.State()
	width := max(m.width, 40)

	sections := []string{m.renderHeader(state)}
	sections = append(sections, renderBar(state.Played, width-2), m.renderStatus(state))
	if state.LastError != nil {
		sections = append(sections, Hot.Render("Playback error: "+state.LastError.Error()))
	}
	if m.status != "" {
		sections = append(sections, Hot.Render(m.status))
	}
	if m.view.HasAnalysis() {
		sections = append(sections, m.renderFeedback(state, width))
	}
	sections = append(sections, Muted.Render("space play/pause  ←/→ seek  enter commit  m mute  +/- volume  f fullscreen  q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m Model) renderHeader(state playback.State) string {
	title := m.title
	if title == "" {
		title = "Sport Analyzer"
	}
	parts := []string{Title.Render(title)}
	if !state.Ready {
		parts = append(parts, Muted.Render("loading..."))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderStatus(state playback.State) string {
	play := "Paused"
	if state.Playing {
		play = Good.Render("Playing")
	}
	volume := fmt.Sprintf("vol %d%%", int(math.Round(state.Volume*100)))
	if state.Muted {
		volume += " (muted)"
	}
	label := playback.TimeLabel(state)
	if state.Seeking {
		label += Muted.Render("  seeking")
	}
	return strings.Join([]string{play, label, Muted.Render(volume)}, "  ")
}

func (m Model) renderFeedback(state playback.State, width int) string {
	var body string
	if i, ok := m.view.FrameAt(state.Position()); ok {
		frame, _ := m.view.Frame(i)
		heading := fmt.Sprintf("%s of %d  %s", feedback.FrameLabel(i), m.view.Len(), frame.TimestampLabel())
		body = Title.Render(heading) + "\n" + feedback.Preview(frame.Text, previewLines)
	} else if m.view.Len() == 0 {
		body = Muted.Render("No frame analysis entries.")
	} else {
		body = Muted.Render("Feedback starts at " + m.firstTimestamp())
	}
	return Pane.Width(width - 2).Render(body)
}

// firstTimestamp labels the earliest entry. Entries keep their delivered
// order, which need not be chronological.
func (m Model) firstTimestamp() string {
	frames := m.view.Frames()
	earliest := frames[0]
	for _, frame := range frames[1:] {
		if frame.Timestamp < earliest.Timestamp {
			earliest = frame
		}
	}
	return earliest.TimestampLabel()
}

func renderBar(fraction float64, width int) string {
	width = max(width, 10)
	filled := int(math.Round(fraction * float64(width)))
	filled = min(max(filled, 0), width)
	return BarFill.Render(strings.Repeat("━", filled)) + BarEmpty.Render(strings.Repeat("─", width-filled))
}
