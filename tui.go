package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"voicetype/hotkey"
	"voicetype/rewrite"
)

// TUI message types
type RecordingStartMsg struct{}
type RecordingStopMsg struct{}
type RecordingTickMsg struct{ Duration float64 }
type LevelsMsg struct{ Levels []float64 }
type TranscriptionMsg struct {
	Text  string
	Keys  []string
	Modes []string
}
type RewriteMsg struct{ Result rewrite.Result }
type ModeLineMsg struct{ Text string }   // provider | language | insertion mode
type DeviceLineMsg struct{ Text string } // microphone device name
type ErrorMsg struct{ Text string }
type tickMsg time.Time

type tuiState int

const (
	tuiStateIdle tuiState = iota
	tuiStateRecording
)

const barHeight = 6

type tuiModel struct {
	state             tuiState
	frame             int
	recordingDuration float64
	levels            []float64
	peak              float64 // loudest bucket seen during the current recording
	count             int
	width, height     int
	modeLine          string
	deviceLine        string
	lastText          string
	lastKeys          []string
	lastModes         []string
	lastRewrite       string
	lastErr           string
}

var (
	tuiProgram   *tea.Program
	tuiMu        sync.Mutex
	tuiReady     = make(chan struct{})
	tuiReadyOnce sync.Once
)

// Bar colours from quiet to loud.
var (
	barColorsRec  = []string{"52", "88", "124", "160", "196", "202", "208", "214"}
	barColorsIdle = []string{"236", "237", "238", "239", "240", "241", "242", "243"}
	barStylesRec  []lipgloss.Style
	barStylesIdle []lipgloss.Style
)

var (
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	modeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	recStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	rewriteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	boldHelp     = helpStyle.Bold(true)
)

func init() {
	for _, c := range barColorsRec {
		barStylesRec = append(barStylesRec, lipgloss.NewStyle().Foreground(lipgloss.Color(c)))
	}
	for _, c := range barColorsIdle {
		barStylesIdle = append(barStylesIdle, lipgloss.NewStyle().Foreground(lipgloss.Color(c)))
	}
}

func NewTUIProgram() *tea.Program {
	return tea.NewProgram(tuiModel{}, tea.WithAltScreen())
}

// tuiSend delivers msg to the TUI if one is running.
func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func tuiTick() tea.Cmd {
	return tea.Tick(60*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	tuiReadyOnce.Do(func() { close(tuiReady) })
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case RecordingStartMsg:
		m.state = tuiStateRecording
		m.recordingDuration = 0
		m.peak = 0
		m.lastErr = ""

	case RecordingStopMsg:
		m.state = tuiStateIdle
		m.levels = nil

	case RecordingTickMsg:
		m.recordingDuration = msg.Duration

	case LevelsMsg:
		if m.state == tuiStateRecording {
			m.levels = smooth(m.levels, msg.Levels)
			for _, l := range msg.Levels {
				if l > m.peak {
					m.peak = l
				}
			}
		}

	case TranscriptionMsg:
		m.count++
		m.lastText = msg.Text
		m.lastKeys = msg.Keys
		m.lastModes = msg.Modes

	case RewriteMsg:
		r := msg.Result
		switch {
		case r.Err != nil:
			m.lastRewrite = fmt.Sprintf("rewrite %s: %v", r.Outcome, r.Err)
		case r.Text != "":
			m.lastRewrite = r.Text
		default:
			m.lastRewrite = "rewrite " + string(r.Outcome)
		}

	case ModeLineMsg:
		m.modeLine = msg.Text

	case DeviceLineMsg:
		m.deviceLine = msg.Text

	case ErrorMsg:
		m.lastErr = msg.Text
	}
	return m, nil
}

// smooth eases displayed levels towards the newest reading.
func smooth(prev, next []float64) []float64 {
	out := make([]float64, len(next))
	for i, v := range next {
		if i < len(prev) {
			out[i] = prev[i]*0.5 + v*0.5
		} else {
			out[i] = v
		}
	}
	return out
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	recording := m.state == tuiStateRecording

	const leftWidth = 34
	var left []string

	left = append(left, renderBars(m.levels, m.frame, recording)...)
	left = append(left, "")
	if recording {
		left = append(left, recStyle.Render(fmt.Sprintf("● REC %.1fs", m.recordingDuration)))
		if m.recordingDuration > 1.0 && m.peak < 0.02 {
			left = append(left, warnStyle.Render("  ⚠ no voice detected"))
		}
	} else {
		left = append(left, dimStyle.Render("○ STANDBY"))
	}
	if m.modeLine != "" {
		left = append(left, modeStyle.Render(m.modeLine))
	}
	if m.deviceLine != "" {
		left = append(left, dimStyle.Render(m.deviceLine))
	}
	left = append(left, "")
	left = append(left, boldHelp.Render(hotkey.PushToTalk.Name)+helpStyle.Render(" to dictate"))
	left = append(left, boldHelp.Render(hotkey.Rewrite.Name)+helpStyle.Render(" to rewrite"))
	left = append(left, helpStyle.Render("voicetype "+version))

	rightWidth := m.width - leftWidth - 1
	if rightWidth < 20 {
		rightWidth = 20
	}
	wrapWidth := rightWidth - 2

	var right strings.Builder
	if m.lastText == "" && len(m.lastKeys) == 0 {
		right.WriteString(dimStyle.Render("Nothing dictated yet"))
	} else {
		right.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("246")).
			Render(fmt.Sprintf("Last transcript (#%d)", m.count)) + "\n\n")
		for _, line := range wrapText(m.lastText, wrapWidth) {
			right.WriteString(textStyle.Render(line) + "\n")
		}
		if len(m.lastKeys) > 0 {
			right.WriteString(keyStyle.Render("keys: "+strings.Join(m.lastKeys, " ")) + "\n")
		}
		if len(m.lastModes) > 0 {
			right.WriteString(modeStyle.Render("modes: "+strings.Join(m.lastModes, " ")) + "\n")
		}
	}
	if m.lastRewrite != "" {
		right.WriteString("\n")
		for _, line := range wrapText(m.lastRewrite, wrapWidth) {
			right.WriteString(rewriteStyle.Render(line) + "\n")
		}
	}
	if m.lastErr != "" {
		right.WriteString("\n")
		for _, line := range wrapText(m.lastErr, wrapWidth) {
			right.WriteString(warnStyle.Render(line) + "\n")
		}
	}

	leftPanel := lipgloss.NewStyle().Width(leftWidth).Height(m.height).
		Render(strings.Join(left, "\n"))
	rightPanel := lipgloss.NewStyle().Width(rightWidth).Height(m.height).PaddingLeft(1).
		Render(right.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
}

var barGlyphs = []rune(" ▁▂▃▄▅▆▇█")

// renderBars draws one column per frequency bucket, barHeight rows tall.
// While idle a slow ripple keeps the meter visibly alive.
func renderBars(levels []float64, frame int, recording bool) []string {
	buckets := len(levels)
	if buckets == 0 {
		buckets = 8
		levels = make([]float64, buckets)
		if !recording {
			levels[(frame/8)%buckets] = 0.08
		}
	}
	styles := barStylesIdle
	if recording {
		styles = barStylesRec
	}

	full := len(barGlyphs) - 1
	rows := make([]string, barHeight)
	for r := 0; r < barHeight; r++ {
		var b strings.Builder
		b.WriteString(" ")
		floor := (barHeight - 1 - r) * full
		for i, l := range levels {
			if l < 0 {
				l = 0
			}
			if l > 1 {
				l = 1
			}
			units := int(l * float64(barHeight*full))
			fill := units - floor
			if fill < 0 {
				fill = 0
			}
			if fill > full {
				fill = full
			}
			style := styles[min(i*len(styles)/buckets, len(styles)-1)]
			glyph := string(barGlyphs[fill])
			b.WriteString(style.Render(glyph + glyph + glyph))
			b.WriteString(" ")
		}
		rows[r] = b.String()
	}
	return rows
}

func wrapText(text string, width int) []string {
	if text == "" {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	runes := []rune(text)
	for len(runes) > width {
		// Find last space within width
		splitAt := width
		for i := width; i > 0; i-- {
			if runes[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, string(runes[:splitAt]))
		runes = []rune(strings.TrimLeft(string(runes[splitAt:]), " "))
	}
	if len(runes) > 0 {
		lines = append(lines, string(runes))
	}
	return lines
}
