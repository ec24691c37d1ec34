package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nconklindev/lms2omr/internal/converter"
	"github.com/nconklindev/lms2omr/internal/logger"
	"github.com/nconklindev/lms2omr/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

type state int

const (
	statePrimaryPicker state = iota
	stateAbsentPicker
	stateReview
	stateProcessing
	stateComplete
	stateError
)

// Options configures the TUI.
type Options struct {
	StartDir  string
	OutputDir string
	Logger    logger.Logger
}

type Model struct {
	state        state
	opts         Options
	log          logger.Logger
	conv         *converter.Converter
	filepicker   filepicker.Model
	primaryFile  string
	absentFile   string
	primaryData  *types.FileData
	absentData   *types.FileData
	result       *types.ConversionResult
	err          error
	width        int
	height       int
	progress     progress.Model
	progressChan chan float64
	resultChan   chan conversionResultMsg
}

type conversionResultMsg struct {
	result *types.ConversionResult
	err    error
}

type fileLoadedMsg struct {
	path   string
	absent bool
	data   *types.FileData
	err    error
}

type conversionCompleteMsg struct {
	result *types.ConversionResult
	err    error
}

type progressMsg float64

type waitForProgressMsg struct{}

func newFilePicker(dir string) filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = converter.AllowedExtensions
	fp.CurrentDirectory = dir

	fp.Styles = pickerStyles()

	return fp
}

func InitialModel(conv *converter.Converter, opts Options) Model {
	if opts.StartDir == "" {
		opts.StartDir = "."
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	return Model{
		state:      statePrimaryPicker,
		opts:       opts,
		log:        log,
		conv:       conv,
		filepicker: newFilePicker(opts.StartDir),
		progress:   progress.New(progress.WithGradient(progressFrom, progressTo)),
	}
}

func (m Model) Init() tea.Cmd {
	return m.filepicker.Init()
}

// pickerHeight leaves room for title, subtitle, help text and padding.
func (m Model) pickerHeight() int {
	height := m.height - 14
	if height < 5 {
		height = 5
	}
	return height
}

func (m Model) openPicker(next state) (Model, tea.Cmd) {
	dir := m.opts.StartDir
	if m.primaryFile != "" {
		dir = filepath.Dir(m.primaryFile)
	}
	m.filepicker = newFilePicker(dir)
	if m.height > 0 {
		m.filepicker.SetHeight(m.pickerHeight())
	}
	m.state = next
	return m, m.filepicker.Init()
}

// restart drops all selections and returns to the primary picker.
func (m Model) restart() (Model, tea.Cmd) {
	m.primaryFile, m.absentFile = "", ""
	m.primaryData, m.absentData = nil, nil
	m.result, m.err = nil, nil
	m.progress = progress.New(progress.WithGradient(progressFrom, progressTo))
	return m.openPicker(statePrimaryPicker)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filepicker.SetHeight(m.pickerHeight())
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case statePrimaryPicker:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			}

		case stateAbsentPicker:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "esc", "s":
				m.state = stateReview
				return m, nil
			}

		case stateReview:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "a":
				m.err = nil
				return m.openPicker(stateAbsentPicker)
			case "x":
				m.absentFile, m.absentData, m.err = "", nil, nil
			case "r":
				return m.restart()
			case "enter":
				m.err = nil
				m.state = stateProcessing
				return m.convertFile()
			}

		case stateProcessing:
			// A run is in flight; only allow quitting.
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil

		case stateError:
			switch msg.String() {
			case "r", "enter":
				return m.restart()
			case "ctrl+c", "q", "esc":
				return m, tea.Quit
			}

		case stateComplete:
			switch msg.String() {
			case "r":
				return m.restart()
			case "ctrl+c", "q", "enter", "esc":
				return m, tea.Quit
			}
		}

	case fileLoadedMsg:
		if msg.err != nil {
			m.log.Warn("[UI] could not load sheet", msg.path, msg.err)
			m.err = msg.err
			if msg.absent && m.primaryData != nil {
				// The scores report is still usable; report on the review screen.
				m.state = stateReview
			} else {
				m.state = stateError
			}
			return m, nil
		}
		m.err = nil
		if msg.absent {
			m.absentFile, m.absentData = msg.path, msg.data
		} else {
			m.primaryFile, m.primaryData = msg.path, msg.data
		}
		m.state = stateReview
		return m, nil

	case conversionCompleteMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.result = msg.result
		m.state = stateComplete
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateProcessing {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	// Handle filepicker updates
	if m.state == statePrimaryPicker || m.state == stateAbsentPicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			return m, loadFile(path, m.state == stateAbsentPicker)
		}

		return m, cmd
	}

	return m, nil
}

func loadFile(path string, absent bool) tea.Cmd {
	return func() tea.Msg {
		data, err := converter.ReadSheetFile(path)
		return fileLoadedMsg{path: path, absent: absent, data: data, err: err}
	}
}

func (m Model) convertFile() (Model, tea.Cmd) {
	m.progressChan = make(chan float64, 100)
	m.resultChan = make(chan conversionResultMsg, 1)

	req := converter.Request{
		PrimaryFile: m.primaryFile,
		AbsentFile:  m.absentFile,
		OutputDir:   m.opts.OutputDir,
		PrimaryData: m.primaryData,
		AbsentData:  m.absentData,
	}

	// Capture channels for the goroutine
	progressChan := m.progressChan
	resultChan := m.resultChan
	conv := m.conv

	cmd := tea.Batch(
		func() tea.Msg {
			go func() {
				result, err := conv.Convert(context.Background(), req, progressChan)

				// Send result
				resultChan <- conversionResultMsg{result: result, err: err}

				// Close channels
				close(progressChan)
				close(resultChan)
			}()

			return waitForProgressMsg{}
		},
		m.progress.Init(), // Start progress bar animation
	)

	return m, cmd
}

func waitForProgress(progressChan chan float64, resultChan chan conversionResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			// Progress channel closed, check result
			res, ok := <-resultChan
			if ok {
				return conversionCompleteMsg(res)
			}
			return nil
		}

		return progressMsg(p)
	}
}

func (m Model) View() string {
	switch m.state {
	case statePrimaryPicker:
		return m.viewFilePicker("Select the LMS scores report (CSV, XLS or XLSX)", "Press q to quit")
	case stateAbsentPicker:
		return m.viewFilePicker("Select the roster of students who did not attempt the exam", "s/esc: skip • q: quit")
	case stateReview:
		return m.viewReview()
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker(subtitle, help string) string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("📝 lms2omr - LMS to OMR Upload Converter"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(subtitle))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render(help))

	return s.String()
}

// recognizedFields renders one line per canonical field showing the
// header it was read from.
func recognizedFields(data *types.FileData) string {
	var s strings.Builder
	layout := converter.NewFieldLayout(data.Headers)
	for _, f := range converter.Fields() {
		if layout.Has(f) {
			s.WriteString(CheckedStyle.Render(fmt.Sprintf("  [✓] %-18s ← %s", f, data.Headers[layout[f]])))
		} else {
			s.WriteString(UnselectedStyle.Render(fmt.Sprintf("  [ ] %-18s (not found, reads as blank/0)", f)))
		}
		s.WriteString("\n")
	}
	return s.String()
}

func (m Model) viewReview() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("📝 Review Input"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Scores report: %s (%d rows)", filepath.Base(m.primaryFile), len(m.primaryData.Rows))))
	s.WriteString("\n")

	layout := converter.NewFieldLayout(m.primaryData.Headers)
	if layout.Has(converter.FieldStudentID) {
		s.WriteString(SuccessStyle.Render("✓ Student id column found"))
	} else {
		s.WriteString(ErrorStyle.Render("✗ No student id column: every row will be skipped"))
	}
	s.WriteString("\n\n")
	s.WriteString(recognizedFields(m.primaryData))
	s.WriteString("\n")

	if m.absentData != nil {
		s.WriteString(fmt.Sprintf("Not-attempted roster: %s (%d rows)\n", filepath.Base(m.absentFile), len(m.absentData.Rows)))
	} else {
		s.WriteString("Not-attempted roster: [none]\n")
	}
	if m.err != nil {
		s.WriteString(ErrorStyle.Render("✗ Roster not loaded: " + converter.UserMessage(m.err)))
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("enter: convert • a: add roster • x: remove roster • r: start over • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("📝 Processing..."))
	s.WriteString("\n\n")
	s.WriteString("Building the OMR upload sheet...")
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return BoxStyle.Render(s.String())
}

// truncatePath keeps the tail of long paths so the file name stays visible.
func truncatePath(path string, width int) string {
	maxPathLen := width - 20 // Leave room for padding and borders
	if maxPathLen < 30 {
		maxPathLen = 30
	}
	if len(path) > maxPathLen {
		return "..." + path[len(path)-maxPathLen+3:]
	}
	return path
}

// Summary renders a finished conversion. It is shared with headless mode.
func Summary(result *types.ConversionResult, width int) string {
	var s strings.Builder

	s.WriteString(fmt.Sprintf("Input:  %s\n", truncatePath(result.PrimaryFile, width)))
	if result.AbsentFile != "" {
		s.WriteString(fmt.Sprintf("Roster: %s\n", truncatePath(result.AbsentFile, width)))
	}
	s.WriteString(SuccessStyle.Render(fmt.Sprintf("Output: %s\n", truncatePath(result.OutputFile, width))))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Students written: %d (%d scored, %d not attempted)\n", result.RowsWritten, result.ScoredCount, result.UnscoredCount))
	if result.SkippedRows > 0 {
		s.WriteString(fmt.Sprintf("Rows skipped (no student id): %d\n", result.SkippedRows))
	}
	s.WriteString(fmt.Sprintf("Correct answers: mean %.2f, median %.2f\n", result.MeanCorrect, result.MedianCorrect))

	return s.String()
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✓ Conversion Complete!"))
	s.WriteString("\n\n")
	s.WriteString(Summary(m.result, m.width))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("r: convert another • q/enter: exit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(converter.UserMessage(m.err))
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("r/enter: choose files again • q: quit"))

	return BoxStyle.Render(s.String())
}
