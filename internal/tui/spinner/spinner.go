//go:build !notui

package spinner

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/tui"
)

// elapsedAfter is how long a task runs before the spinner starts
// showing elapsed seconds. Quick scans never see it.
const elapsedAfter = 2 * time.Second

// spinnerModel drives the animated busy indicator.
type spinnerModel struct {
	spinner    spinner.Model
	watch      stopwatch.Model
	message    string
	successMsg string
	done       bool
	err        error
	mu         *sync.Mutex
}

type doneMsg struct {
	err error
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.watch.Start())
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.mu.Lock()
		m.done = true
		m.err = msg.err
		m.mu.Unlock()
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case stopwatch.TickMsg, stopwatch.StartStopMsg:
		var cmd tea.Cmd
		m.watch, cmd = m.watch.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m spinnerModel) View() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := tui.Prefix()

	if m.done {
		if m.err != nil {
			return fmt.Sprintf("%s %s %s\n", prefix, tui.StyleError.Render(tui.IconCross), m.err.Error())
		}
		return fmt.Sprintf("%s %s %s\n", prefix, tui.StyleSuccess.Render(tui.IconCheck), tui.StyleSuccess.Render(m.successMsg))
	}

	line := fmt.Sprintf("%s %s %s", prefix, m.spinner.View(), tui.StyleMuted.Render(m.message+"..."))
	if elapsed := m.watch.Elapsed(); elapsed >= elapsedAfter {
		line += " " + tui.Faint(fmt.Sprintf("(%ds)", int(elapsed.Seconds())))
	}
	return line + "\n"
}

// RunWithSpinner runs fn behind an animated spinner showing message,
// then replaces it with a check line carrying successMsg or a cross
// line carrying the error. Slow tasks get an elapsed-seconds suffix.
// In plain mode the animation is skipped entirely.
func RunWithSpinner(message string, successMsg string, fn func() error) error {
	if tui.IsPlainMode() {
		return RunPlain(message, successMsg, fn)
	}

	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(tui.ColorPrimary)

	model := spinnerModel{
		spinner:    s,
		watch:      stopwatch.NewWithInterval(time.Second),
		message:    message,
		successMsg: successMsg,
		mu:         &sync.Mutex{},
	}

	var fnErr error
	var fnDone sync.WaitGroup
	fnDone.Add(1)

	tui.WindowTitle("aiguard - " + message)

	p := tea.NewProgram(model)

	go func() {
		fnErr = fn()
		fnDone.Done()
		p.Send(doneMsg{err: fnErr})
	}()

	if _, err := p.Run(); err != nil {
		// Bubbletea itself failed, wait for fn and report without it
		fnDone.Wait()
		if fnErr != nil {
			fmt.Fprintf(os.Stderr, "%s %s %s\n", tui.Prefix(), tui.StyleError.Render(tui.IconCross), fnErr.Error())
			return fnErr
		}
		fmt.Printf("%s %s %s\n", tui.Prefix(), tui.StyleSuccess.Render(tui.IconCheck), successMsg)
		return nil
	}

	return fnErr
}
