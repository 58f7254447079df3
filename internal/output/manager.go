package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tanq16/slicer/internal/utils"
)

// Reporter receives per-slice progress from the transfer engine.
type Reporter interface {
	Register(name string) int
	SetMessage(id int, message string)
	Progress(id int, done, total int64)
	Complete(id int, message string)
	ReportError(id int, err error)
}

type discard struct{}

func (discard) Register(string) int { return 0 }
func (discard) SetMessage(int, string) {}
func (discard) Progress(int, int64, int64) {}
func (discard) Complete(int, string) {}
func (discard) ReportError(int, error) {}

// Discard drops every report.
var Discard Reporter = discard{}

type lineStatus string

const (
	statusPending lineStatus = "pending"
	statusActive  lineStatus = "active"
	statusSuccess lineStatus = "success"
	statusError   lineStatus = "error"
)

type lineOutput struct {
	Index       int
	Name        string
	Status      lineStatus
	Message     string
	Done        int64
	Total       int64
	StartTime   time.Time
	LastUpdated time.Time
	Error       error
}

type ErrorReport struct {
	Name  string
	Error error
	Time  time.Time
}

// Manager draws one line per registered slice and a summary when stopped.
// Redraws happen only when out is a terminal.
type Manager struct {
	out         io.Writer
	live        bool
	outputs     map[int]*lineOutput
	mutex       sync.RWMutex
	numLines    int
	errors      []ErrorReport
	doneCh      chan struct{}
	displayTick time.Duration
	count       int
	displayWg   sync.WaitGroup
}

func NewManager() *Manager {
	return newManager(os.Stdout, IsTerminal())
}

func newManager(out io.Writer, live bool) *Manager {
	return &Manager{
		out:         out,
		live:        live,
		outputs:     make(map[int]*lineOutput),
		doneCh:      make(chan struct{}),
		displayTick: 300 * time.Millisecond,
	}
}

func (m *Manager) Register(name string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.count++
	m.outputs[m.count] = &lineOutput{
		Index:       m.count,
		Name:        name,
		Status:      statusPending,
		StartTime:   time.Now(),
		LastUpdated: time.Now(),
	}
	return m.count
}

func (m *Manager) update(id int, fn func(*lineOutput)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		fn(info)
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) SetMessage(id int, message string) {
	m.update(id, func(info *lineOutput) {
		if info.Status == statusPending {
			info.Status = statusActive
			info.StartTime = time.Now()
		}
		info.Message = message
	})
}

func (m *Manager) Progress(id int, done, total int64) {
	m.update(id, func(info *lineOutput) {
		if info.Status == statusPending {
			info.Status = statusActive
			info.StartTime = time.Now()
		}
		info.Done, info.Total = done, total
	})
}

func (m *Manager) Complete(id int, message string) {
	m.update(id, func(info *lineOutput) {
		if message == "" {
			message = fmt.Sprintf("Completed %s", info.Name)
		}
		info.Message = message
		info.Status = statusSuccess
	})
}

func (m *Manager) ReportError(id int, err error) {
	m.update(id, func(info *lineOutput) {
		info.Status = statusError
		info.Error = err
		info.Message = fmt.Sprintf("Failed %s", info.Name)
		m.errors = append(m.errors, ErrorReport{Name: info.Name, Error: err, Time: time.Now()})
	})
}

func statusIndicator(status lineStatus) string {
	switch status {
	case statusSuccess:
		return successStyle.Render(StyleSymbols["pass"])
	case statusError:
		return errorStyle.Render(StyleSymbols["fail"])
	case statusPending:
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["bullet"])
	}
}

func styleMessage(status lineStatus, message string) string {
	switch status {
	case statusSuccess:
		return successStyle.Render(message)
	case statusError:
		return errorStyle.Render(message)
	default:
		return pendingStyle.Render(message)
	}
}

func (m *Manager) sorted() []*lineOutput {
	all := make([]*lineOutput, 0, len(m.outputs))
	for _, info := range m.outputs {
		all = append(all, info)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Index < all[j].Index
	})
	return all
}

func (m *Manager) renderLine(info *lineOutput) string {
	elapsed := time.Since(info.StartTime).Round(time.Second)
	if info.Status == statusSuccess || info.Status == statusError {
		elapsed = info.LastUpdated.Sub(info.StartTime).Round(time.Second)
	}
	line := fmt.Sprintf("  %s %s %s", statusIndicator(info.Status), debugStyle.Render(elapsed.String()), styleMessage(info.Status, info.Message))
	if info.Status == statusActive && info.Total > 0 {
		speed := utils.FormatSpeed(info.Done, time.Since(info.StartTime).Seconds())
		line += fmt.Sprintf("\n      %s %s %s %s", ProgressBar(info.Done, info.Total, 30),
			debugStyle.Render(utils.FormatBytes(uint64(info.Done))), StyleSymbols["bullet"], debugStyle.Render(speed))
	}
	if info.Status == statusPending {
		line = fmt.Sprintf("  %s %s", statusIndicator(info.Status), pendingStyle.Render("Waiting "+info.Name))
	}
	return line
}

func (m *Manager) updateDisplay() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	availableLines := terminalHeight() - 3
	if m.numLines > 0 {
		fmt.Fprintf(m.out, "\033[%dA\033[J", m.numLines)
	}
	var active, rest []string
	for _, info := range m.sorted() {
		if info.Status == statusActive {
			active = append(active, m.renderLine(info))
		} else {
			rest = append(rest, m.renderLine(info))
		}
	}
	lineCount := 0
	for _, block := range append(active, rest...) {
		n := strings.Count(block, "\n") + 1
		if lineCount+n > availableLines {
			break
		}
		fmt.Fprintln(m.out, block)
		lineCount += n
	}
	m.numLines = lineCount
}

func (m *Manager) StartDisplay() {
	if !m.live {
		return
	}
	m.displayWg.Add(1)
	go func() {
		defer m.displayWg.Done()
		ticker := time.NewTicker(m.displayTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.updateDisplay()
			case <-m.doneCh:
				m.updateDisplay()
				return
			}
		}
	}()
}

// StopDisplay stops redrawing and prints the summary.
func (m *Manager) StopDisplay() {
	close(m.doneCh)
	m.displayWg.Wait()
	m.ShowSummary()
}

func (m *Manager) displayErrors() {
	if len(m.errors) == 0 {
		return
	}
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, "  "+errorStyle.Bold(true).Render("Errors:"))
	for i, err := range m.errors {
		fmt.Fprintf(m.out, "    %s %s %s\n",
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			debugStyle.Render(fmt.Sprintf("[%s]", err.Time.Format("15:04:05"))),
			errorStyle.Render(err.Name))
		fmt.Fprintf(m.out, "      %s\n", errorStyle.Render(fmt.Sprintf("Error: %v", err.Error)))
	}
}

func (m *Manager) ShowSummary() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	fmt.Fprintln(m.out)
	var success, failures int
	for _, info := range m.outputs {
		switch info.Status {
		case statusSuccess:
			success++
		case statusError:
			failures++
		}
	}
	fmt.Fprintln(m.out, "  "+success2Style.Render(fmt.Sprintf("Completed %d of %d", success, len(m.outputs))))
	if failures > 0 {
		fmt.Fprintln(m.out, "  "+errorStyle.Render(fmt.Sprintf("Failed %d of %d", failures, len(m.outputs))))
	}
	m.displayErrors()
	fmt.Fprintln(m.out)
}
