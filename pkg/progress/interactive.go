package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	stageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Interactive renders an in-place spinner line on a terminal.
type Interactive struct {
	mu      sync.Mutex
	out     io.Writer
	msg     string
	stage   string
	frame   int
	running bool
	done    chan struct{}
}

// NewInteractive creates an interactive reporter writing to out.
func NewInteractive(out io.Writer) *Interactive {
	return &Interactive{out: out}
}

func (r *Interactive) Start(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msg = msg
	if r.running {
		return
	}
	r.running = true
	r.done = make(chan struct{})
	go r.spin(r.done)
}

func (r *Interactive) spin(done chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			r.mu.Lock()
			if r.running {
				r.render()
				r.frame++
			}
			r.mu.Unlock()
		}
	}
}

// render repaints the spinner line. Caller must hold r.mu.
func (r *Interactive) render() {
	line := spinnerStyle.Render(spinnerFrames[r.frame%len(spinnerFrames)]) + " " + r.msg
	if r.stage != "" {
		line += " " + stageStyle.Render("["+r.stage+"]")
	}
	fmt.Fprintf(r.out, "\r\033[K%s", line)
}

func (r *Interactive) Update(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msg = msg
	if r.running {
		r.render()
	}
}

func (r *Interactive) UpdateWithCount(msg string, current, total int) {
	r.Update(fmt.Sprintf("%s (%d/%d)", msg, current, total))
}

// stop halts the spinner and clears the line. Caller must hold r.mu.
func (r *Interactive) stop() {
	if !r.running {
		return
	}
	r.running = false
	close(r.done)
	fmt.Fprint(r.out, "\r\033[K")
}

func (r *Interactive) Succeed(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stop()
	fmt.Fprintln(r.out, successStyle.Render("✓")+" "+msg)
}

func (r *Interactive) Fail(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stop()
	fmt.Fprintln(r.out, failStyle.Render("✗")+" "+msg)
}

// Debug is a no-op in interactive mode; debug detail belongs to verbose.
func (r *Interactive) Debug(string) {}

func (r *Interactive) Info(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		fmt.Fprint(r.out, "\r\033[K")
	}
	fmt.Fprintln(r.out, msg)
	if r.running {
		r.render()
	}
}

func (r *Interactive) SetStage(stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stage = stage
	if r.running {
		r.render()
	}
}

func (r *Interactive) CurrentStage() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stage
}
