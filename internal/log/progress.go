package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ProgressSpinner shows a spinner with a counter for long-running batch
// operations. On a non-terminal writer it stays silent.
type ProgressSpinner struct {
	mu      sync.Mutex
	message string
	frames  []string
	current int
	done    int
	total   int
	writer  io.Writer
	enabled bool
	stop    chan struct{}
	stopped chan struct{}
}

// NewProgressSpinner creates a spinner writing to stderr.
func NewProgressSpinner(message string, total int) *ProgressSpinner {
	return newProgressSpinner(os.Stderr, message, total)
}

func newProgressSpinner(w io.Writer, message string, total int) *ProgressSpinner {
	return &ProgressSpinner{
		message: message,
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		total:   total,
		writer:  w,
		enabled: IsTerminal(w),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the spinner animation
func (p *ProgressSpinner) Start() {
	if !p.enabled {
		close(p.stopped)
		return
	}
	go p.animate()
}

// Stop stops the spinner and clears its line.
func (p *ProgressSpinner) Stop() {
	select {
	case <-p.stop:
		return
	default:
		close(p.stop)
	}
	<-p.stopped

	if p.enabled {
		fmt.Fprint(p.writer, "\r\033[K")
	}
}

// Increment records one finished item.
func (p *ProgressSpinner) Increment() {
	p.mu.Lock()
	p.done++
	p.mu.Unlock()
}

// Done returns the number of finished items.
func (p *ProgressSpinner) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

func (p *ProgressSpinner) animate() {
	defer close(p.stopped)

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.mu.Lock()
			p.draw()
			p.mu.Unlock()
		case <-p.stop:
			return
		}
	}
}

// draw renders the spinner; callers hold p.mu.
func (p *ProgressSpinner) draw() {
	frame := p.frames[p.current%len(p.frames)]
	p.current++
	fmt.Fprintf(p.writer, "\r\033[36m%s\033[0m %s (%d/%d)", frame, p.message, p.done, p.total)
}
