package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matzehuels/sysmlexport/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner shows export progress on stderr until stopped or until its
// context ends. Branch failures reported while it runs are counted next to
// the message.
type Spinner struct {
	message string
	out     io.Writer
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
	started atomic.Bool

	mu    sync.Mutex
	width int // visible width of the last frame

	failures atomic.Int64
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that stops when ctx is cancelled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		out:     os.Stderr,
		parent:  ctx,
		ctx:     spinnerCtx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.started.Store(true)
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// Stop ends the animation and clears the line. It is safe to call more
// than once, and on a spinner that was never started.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		if s.started.Load() {
			<-s.stopped
		}
		s.clearLine()
	})
}

// Cancelled reports whether the spinner's parent context ended.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

// BranchFailed counts one failed branch in the status line.
func (s *Spinner) BranchFailed() {
	s.failures.Add(1)
}

// status is the plain text shown after the frame.
func (s *Spinner) status() string {
	n := s.failures.Load()
	switch n {
	case 0:
		return s.message
	case 1:
		return s.message + " (1 branch failed)"
	}
	return fmt.Sprintf("%s (%d branches failed)", s.message, n)
}

func (s *Spinner) draw(frame string) {
	text := s.status()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(text))
	s.width = len([]rune(text)) + 2
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

// spinnerHooks forwards export events to the registered hooks and counts
// branch failures on the spinner.
type spinnerHooks struct {
	observability.ExportHooks
	spinner *Spinner
}

func (h spinnerHooks) OnBranchFailed(ctx context.Context, nodeID string, err error) {
	h.ExportHooks.OnBranchFailed(ctx, nodeID, err)
	h.spinner.BranchFailed()
}

// trackExport routes branch failures to s until the returned func is
// called, which restores the previous hooks.
func trackExport(s *Spinner) (restore func()) {
	prev := observability.Export()
	observability.SetExportHooks(spinnerHooks{ExportHooks: prev, spinner: s})
	return func() { observability.SetExportHooks(prev) }
}
