package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status line until stopped or its context ends.
type Spinner struct {
	w       io.Writer
	message string
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
	mu      sync.Mutex
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		message: message,
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				frame := spinnerFrames[i%len(spinnerFrames)]
				s.mu.Lock()
				fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// SetMessage replaces the status text.
func (s *Spinner) SetMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = msg
}

// Stop stops the animation and clears the line. It may be called more
// than once, but only after Start.
func (s *Spinner) Stop() {
	s.once.Do(s.cancel)
	<-s.stopped
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// StopWithSuccess stops the spinner and shows a success message.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the parent context ended.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
