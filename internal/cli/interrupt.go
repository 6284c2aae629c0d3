package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels a run on SIGINT/SIGTERM and tells the operator what was kept.
type InterruptHandler struct {
	writer      io.Writer
	notify      chan os.Signal
	message     string
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a new interrupt handler.
// The message is printed once when a signal arrives; empty means a generic notice.
func NewInterruptHandler(writer io.Writer, message string) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	if message == "" {
		message = "Interrupted, shutting down."
	}
	return &InterruptHandler{
		writer:  writer,
		message: message,
		notify:  make(chan os.Signal, 1),
	}
}

// HandleInterrupts returns a context that is canceled on interrupt.
// The returned stop function releases the signal handler.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	signal.Notify(h.notify, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-h.notify:
			h.mu.Lock()
			if !h.interrupted {
				h.interrupted = true
				if _, err := fmt.Fprint(h.writer, "\n"+FormatWarning(h.message)+"\n"); err != nil {
					fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
				}
			}
			h.mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(h.notify)
		cancel()
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
