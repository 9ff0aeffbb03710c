package download

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// WorkFunc performs the transfer registered under h. It reports progress
// through progress and returns the stored file path.
type WorkFunc func(ctx context.Context, h Handle, progress func(float64)) (string, error)

// Task is an in-flight or finished download.
type Task struct {
	handle Handle
	reg    *Registry
	done   chan struct{}
	cancel context.CancelFunc
	path   string
	err    error
}

// Start registers a new download in reg and runs work on its own goroutine.
// onComplete, if non-nil, fires once with the terminal result unless the
// task is cancelled first.
func Start(ctx context.Context, reg *Registry, onProgress func(float64), onComplete func(string, error), work WorkFunc) *Task {
	ctx, cancel := context.WithCancel(ctx)

	t := &Task{
		handle: NewHandle(),
		reg:    reg,
		done:   make(chan struct{}),
		cancel: cancel,
	}

	reg.Register(t.handle, Callbacks{
		Complete: onComplete,
		Progress: onProgress,
	})

	go func() {
		defer func() {
			cancel()
			close(t.done)
		}()

		path, err := work(ctx, t.handle, func(f float64) { reg.progress(t.handle, f) })

		cb, ok := reg.Remove(t.handle)
		if !ok {
			// Cancelled while finishing; nobody owns the file anymore.
			if err == nil {
				_ = os.Remove(path)
			}
			t.err = fmt.Errorf("%w: %w", ErrDownloadCancelled, context.Canceled)
			return
		}

		t.path, t.err = path, err
		if cb.Complete != nil {
			cb.Complete(path, err)
		}
	}()

	return t
}

// Handle returns the registry key of this download.
func (t *Task) Handle() Handle { return t.handle }

// Done returns a channel that is closed when the download reaches a
// terminal state.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the download finishes and returns the stored path.
func (t *Task) Wait() (string, error) {
	<-t.done
	return t.path, t.err
}

// Err blocks until the download finishes and returns its error.
func (t *Task) Err() error {
	_, err := t.Wait()
	return err
}

// Cancel unregisters the download, aborts the transfer and waits for the
// worker to exit. No callback fires after Cancel returns. It must not be
// called from within the task's own callbacks.
func (t *Task) Cancel() {
	t.reg.Remove(t.handle)
	t.cancel()
	<-t.done
}

// Cancelled reports whether err marks a cancelled download.
func Cancelled(err error) bool {
	return errors.Is(err, ErrDownloadCancelled)
}
