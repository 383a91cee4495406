// Package toast is the notification surface of the lead form: a single slot
// that shows a loading indicator, a success message or an error message.
package toast

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// LoadingMessage is shown while a submission is in flight
const LoadingMessage = "Submitting your inquiry..."

// Kind identifies what the notification slot currently shows
type Kind int

const (
	None Kind = iota
	Loading
	Success
	Error
)

func (k Kind) String() string {
	switch k {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "none"
	}
}

// Notifier shows user-facing feedback. Every Show call replaces whatever is
// currently displayed; Dismiss clears the slot.
type Notifier interface {
	ShowLoading()
	ShowSuccess(message string)
	ShowError(message string)
	Dismiss()
}

// Terminal renders notifications as lines on a writer
type Terminal struct {
	mu      sync.Mutex
	w       io.Writer
	current Kind
	message string
}

// NewTerminal creates a terminal notifier writing to w
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// ShowLoading prints the loading line
func (t *Terminal) ShowLoading() {
	t.show(Loading, LoadingMessage, "… ")
}

// ShowSuccess prints message as a success
func (t *Terminal) ShowSuccess(message string) {
	t.show(Success, message, "✔ ")
}

// ShowError prints message as an error
func (t *Terminal) ShowError(message string) {
	t.show(Error, message, "✖ ")
}

// Dismiss clears the current notification without printing
func (t *Terminal) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = None
	t.message = ""
}

// Current returns what is displayed right now
func (t *Terminal) Current() (Kind, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, t.message
}

func (t *Terminal) show(kind Kind, message, prefix string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = kind
	t.message = message
	fmt.Fprintln(t.w, prefix+message)
}

type logged struct {
	next   Notifier
	logger *zap.Logger
}

// WithLogging decorates a notifier so every notification is also logged
func WithLogging(next Notifier, logger *zap.Logger) Notifier {
	return &logged{next: next, logger: logger.Named("toast")}
}

func (l *logged) ShowLoading() {
	l.logger.Debug("show loading")
	l.next.ShowLoading()
}

func (l *logged) ShowSuccess(message string) {
	l.logger.Info("show success", zap.String("message", message))
	l.next.ShowSuccess(message)
}

func (l *logged) ShowError(message string) {
	l.logger.Warn("show error", zap.String("message", message))
	l.next.ShowError(message)
}

func (l *logged) Dismiss() {
	l.logger.Debug("dismiss")
	l.next.Dismiss()
}
