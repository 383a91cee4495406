// Package submission coordinates one submit action of the lead form: local
// validation, the network call, user feedback and the form reset.
package submission

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/superabroad/lead-intake/internal/form"
	"github.com/superabroad/lead-intake/internal/logging"
	"github.com/superabroad/lead-intake/internal/models"
	"github.com/superabroad/lead-intake/internal/observability"
	"github.com/superabroad/lead-intake/internal/toast"
	"github.com/superabroad/lead-intake/internal/utils"
	"go.uber.org/zap"
)

// Messages shown to the user
const (
	MsgFallback = "Something went wrong. Please try again."
	MsgBusy     = "A submission is already in progress"
	MsgThanks   = "Thank you! We'll contact you within 24 hours."
)

// LeadSender delivers a lead to the lead intake endpoint. On acceptance it
// returns the server message. Failures are *ServerRejection or *TransportError;
// any other error is treated as a transport failure.
type LeadSender interface {
	SendLead(ctx context.Context, lead models.LeadForm) (string, error)
}

// Controller is the submission controller for one form instance
type Controller struct {
	store    *form.Store
	sender   LeadSender
	notifier toast.Notifier
	logger   *zap.Logger

	inFlight atomic.Bool
}

// NewController wires a controller to the form it submits
func NewController(store *form.Store, sender LeadSender, notifier toast.Notifier) *Controller {
	return &Controller{
		store:    store,
		sender:   sender,
		notifier: notifier,
		logger:   logging.Logger.Named("submission"),
	}
}

// Submit validates the current form, sends it and reports the outcome.
//
// Only one submission runs at a time; a Submit issued while another is in
// flight returns a Busy failure without touching the network or the
// notification surface. On success the form is reset; on any failure it is
// left as it was so the user can correct it and submit again. Nothing is
// retried automatically.
func (c *Controller) Submit(ctx context.Context) Result {
	if !c.inFlight.CompareAndSwap(false, true) {
		observability.LeadSubmissions.WithLabelValues(Busy.String()).Inc()
		return Failure(ErrBusy)
	}
	defer c.inFlight.Store(false)

	lead := c.store.Snapshot()

	if err := c.validate(lead); err != nil {
		result := Failure(err)
		c.notifier.ShowError(result.Message)
		c.record(result, lead, 0)
		return result
	}

	start := time.Now()
	result := c.send(ctx, lead)

	if result.OK {
		c.notifier.ShowSuccess(result.Message)
		c.store.Reset()
	} else {
		c.notifier.ShowError(result.Message)
	}

	c.record(result, lead, time.Since(start))
	return result
}

// Submitting reports whether a submission is in flight
func (c *Controller) Submitting() bool {
	return c.inFlight.Load()
}

func (c *Controller) validate(lead models.LeadForm) error {
	check := utils.ValidateLeadForm(lead, c.store.Catalog())
	if first, ok := check.First(); ok {
		return &LocalValidationError{Field: first.Field, Message: first.Message}
	}
	return nil
}

// send runs the network call between the loading signal and its dismissal.
// The dismissal is deferred so it also runs when the sender panics.
func (c *Controller) send(ctx context.Context, lead models.LeadForm) (result Result) {
	c.store.SetSubmitting(true)
	c.notifier.ShowLoading()
	defer func() {
		if r := recover(); r != nil {
			result = Failure(&TransportError{Err: fmt.Errorf("lead sender panicked: %v", r)})
		}
		c.notifier.Dismiss()
		c.store.SetSubmitting(false)
	}()

	message, err := c.sender.SendLead(ctx, lead)
	if err != nil {
		return Failure(err)
	}
	if message == "" {
		message = MsgThanks
	}
	return Success(message)
}

func (c *Controller) record(result Result, lead models.LeadForm, elapsed time.Duration) {
	kind := result.Kind()
	outcome := "success"
	if !result.OK {
		outcome = kind.String()
	}
	observability.LeadSubmissions.WithLabelValues(outcome).Inc()
	if elapsed > 0 {
		observability.SubmissionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	}

	fields := []zap.Field{
		zap.String("outcome", outcome),
		zap.String("course", lead.Course),
		zap.String("email", utils.MaskEmail(lead.Email)),
		zap.Duration("elapsed", elapsed),
	}
	if result.OK {
		c.logger.Info("lead submitted", fields...)
		return
	}
	c.logger.Warn("lead submission failed", append(fields, zap.Error(result.Err))...)
}
