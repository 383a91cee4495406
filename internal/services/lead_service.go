package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/superabroad/lead-intake/internal/config"
	"github.com/superabroad/lead-intake/internal/models"
	"github.com/superabroad/lead-intake/internal/notify"
	"github.com/superabroad/lead-intake/internal/observability"
	"github.com/superabroad/lead-intake/internal/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	// DefaultListLimit is the page size of the lead listing when none is given
	DefaultListLimit int64 = 100
	// MaxListLimit caps the page size of the lead listing
	MaxListLimit int64 = 1000

	notificationTimeout = 10 * time.Second
)

// LeadService creates and lists leads
type LeadService struct {
	logger    *zap.Logger
	store     LeadStore
	guard     *DuplicateGuard
	mailer    notify.EmailSender
	catalog   *config.Catalog
	notifyTo  string
	sanitizer *bluemonday.Policy
	now       func() time.Time

	notifications sync.WaitGroup
}

// NewLeadService creates a lead service. guard may be nil to disable the
// duplicate check and mailer may be nil to skip notifications.
func NewLeadService(logger *zap.Logger, store LeadStore, guard *DuplicateGuard, mailer notify.EmailSender, catalog *config.Catalog, notifyTo string) *LeadService {
	return &LeadService{
		logger:    logger,
		store:     store,
		guard:     guard,
		mailer:    mailer,
		catalog:   catalog,
		notifyTo:  notifyTo,
		sanitizer: bluemonday.StrictPolicy(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateLead validates and stores a lead, then notifies staff in the background.
// Errors: models.ErrTermsNotAccepted, ErrUnknownCourse, ErrUnknownDialCode,
// ErrDuplicateLead, or a wrapped storage error.
func (s *LeadService) CreateLead(ctx context.Context, input models.LeadCreate) (resp *models.CreateLeadResponse, err error) {
	ctx, step := utils.TraceBusinessLogic(ctx, "create_lead")
	step.Set(attribute.String("lead.course", input.Course))
	defer func() { step.End(err) }()

	lead, err := s.buildLead(input)
	if err != nil {
		observability.LeadsCreated.WithLabelValues("rejected", input.Course).Inc()
		return nil, err
	}

	if !s.guard.Claim(ctx, lead.Email) {
		observability.LeadsCreated.WithLabelValues("duplicate", lead.Course).Inc()
		return nil, models.ErrDuplicateLead
	}

	id, err := s.store.Insert(ctx, lead)
	if err != nil {
		s.guard.Release(ctx, lead.Email)
		observability.LeadsCreated.WithLabelValues("error", lead.Course).Inc()
		return nil, err
	}

	observability.LeadsCreated.WithLabelValues("created", lead.Course).Inc()
	s.logger.Info("new lead created",
		zap.String("lead_id", id.Hex()),
		zap.String("name", utils.MaskName(lead.FullName)),
		zap.String("email", utils.MaskEmail(lead.Email)),
		zap.String("phone", utils.MaskPhone(lead.Phone)),
		zap.String("course", lead.Course))

	s.notify(*lead)

	return &models.CreateLeadResponse{
		Success: true,
		Message: "Thank you! We'll contact you within 24 hours.",
		LeadID:  id.Hex(),
	}, nil
}

func (s *LeadService) buildLead(input models.LeadCreate) (*models.Lead, error) {
	if !input.AgreeTerms {
		return nil, models.ErrTermsNotAccepted
	}

	course := strings.TrimSpace(input.Course)
	if !s.catalog.HasCourse(course) {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownCourse, course)
	}

	countryCode := strings.TrimSpace(input.CountryCode)
	if !s.catalog.HasDialingCode(countryCode) {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownDialCode, countryCode)
	}

	// The raw phone is always kept. E.164 is only filled when it parses.
	phone := strings.TrimSpace(input.Phone)
	var e164 string
	if parsed, err := utils.ParseLeadPhone(countryCode, phone); err != nil {
		s.logger.Debug("phone not normalized, storing as typed",
			zap.String("country_code", countryCode),
			zap.String("phone", utils.MaskPhone(phone)),
			zap.Error(err))
	} else {
		e164 = parsed.E164
	}

	return &models.Lead{
		Course:      course,
		FullName:    s.sanitizeName(input.FullName),
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		CountryCode: countryCode,
		Phone:       phone,
		PhoneE164:   e164,
		UseWhatsApp: input.UseWhatsApp,
		AgreeTerms:  true,
		Timestamp:   s.now(),
		Source:      models.LeadSourceLandingPage,
	}, nil
}

// sanitizeName strips markup and keeps the plain text the lead typed
func (s *LeadService) sanitizeName(name string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(strings.TrimSpace(name))))
}

func (s *LeadService) notify(lead models.Lead) {
	if s.mailer == nil || s.notifyTo == "" {
		return
	}

	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()

		ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
		defer cancel()

		msg, err := notify.BuildLeadNotification(lead, s.catalog.CourseName(lead.Course), s.notifyTo)
		if err == nil {
			err = s.mailer.Send(ctx, msg)
		}
		if err != nil {
			observability.LeadNotifications.WithLabelValues("error").Inc()
			s.logger.Warn("email notification failed for lead",
				zap.String("lead_id", lead.ID.Hex()),
				zap.Error(err))
			return
		}
		observability.LeadNotifications.WithLabelValues("sent").Inc()
	}()
}

// ListLeads returns a page of leads, newest first, with the total lead count
func (s *LeadService) ListLeads(ctx context.Context, skip, limit int64) (resp *models.ListLeadsResponse, err error) {
	ctx, step := utils.TraceBusinessLogic(ctx, "list_leads")
	defer func() { step.End(err) }()

	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	leads, err := s.store.List(ctx, skip, limit)
	if err != nil {
		return nil, err
	}
	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &models.ListLeadsResponse{
		Success: true,
		Count:   count,
		Leads:   leads,
	}, nil
}

// Close waits for pending notification emails
func (s *LeadService) Close() {
	s.notifications.Wait()
}
