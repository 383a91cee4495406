package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "lead_intake_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// ActiveConnections tracks active connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lead_intake_active_connections",
			Help: "Number of active connections",
		},
	)

	// DatabaseOperations tracks database operations
	DatabaseOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_intake_database_operations_total",
			Help: "Number of database operations",
		},
		[]string{"operation", "status"},
	)

	// LeadsCreated tracks lead creation attempts on the API
	LeadsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_intake_leads_created_total",
			Help: "Number of lead creation attempts by status",
		},
		[]string{"status", "course"},
	)

	// LeadNotifications tracks notification emails sent for new leads
	LeadNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_intake_lead_notifications_total",
			Help: "Number of lead notification emails by status",
		},
		[]string{"status"},
	)

	// LeadSubmissions tracks submit actions of the lead form client
	LeadSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_form_submissions_total",
			Help: "Number of lead form submissions by outcome",
		},
		[]string{"outcome"},
	)

	// SubmissionDuration tracks the network part of a lead form submission
	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lead_form_submission_duration_seconds",
			Help:    "Duration of lead form submissions in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
)
