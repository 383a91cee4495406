package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsExist(t *testing.T) {
	assert.NotNil(t, RequestDuration)
	assert.NotNil(t, ActiveConnections)
	assert.NotNil(t, DatabaseOperations)
	assert.NotNil(t, LeadsCreated)
	assert.NotNil(t, LeadNotifications)
	assert.NotNil(t, LeadSubmissions)
	assert.NotNil(t, SubmissionDuration)
}

func TestLeadsCreated(t *testing.T) {
	before := testutil.ToFloat64(LeadsCreated.WithLabelValues("created", "mba"))
	LeadsCreated.WithLabelValues("created", "mba").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(LeadsCreated.WithLabelValues("created", "mba")))
}

func TestLeadSubmissions(t *testing.T) {
	before := testutil.ToFloat64(LeadSubmissions.WithLabelValues("transport"))
	LeadSubmissions.WithLabelValues("transport").Inc()
	LeadSubmissions.WithLabelValues("transport").Inc()
	assert.Equal(t, before+2, testutil.ToFloat64(LeadSubmissions.WithLabelValues("transport")))
}

func TestActiveConnections(t *testing.T) {
	before := testutil.ToFloat64(ActiveConnections)
	ActiveConnections.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ActiveConnections))
	ActiveConnections.Dec()
	assert.Equal(t, before, testutil.ToFloat64(ActiveConnections))
}
