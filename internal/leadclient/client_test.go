package leadclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/superabroad/lead-intake/internal/config"
	"github.com/superabroad/lead-intake/internal/form"
	"github.com/superabroad/lead-intake/internal/models"
	"github.com/superabroad/lead-intake/internal/submission"
	"github.com/superabroad/lead-intake/internal/toast"
)

func sampleLead() models.LeadForm {
	return models.LeadForm{
		Course:      "mba",
		FullName:    "Priya Sharma",
		Email:       "priya@example.com",
		CountryCode: "+91",
		Phone:       "9876543210",
		UseWhatsApp: true,
		AgreeTerms:  true,
	}
}

func newTestClient(t *testing.T, baseURL string, mutate ...func(*Options)) *Client {
	t.Helper()
	opts := Options{
		BaseURL:            baseURL,
		Timeout:            2 * time.Second,
		RateLimit:          1000,
		RateBurst:          100,
		BreakerMaxFailures: 3,
		BreakerOpenTimeout: time.Minute,
	}
	for _, m := range mutate {
		m(&opts)
	}
	c, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "  "})
	assert.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	c, err := NewFromConfig(&config.ClientConfig{
		BackendURL:     "https://api.superabroad.in/",
		RequestTimeout: time.Second,
		RateLimit:      1,
		RateBurst:      1,
	})
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "https://api.superabroad.in/api/leads", c.Endpoint())
}

func TestSendLead_PostsFullForm(t *testing.T) {
	var gotMethod, gotPath, gotContentType, gotRequestID string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotRequestID = r.Header.Get("X-Request-ID")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		jsonHandler(http.StatusCreated, `{"success":true,"message":"Thank you! We'll contact you within 24 hours.","leadId":"abc"}`)(w, r)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	msg, err := c.SendLead(context.Background(), sampleLead())

	require.NoError(t, err)
	assert.Equal(t, "Thank you! We'll contact you within 24 hours.", msg)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/leads", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Len(t, gotRequestID, 26, "request id is a ULID")
	assert.Equal(t, map[string]interface{}{
		"course":      "mba",
		"fullName":    "Priya Sharma",
		"email":       "priya@example.com",
		"countryCode": "+91",
		"phone":       "9876543210",
		"useWhatsApp": true,
		"agreeTerms":  true,
	}, gotBody)
}

func TestSendLead_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   submission.FailureKind
		wantMsg    string
		wantStatus int
	}{
		{
			name:     "rejection with detail",
			status:   http.StatusConflict,
			body:     `{"detail":"Email already registered"}`,
			wantKind: submission.Rejected,
			wantMsg:  "Email already registered",
		},
		{
			name:     "success false with detail on 200",
			status:   http.StatusOK,
			body:     `{"success":false,"detail":"Email already registered"}`,
			wantKind: submission.Rejected,
			wantMsg:  "Email already registered",
		},
		{
			name:     "success false without detail",
			status:   http.StatusOK,
			body:     `{"success":false}`,
			wantKind: submission.Rejected,
			wantMsg:  submission.MsgFallback,
		},
		{
			name:     "validation list detail is not shown",
			status:   http.StatusUnprocessableEntity,
			body:     `{"detail":[{"loc":["body","email"],"msg":"value is not a valid email address"}]}`,
			wantKind: submission.Transport,
			wantMsg:  submission.MsgFallback,
		},
		{
			name:     "non 2xx html page",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			wantKind: submission.Transport,
			wantMsg:  submission.MsgFallback,
		},
		{
			name:     "malformed 200",
			status:   http.StatusOK,
			body:     `{"success":tru`,
			wantKind: submission.Transport,
			wantMsg:  submission.MsgFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(jsonHandler(tt.status, tt.body))
			defer server.Close()

			c := newTestClient(t, server.URL)
			_, err := c.SendLead(context.Background(), sampleLead())

			require.Error(t, err)
			result := submission.Failure(err)
			assert.Equal(t, tt.wantKind, result.Kind())
			assert.Equal(t, tt.wantMsg, result.Message)
		})
	}
}

func TestSendLead_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := newTestClient(t, server.URL, func(o *Options) { o.Timeout = 50 * time.Millisecond })
	_, err := c.SendLead(context.Background(), sampleLead())

	var transport *submission.TransportError
	require.True(t, errors.As(err, &transport), "got %v", err)
	assert.Equal(t, submission.MsgFallback, submission.UserMessage(err))
}

func TestSendLead_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(jsonHandler(http.StatusOK, `{}`))
	url := server.URL
	server.Close()

	c := newTestClient(t, url)
	_, err := c.SendLead(context.Background(), sampleLead())

	var transport *submission.TransportError
	assert.True(t, errors.As(err, &transport))
}

func TestSendLead_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		jsonHandler(http.StatusInternalServerError, `{}`)(w, r)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	for i := 0; i < 3; i++ {
		_, err := c.SendLead(context.Background(), sampleLead())
		require.Error(t, err)
	}
	require.Equal(t, int32(3), hits.Load())

	_, err := c.SendLead(context.Background(), sampleLead())
	var transport *submission.TransportError
	require.True(t, errors.As(err, &transport))
	assert.Equal(t, int32(3), hits.Load(), "open breaker must not reach the server")
	assert.Equal(t, submission.MsgFallback, submission.UserMessage(err))
}

func TestSendLead_RejectionsDoNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		jsonHandler(http.StatusConflict, `{"detail":"Email already registered"}`)(w, r)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	for i := 0; i < 5; i++ {
		_, err := c.SendLead(context.Background(), sampleLead())
		assert.Equal(t, "Email already registered", submission.UserMessage(err))
	}
	assert.Equal(t, int32(5), hits.Load())
}

func TestSendLead_RateLimitedContextCancelled(t *testing.T) {
	server := httptest.NewServer(jsonHandler(http.StatusCreated, `{"success":true,"message":"ok"}`))
	defer server.Close()

	c := newTestClient(t, server.URL, func(o *Options) {
		o.RateLimit = 0.001
		o.RateBurst = 1
	})

	_, err := c.SendLead(context.Background(), sampleLead())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.SendLead(ctx, sampleLead())

	var transport *submission.TransportError
	assert.True(t, errors.As(err, &transport), "throttled submission fails as a transport error")
}

// End to end: form store, controller and client against a mocked endpoint.
func TestControllerWithClient(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantOK    bool
		wantMsg   string
		wantReset bool
	}{
		{
			name:      "reset on success",
			status:    http.StatusCreated,
			body:      `{"success":true,"message":"Thank you! We'll contact you within 24 hours."}`,
			wantOK:    true,
			wantMsg:   "Thank you! We'll contact you within 24 hours.",
			wantReset: true,
		},
		{
			name:    "preserve on failure",
			status:  http.StatusConflict,
			body:    `{"success":false,"detail":"Email already registered"}`,
			wantMsg: "Email already registered",
		},
		{
			name:    "fallback message",
			status:  http.StatusInternalServerError,
			body:    ``,
			wantMsg: "Something went wrong. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(jsonHandler(tt.status, tt.body))
			defer server.Close()

			store := form.NewStore(config.DefaultCatalog())
			lead := sampleLead()
			require.NoError(t, store.SetField(form.FieldCourse, lead.Course))
			require.NoError(t, store.SetField(form.FieldFullName, lead.FullName))
			require.NoError(t, store.SetField(form.FieldEmail, lead.Email))
			require.NoError(t, store.SetField(form.FieldPhone, lead.Phone))
			require.NoError(t, store.SetField(form.FieldUseWhatsApp, lead.UseWhatsApp))
			require.NoError(t, store.SetField(form.FieldAgreeTerms, lead.AgreeTerms))
			before := store.Snapshot()

			terminal := toast.NewTerminal(io.Discard)
			ctrl := submission.NewController(store, newTestClient(t, server.URL), terminal)

			result := ctrl.Submit(context.Background())

			assert.Equal(t, tt.wantOK, result.OK)
			assert.Equal(t, tt.wantMsg, result.Message)
			if tt.wantReset {
				assert.Equal(t, models.NewLeadForm("+91"), store.Snapshot())
			} else {
				assert.Equal(t, before, store.Snapshot())
			}

			kind, msg := terminal.Current()
			assert.NotEqual(t, toast.Loading, kind)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
