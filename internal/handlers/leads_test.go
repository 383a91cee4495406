package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/superabroad/lead-intake/internal/config"
	"github.com/superabroad/lead-intake/internal/leadclient"
	"github.com/superabroad/lead-intake/internal/models"
	"github.com/superabroad/lead-intake/internal/services"
	"github.com/superabroad/lead-intake/internal/submission"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeLeadService struct {
	createErr error
	listErr   error
	created   []models.LeadCreate
	skip      int64
	limit     int64
}

func (f *fakeLeadService) CreateLead(ctx context.Context, input models.LeadCreate) (*models.CreateLeadResponse, error) {
	f.created = append(f.created, input)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.CreateLeadResponse{
		Success: true,
		Message: "Thank you! We'll contact you within 24 hours.",
		LeadID:  "65f0c0ffee0000000000beef",
	}, nil
}

func (f *fakeLeadService) ListLeads(ctx context.Context, skip, limit int64) (*models.ListLeadsResponse, error) {
	f.skip, f.limit = skip, limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &models.ListLeadsResponse{
		Success: true,
		Count:   1,
		Leads:   []models.Lead{{FullName: "Priya Sharma", Email: "priya@example.com"}},
	}, nil
}

func setupLeadHandlersTest(service LeadService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handlers := NewLeadHandlers(zap.NewNop(), service)

	router := gin.New()
	router.POST("/api/leads", handlers.CreateLead)
	router.GET("/api/leads", handlers.ListLeads)
	return router
}

func leadBody(overrides map[string]interface{}) []byte {
	body := map[string]interface{}{
		"course":      "mba",
		"fullName":    "Priya Sharma",
		"email":       "priya@example.com",
		"countryCode": "+91",
		"phone":       "9876543210",
		"useWhatsApp": true,
		"agreeTerms":  true,
	}
	for k, v := range overrides {
		if v == nil {
			delete(body, k)
			continue
		}
		body[k] = v
	}
	data, _ := json.Marshal(body)
	return data
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Detail
}

func TestCreateLead_Created(t *testing.T) {
	service := &fakeLeadService{}
	router := setupLeadHandlersTest(service)

	w := doRequest(router, http.MethodPost, "/api/leads", leadBody(nil))

	require.Equal(t, http.StatusCreated, w.Code)
	var resp models.CreateLeadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Thank you! We'll contact you within 24 hours.", resp.Message)
	assert.Equal(t, "65f0c0ffee0000000000beef", resp.LeadID)
	require.Len(t, service.created, 1)
	assert.True(t, service.created[0].UseWhatsApp)
}

func TestCreateLead_BindingFailures(t *testing.T) {
	tests := []struct {
		name       string
		body       []byte
		wantDetail string
	}{
		{"not json", []byte("course=mba"), DetailInvalidBody},
		{"missing course", leadBody(map[string]interface{}{"course": nil}), "Please select a course"},
		{"missing name", leadBody(map[string]interface{}{"fullName": ""}), "Please enter your full name"},
		{"missing email", leadBody(map[string]interface{}{"email": nil}), "Please enter your email address"},
		{"malformed email", leadBody(map[string]interface{}{"email": "priya@"}), "Please enter a valid email address"},
		{"missing phone", leadBody(map[string]interface{}{"phone": nil}), "Please enter your phone number"},
		{"wrong type", leadBody(map[string]interface{}{"agreeTerms": "yes"}), DetailInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeLeadService{}
			router := setupLeadHandlersTest(service)

			w := doRequest(router, http.MethodPost, "/api/leads", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantDetail, decodeDetail(t, w))
			assert.Empty(t, service.created)
		})
	}
}

func TestCreateLead_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"terms", models.ErrTermsNotAccepted, http.StatusBadRequest, "You must agree to the terms and conditions"},
		{"course", fmt.Errorf("%w: %q", models.ErrUnknownCourse, "x"), http.StatusBadRequest, "Please select a course from the list"},
		{"dial code", models.ErrUnknownDialCode, http.StatusBadRequest, "Please select a country code"},
		{"duplicate", models.ErrDuplicateLead, http.StatusConflict, "Email already registered"},
		{"storage", errors.New("mongo down"), http.StatusInternalServerError, "An error occurred while processing your request. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupLeadHandlersTest(&fakeLeadService{createErr: tt.err})

			w := doRequest(router, http.MethodPost, "/api/leads", leadBody(nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantDetail, decodeDetail(t, w))
		})
	}
}

func TestListLeads(t *testing.T) {
	service := &fakeLeadService{}
	router := setupLeadHandlersTest(service)

	w := doRequest(router, http.MethodGet, "/api/leads", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ListLeadsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1), resp.Count)
	assert.Len(t, resp.Leads, 1)
	assert.Equal(t, int64(0), service.skip)
	assert.Equal(t, int64(100), service.limit)

	doRequest(router, http.MethodGet, "/api/leads?skip=20&limit=10", nil)
	assert.Equal(t, int64(20), service.skip)
	assert.Equal(t, int64(10), service.limit)
}

func TestListLeads_InvalidQuery(t *testing.T) {
	router := setupLeadHandlersTest(&fakeLeadService{})

	for _, query := range []string{"skip=-1", "skip=abc", "limit=0", "limit=ten"} {
		w := doRequest(router, http.MethodGet, "/api/leads?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestListLeads_Failure(t *testing.T) {
	router := setupLeadHandlersTest(&fakeLeadService{listErr: errors.New("mongo down")})

	w := doRequest(router, http.MethodGet, "/api/leads", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to fetch leads", decodeDetail(t, w))
}

// memoryLeadStore backs the real lead service in the round trip test
type memoryLeadStore struct {
	mu    sync.Mutex
	leads []models.Lead
}

func (m *memoryLeadStore) Insert(ctx context.Context, lead *models.Lead) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead.ID = primitive.NewObjectID()
	m.leads = append(m.leads, *lead)
	return lead.ID, nil
}

func (m *memoryLeadStore) List(ctx context.Context, skip, limit int64) ([]models.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Lead(nil), m.leads...), nil
}

func (m *memoryLeadStore) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.leads)), nil
}

// The lead client against the API router with the real lead service
func TestLeadClientRoundTrip(t *testing.T) {
	store := &memoryLeadStore{}
	service := services.NewLeadService(zap.NewNop(), store, nil, nil, config.DefaultCatalog(), "")
	server := httptest.NewServer(setupLeadHandlersTest(service))
	defer server.Close()

	client, err := leadclient.New(leadclient.Options{
		BaseURL:   server.URL,
		Timeout:   2 * time.Second,
		RateLimit: 100,
		RateBurst: 10,
	})
	require.NoError(t, err)
	defer client.Close()

	lead := models.LeadForm{
		Course:      "law",
		FullName:    "Tom Baker",
		Email:       "tom@example.com",
		CountryCode: "+44",
		Phone:       "07400 123456",
		AgreeTerms:  true,
	}

	msg, err := client.SendLead(context.Background(), lead)
	require.NoError(t, err)
	assert.Equal(t, "Thank you! We'll contact you within 24 hours.", msg)
	require.Len(t, store.leads, 1)
	assert.Equal(t, "+447400123456", store.leads[0].PhoneE164)

	lead.AgreeTerms = false
	_, err = client.SendLead(context.Background(), lead)
	assert.Equal(t, "You must agree to the terms and conditions", submission.UserMessage(err))
	var rejected *submission.ServerRejection
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusBadRequest, rejected.StatusCode)
}
