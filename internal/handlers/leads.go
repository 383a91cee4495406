package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/superabroad/lead-intake/internal/models"
	"github.com/superabroad/lead-intake/internal/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Details returned by the lead endpoints
const (
	DetailTermsRequired = "You must agree to the terms and conditions"
	DetailDuplicate     = "Email already registered"
	DetailCreateFailed  = "An error occurred while processing your request. Please try again."
	DetailListFailed    = "Failed to fetch leads"
	DetailInvalidBody   = "Invalid request body"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// LeadService is the business layer used by LeadHandlers
type LeadService interface {
	CreateLead(ctx context.Context, input models.LeadCreate) (*models.CreateLeadResponse, error)
	ListLeads(ctx context.Context, skip, limit int64) (*models.ListLeadsResponse, error)
}

// LeadHandlers serves the lead intake endpoints
type LeadHandlers struct {
	logger      *zap.Logger
	leadService LeadService
}

// NewLeadHandlers creates a new lead handlers instance
func NewLeadHandlers(logger *zap.Logger, leadService LeadService) *LeadHandlers {
	return &LeadHandlers{
		logger:      logger,
		leadService: leadService,
	}
}

// CreateLead godoc
// @Summary Register a lead
// @Description Stores a lead captured by the landing page form and notifies the admissions team
// @Tags Leads
// @Accept json
// @Produce json
// @Param lead body models.LeadCreate true "Lead form"
// @Success 201 {object} models.CreateLeadResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /leads [post]
func (h *LeadHandlers) CreateLead(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "CreateLead")
	defer span.End()

	_, parse := utils.TraceInputParsing(ctx, "lead_create")
	var req models.LeadCreate
	err := c.ShouldBindJSON(&req)
	parse.End(err)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: bindingDetail(err)})
		return
	}

	span.SetAttributes(attribute.String("lead.course", req.Course))

	resp, err := h.leadService.CreateLead(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrTermsNotAccepted):
			c.JSON(http.StatusBadRequest, ErrorResponse{Detail: DetailTermsRequired})
		case errors.Is(err, models.ErrUnknownCourse):
			c.JSON(http.StatusBadRequest, ErrorResponse{Detail: utils.MsgCourseUnknown})
		case errors.Is(err, models.ErrUnknownDialCode):
			c.JSON(http.StatusBadRequest, ErrorResponse{Detail: utils.MsgCountryRequired})
		case errors.Is(err, models.ErrDuplicateLead):
			c.JSON(http.StatusConflict, ErrorResponse{Detail: DetailDuplicate})
		default:
			utils.RecordError(span, err)
			h.logger.Error("error creating lead", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: DetailCreateFailed})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListLeads godoc
// @Summary List leads
// @Description Lists stored leads, newest first (admin use)
// @Tags Leads
// @Produce json
// @Param skip query int false "Leads to skip (default: 0)"
// @Param limit query int false "Page size (default: 100, max: 1000)"
// @Success 200 {object} models.ListLeadsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /leads [get]
func (h *LeadHandlers) ListLeads(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ListLeads")
	defer span.End()

	skip, err := strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	if err != nil || skip < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "skip must be a non-negative integer"})
		return
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "limit must be a positive integer"})
		return
	}

	resp, err := h.leadService.ListLeads(ctx, skip, limit)
	if err != nil {
		utils.RecordError(span, err)
		h.logger.Error("error fetching leads", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: DetailListFailed})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// bindingDetail turns the first binding failure into a message the form can show
func bindingDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return DetailInvalidBody
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Course":
		return utils.MsgCourseRequired
	case "FullName":
		return utils.MsgNameRequired
	case "Email":
		if fe.Tag() == "required" {
			return utils.MsgEmailRequired
		}
		return utils.MsgEmailInvalid
	case "CountryCode":
		return utils.MsgCountryRequired
	case "Phone":
		return utils.MsgPhoneRequired
	}
	return DetailInvalidBody
}
