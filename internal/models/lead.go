package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LeadSourceLandingPage tags leads captured by the landing page form
const LeadSourceLandingPage = "landing_page"

// LeadForm is the in-progress, user-editable representation of one lead.
// JSON names match the lead intake wire format.
type LeadForm struct {
	Course      string `json:"course"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	CountryCode string `json:"countryCode"`
	Phone       string `json:"phone"`
	UseWhatsApp bool   `json:"useWhatsApp"`
	AgreeTerms  bool   `json:"agreeTerms"`
}

// NewLeadForm returns a blank form with the given dialing code selected
func NewLeadForm(defaultCountryCode string) LeadForm {
	return LeadForm{CountryCode: defaultCountryCode}
}

// LeadCreate is the request body of POST /api/leads
// swagger:model
type LeadCreate struct {
	// example: business-analytics
	Course string `json:"course" binding:"required,max=64"`
	// example: Priya Sharma
	FullName string `json:"fullName" binding:"required,max=200"`
	// example: priya@example.com
	Email string `json:"email" binding:"required,email,max=254"`
	// example: +91
	CountryCode string `json:"countryCode" binding:"required,max=5"`
	// example: 9876543210
	Phone       string `json:"phone" binding:"required,max=20"`
	UseWhatsApp bool   `json:"useWhatsApp"`
	// Must be true; checked by the handler so the rejection carries a readable detail.
	AgreeTerms bool `json:"agreeTerms"`
}

// Lead is a stored lead
type Lead struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Course      string             `json:"course" bson:"course"`
	FullName    string             `json:"fullName" bson:"fullName"`
	Email       string             `json:"email" bson:"email"`
	CountryCode string             `json:"countryCode" bson:"countryCode"`
	Phone       string             `json:"phone" bson:"phone"`
	PhoneE164   string             `json:"phoneE164,omitempty" bson:"phoneE164,omitempty"`
	UseWhatsApp bool               `json:"useWhatsApp" bson:"useWhatsApp"`
	AgreeTerms  bool               `json:"agreeTerms,omitempty" bson:"agreeTerms"`
	Timestamp   time.Time          `json:"timestamp" bson:"timestamp"`
	Source      string             `json:"source" bson:"source"`
}

// CreateLeadResponse is returned when a lead is stored
type CreateLeadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	LeadID  string `json:"leadId"`
}

// ListLeadsResponse is returned by the admin listing
type ListLeadsResponse struct {
	Success bool   `json:"success"`
	Count   int64  `json:"count"`
	Leads   []Lead `json:"leads"`
}
