package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/superabroad/lead-intake/internal/models"
	"github.com/superabroad/lead-intake/internal/utils"
)

// LeadSubject is the subject of every new lead notification
const LeadSubject = "🎓 New Lead from Super Abroad UK Landing Page"

const submittedLayout = "02 January 2006, 03:04 PM UTC"

// leadView is the data both templates render
type leadView struct {
	FullName     string
	Email        string
	Phone        string
	PhoneLink    string
	WhatsApp     string
	WhatsAppLink string
	Course       string
	SubmittedAt  string
}

var leadHTML = htmltemplate.Must(htmltemplate.New("lead_html").Parse(`<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9fafb;">
      <div style="background: #f97316; color: white; padding: 30px; text-align: center; border-radius: 8px 8px 0 0;">
        <h1 style="margin: 0; font-size: 24px;">🎓 New Lead Received!</h1>
        <p style="margin: 10px 0 0 0;">Super Abroad - Study UK Landing Page</p>
      </div>
      <div style="background: white; padding: 30px; border-radius: 0 0 8px 8px;">
        <p>You have received a new inquiry from a prospective student:</p>
        <p><strong>👤 Full Name</strong><br>{{.FullName}}</p>
        <p><strong>📧 Email Address</strong><br><a href="mailto:{{.Email}}">{{.Email}}</a></p>
        <p><strong>📱 Phone Number</strong><br><a href="tel:{{.PhoneLink}}">{{.Phone}}</a></p>
        <p><strong>💬 WhatsApp Available</strong><br>{{.WhatsApp}}</p>
        <p><strong>📚 Course Interest</strong><br>{{.Course}}</p>
        <p><strong>🕐 Submitted At</strong><br>{{.SubmittedAt}}</p>
        {{if .WhatsAppLink}}<a href="{{.WhatsAppLink}}" style="display: inline-block; padding: 12px 24px; background: #f97316; color: white; text-decoration: none; border-radius: 6px;">💬 Contact via WhatsApp</a>{{end}}
      </div>
      <div style="text-align: center; margin-top: 20px; color: #6b7280; font-size: 12px;">
        <p>This is an automated notification from Super Abroad landing page.</p>
      </div>
    </div>
  </body>
</html>
`))

var leadText = texttemplate.Must(texttemplate.New("lead_text").Parse(`New Lead from Super Abroad UK Landing Page
==========================================

You have received a new inquiry:

Name: {{.FullName}}
Email: {{.Email}}
Phone: {{.Phone}}
WhatsApp: {{.WhatsApp}}
Course Interest: {{.Course}}
Submitted: {{.SubmittedAt}}
{{if .WhatsAppLink}}Chat: {{.WhatsAppLink}}
{{end}}
---
This is an automated notification from Super Abroad landing page.
`))

// BuildLeadNotification renders the staff email for a stored lead.
// courseName is the display name of lead.Course.
func BuildLeadNotification(lead models.Lead, courseName, to string) (EmailMessage, error) {
	view := leadView{
		FullName:    lead.FullName,
		Email:       lead.Email,
		Phone:       utils.FormatLeadPhone(lead.CountryCode, lead.Phone),
		WhatsApp:    "No",
		Course:      courseName,
		SubmittedAt: lead.Timestamp.UTC().Format(submittedLayout),
	}
	view.PhoneLink = strings.ReplaceAll(view.Phone, " ", "")
	if lead.Timestamp.IsZero() {
		view.SubmittedAt = time.Now().UTC().Format(submittedLayout)
	}

	if lead.UseWhatsApp {
		view.WhatsApp = "Yes ✅"
		e164 := lead.PhoneE164
		if e164 == "" {
			e164 = view.PhoneLink
		}
		view.WhatsAppLink = utils.WhatsAppLink(e164)
	}

	var html, text bytes.Buffer
	if err := leadHTML.Execute(&html, view); err != nil {
		return EmailMessage{}, fmt.Errorf("render lead html: %w", err)
	}
	if err := leadText.Execute(&text, view); err != nil {
		return EmailMessage{}, fmt.Errorf("render lead text: %w", err)
	}

	return EmailMessage{
		To:      to,
		Subject: LeadSubject,
		Body:    text.String(),
		HTML:    html.String(),
	}, nil
}
