package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var nonDigits = regexp.MustCompile(`\D`)

// PhoneComponents represents the parsed components of a lead phone number
type PhoneComponents struct {
	CountryCode    string `json:"country_code"`
	NationalNumber string `json:"national_number"`
	E164           string `json:"e164"`
	Region         string `json:"region"`
}

// ParseLeadPhone combines the dialing code chosen on the form with the number the
// lead typed. Spaces, dashes and a leading trunk zero are tolerated.
func ParseLeadPhone(countryCode, phone string) (*PhoneComponents, error) {
	digits := nonDigits.ReplaceAllString(phone, "")
	if digits == "" {
		return nil, fmt.Errorf("invalid phone number: %q", phone)
	}

	prefix := "+" + strings.TrimPrefix(strings.TrimSpace(countryCode), "+")
	num, err := phonenumbers.Parse(prefix+strings.TrimLeft(digits, "0"), "")
	if err != nil {
		return nil, fmt.Errorf("failed to parse phone number: %w", err)
	}

	if !phonenumbers.IsValidNumber(num) {
		return nil, fmt.Errorf("invalid phone number: %s %s", countryCode, phone)
	}

	return &PhoneComponents{
		CountryCode:    fmt.Sprintf("%d", num.GetCountryCode()),
		NationalNumber: phonenumbers.GetNationalSignificantNumber(num),
		E164:           phonenumbers.Format(num, phonenumbers.E164),
		Region:         phonenumbers.GetRegionCodeForNumber(num),
	}, nil
}

// FormatLeadPhone renders a phone for humans, e.g. "+91 9876543210"
func FormatLeadPhone(countryCode, phone string) string {
	return strings.TrimSpace(countryCode + " " + strings.TrimSpace(phone))
}

// WhatsAppLink builds a wa.me click-to-chat link for an E.164 number
func WhatsAppLink(e164 string) string {
	return "https://wa.me/" + strings.TrimPrefix(e164, "+")
}
