package utils

import (
	"strings"
)

// MaskName masks a full name for logs, keeping the first name and the initial
// of every other part (e.g. "Priya Anand Sharma" -> "Priya A**** S*****")
func MaskName(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return ""
	}

	if len(parts) == 1 {
		return maskTail(parts[0])
	}

	masked := make([]string, 0, len(parts))
	masked = append(masked, parts[0])
	for _, p := range parts[1:] {
		masked = append(masked, maskTail(p))
	}
	return strings.Join(masked, " ")
}

// MaskEmail keeps the first character of the local part and the domain
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return maskTail(email[:at]) + email[at:]
}

// MaskPhone keeps the last three digits
func MaskPhone(phone string) string {
	runes := []rune(strings.TrimSpace(phone))
	if len(runes) <= 3 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-3) + string(runes[len(runes)-3:])
}

func maskTail(s string) string {
	runes := []rune(s)
	if len(runes) <= 1 {
		return s
	}
	return string(runes[:1]) + strings.Repeat("*", len(runes)-1)
}
