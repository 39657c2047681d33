package utils

import "strings"

// NormalizeMsisdn rewrites a Kenyan phone number into the 2547XXXXXXXX form
// the gateway expects: the leading "+" is stripped and a local trunk "0" is
// replaced with the country code. Normalizing an already-normalized number is
// a no-op.
func NormalizeMsisdn(phone string) string {
	p := strings.TrimSpace(phone)
	p = strings.TrimPrefix(p, "+")
	if strings.HasPrefix(p, "0") {
		p = "254" + p[1:]
	}
	return p
}

// PlusPhone returns the number in international format with a leading "+",
// the form the SMS provider expects.
func PlusPhone(phone string) string {
	p := NormalizeMsisdn(phone)
	if p == "" {
		return ""
	}
	return "+" + p
}
