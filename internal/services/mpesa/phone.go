package mpesa

import "strings"

// countryCallingCode is the prefix every outbound phone number must carry.
const countryCallingCode = "254"

// NormalizePhone converts a payer phone number to the 254XXXXXXXXX form
// the gateway requires. It strips '+' and spaces, replaces a leading '0'
// with the country code, and prepends the code when it is missing.
func NormalizePhone(phone string) string {
	phone = strings.ReplaceAll(phone, "+", "")
	phone = strings.ReplaceAll(phone, " ", "")
	if strings.HasPrefix(phone, countryCallingCode) {
		return phone
	}
	if strings.HasPrefix(phone, "0") {
		return countryCallingCode + phone[1:]
	}
	return countryCallingCode + phone
}

// truncate cuts s down to the gateway-imposed max length. Truncation,
// not rejection, is the policy for over-long fields.
func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
