package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers written without a country code.
const DefaultRegion = "US"

func NormalizePhone(phone string) string {
	return NormalizePhoneForRegion(phone, DefaultRegion)
}

// NormalizePhoneForRegion returns phone in E.164 form, or "" when it is not a
// valid number.
func NormalizePhoneForRegion(phone, region string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(phone, strings.ToUpper(region))
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return ""
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
