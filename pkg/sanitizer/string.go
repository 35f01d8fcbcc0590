package sanitizer

import (
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeConsultationType maps "In Person", "in_person", "video" and similar
// onto the stored values. Unknown input yields "".
func NormalizeConsultationType(t string) string {
	s := strings.ToLower(TrimAndNormalize(t))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)

	switch s {
	case "in-person", "inperson", "in-clinic", "office", "physical":
		return "in-person"
	case "telemedicine", "tele-medicine", "video", "online", "virtual", "telehealth":
		return "telemedicine"
	default:
		return ""
	}
}
