// Package intent turns assistant output into structured booking and payment
// intents. It is a pure function of its input.
package intent

import (
	"regexp"
	"strings"
	"time"

	"medibites/pkg/model"
	"medibites/pkg/sanitizer"
)

// Control markers the conversational layer embeds in generated text.
const (
	MarkerBookAppointment = "[BOOK_APPOINTMENT]"
	MarkerRequestPayment  = "[REQUEST_PAYMENT]"
	MarkerGenerateOTP     = "[GENERATE_OTP]"
	MarkerConfirmDetails  = "[CONFIRM_DETAILS]"
)

var markerRe = regexp.MustCompile(`(?i)\[(?:BOOK_APPOINTMENT|REQUEST_PAYMENT|GENERATE_OTP|CONFIRM_DETAILS)\]`)

// labelledField matches "<label>[:\s]*<value to end of line>" case-insensitively.
// The strict form requires a ':' or '=' after the label and takes precedence
// over the loose form.
type labelledField struct {
	strict *regexp.Regexp
	loose  *regexp.Regexp
}

func field(label string) labelledField {
	return labelledField{
		strict: regexp.MustCompile(`(?im)\b(?:` + label + `)\b[ \t]*[:=][ \t]*([^\n]+)`),
		loose:  regexp.MustCompile(`(?im)\b(?:` + label + `)\b[ \t]*-?[ \t]*([^\n]+)`),
	}
}

var (
	specialtyRe     = field(`special(?:ty|ties|ity|ities)`)
	doctorIDRe      = field(`doctor[ \t_-]*id`)
	doctorNameRe    = field(`doctor(?:'s)?(?:[ \t]+name)?`)
	dateRe          = field(`(?:appointment[ \t]+)?date`)
	startTimeRe     = field(`(?:start[ \t]*)?time`)
	reasonRe        = field(`reason(?:[ \t]+for[ \t]+visit)?`)
	typeRe          = field(`(?:consultation[ \t]+|appointment[ \t]+)?type`)
	amountRe        = field(`amount`)
	appointmentIDRe = field(`appointment[ \t_-]*id`)

	isoDateRe   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	clockRe     = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
	leadingIDRe = regexp.MustCompile(`(?i)^id\b`)
)

// Result is the outcome of one extraction. Book and Payment are nil when the
// text carries no such intent, which is the common case.
type Result struct {
	Book    *model.BookIntent
	Payment *model.PaymentIntent
	Text    string
}

func (r Result) HasIntent() bool {
	return r.Book != nil || r.Payment != nil
}

type Extractor struct {
	appointmentDuration time.Duration
}

func NewExtractor(appointmentDuration time.Duration) *Extractor {
	return &Extractor{appointmentDuration: appointmentDuration}
}

func (e *Extractor) Extract(text string) Result {
	result := Result{
		Text: strings.TrimSpace(markerRe.ReplaceAllString(text, "")),
	}

	upper := strings.ToUpper(text)
	if strings.Contains(upper, MarkerBookAppointment) {
		result.Book = e.extractBooking(text)
	}
	if strings.Contains(upper, MarkerRequestPayment) {
		result.Payment = extractPayment(text)
	}

	return result
}

func (e *Extractor) extractBooking(text string) *model.BookIntent {
	text = stripDecoration(text)

	intent := &model.BookIntent{
		Specialty:  firstValue(specialtyRe, text),
		DoctorID:   firstToken(firstValue(doctorIDRe, text)),
		DoctorName: doctorName(text),
		Reason:     firstValue(reasonRe, text),
		Type:       sanitizer.NormalizeConsultationType(firstValue(typeRe, text)),
	}

	if raw := firstValue(dateRe, text); raw != "" {
		intent.Date = raw
		if iso := isoDateRe.FindString(raw); iso != "" {
			if normalized := sanitizer.NormalizeDate(iso); normalized != "" {
				intent.Date = normalized
			}
		}
	}

	if raw := firstValue(startTimeRe, text); raw != "" {
		intent.StartTime = raw
		// Only a bare 24h clock counts; "9:00 PM" stays incomplete.
		if clock := sanitizer.NormalizeClock(raw); clock != "" && clockRe.MatchString(raw) {
			intent.StartTime = clock
			intent.EndTime, _ = sanitizer.AddToClock(clock, e.appointmentDuration)
		}
	}

	if *intent == (model.BookIntent{}) {
		return nil
	}
	return intent
}

func extractPayment(text string) *model.PaymentIntent {
	text = stripDecoration(text)

	intent := &model.PaymentIntent{
		AppointmentID: firstToken(firstValue(appointmentIDRe, text)),
	}
	if raw := firstValue(amountRe, text); raw != "" {
		if amount, ok := sanitizer.ParseAmount(raw); ok {
			intent.Amount = &amount
		}
	}

	if intent.Amount == nil && intent.AppointmentID == "" {
		return nil
	}
	return intent
}

// doctorName skips "Doctor ID: ..." lines, which share the label prefix.
func doctorName(text string) string {
	for _, re := range []*regexp.Regexp{doctorNameRe.strict, doctorNameRe.loose} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			value := clean(m[1])
			if value == "" || leadingIDRe.MatchString(value) {
				continue
			}
			return value
		}
	}
	return ""
}

func firstValue(f labelledField, text string) string {
	for _, re := range []*regexp.Regexp{f.strict, f.loose} {
		if m := re.FindStringSubmatch(text); m != nil {
			if value := clean(m[1]); value != "" {
				return value
			}
		}
	}
	return ""
}

func firstToken(value string) string {
	if fields := strings.Fields(value); len(fields) > 0 {
		return strings.TrimRight(fields[0], ".,;")
	}
	return ""
}

func clean(value string) string {
	value = markerRe.ReplaceAllString(value, "")
	return strings.TrimRight(sanitizer.TrimAndNormalize(value), ".,;")
}

// stripDecoration removes markdown emphasis so "**Date:** 2024-06-01" reads as a labelled field.
func stripDecoration(text string) string {
	return strings.NewReplacer("**", "", "__", "", "`", "").Replace(text)
}
