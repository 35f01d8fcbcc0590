// Package sanitizer normalizes free-text input before it is validated or stored.
//
// All functions are idempotent and never fail: invalid input normalizes to an
// empty string, which the validators then reject as missing.
//
// Normalization includes:
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Emails: trim and lowercase
//   - Consultation types: map free-text spellings onto in-person / telemedicine
//   - Dates and times: canonical YYYY-MM-DD and zero-padded HH:MM
//   - Amounts: strip currency symbols and thousands separators
package sanitizer
