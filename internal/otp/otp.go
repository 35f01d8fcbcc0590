// Package otp issues and checks the one-time codes that gate appointment payment.
//
// Only a bcrypt hash of a code is persisted on the appointment. The plaintext
// code is handed back once, in the booking result.
package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"medibites/pkg/model"

	"golang.org/x/crypto/bcrypt"
)

const (
	CodeLength = 6
	minCode    = 100000
	maxCode    = 999999
)

var (
	ErrInvalidFormat = errors.New("otp must be exactly 6 digits")
	ErrMismatch      = errors.New("otp does not match")
	ErrNotPending    = errors.New("appointment is not awaiting payment")
)

// Authority is safe for concurrent use.
type Authority struct {
	cost int
}

func NewAuthority(cost int) *Authority {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Authority{cost: cost}
}

// Issue returns a fresh code drawn uniformly from [100000, 999999] and its hash.
func (a *Authority) Issue() (code string, hash string, err error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate otp: %w", err)
	}
	code = fmt.Sprintf("%06d", n.Int64()+minCode)

	hashed, err := bcrypt.GenerateFromPassword([]byte(code), a.cost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash otp: %w", err)
	}
	return code, string(hashed), nil
}

// ValidFormat reports whether code is exactly six ASCII digits.
func ValidFormat(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// Validate checks code against the one issued for appt. A confirmed appointment
// never validates, which makes every code single-use.
func (a *Authority) Validate(appt *model.Appointment, code string) error {
	if !ValidFormat(code) {
		return ErrInvalidFormat
	}
	if appt == nil || !appt.PendingPayment() || appt.OTPHash == "" {
		return ErrNotPending
	}
	if err := bcrypt.CompareHashAndPassword([]byte(appt.OTPHash), []byte(code)); err != nil {
		return ErrMismatch
	}
	return nil
}
