// Package referral resolves referral codes, prices the referral discount
// and credits referrers when a referred order is delivered.
package referral

import (
	"errors"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	// MaxCodeLength is the longest code the order form accepts.
	MaxCodeLength = 5

	PointsHigh      = 10
	PointsLow       = 5
	PointsThreshold = 10000
)

var (
	ErrNotFound     = errors.New("referral code not found")
	ErrSelfReferral = errors.New("referral code belongs to the customer")
	ErrCodeTooLong  = errors.New("referral code too long")
)

var (
	discountRate = decimal.RequireFromString("0.10")
	phoneCleaner = strings.NewReplacer(" ", "", "-", "")
)

// Referrer is a row of the refered collection.
type Referrer struct {
	NumReferido     string
	Telefono        string
	PuntosTotal     int
	VasosComprados  int
	BolsasCompradas int
}

// Units are the product counts of a credited order.
type Units struct {
	MaxiVasos int
	Bolsas    int
}

// Credit is what a single delivered order adds to its referrer.
type Credit struct {
	Puntos int
	Units
}

// NormalizeCode keeps letters and digits and upper-cases them.
func NormalizeCode(code string) (string, error) {
	var b strings.Builder
	for _, r := range code {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	out := b.String()
	if len(out) > MaxCodeLength {
		return "", ErrCodeTooLong
	}
	return out, nil
}

// CheckSelf rejects a code used by the phone that owns it. Referrers with
// no phone on file cannot be self-referrals.
func CheckSelf(ref Referrer, phone string) error {
	owner := phoneCleaner.Replace(ref.Telefono)
	if owner != "" && owner == phoneCleaner.Replace(phone) {
		return ErrSelfReferral
	}
	return nil
}

// Discount is 10% of the pre-discount subtotal, rounded half up.
func Discount(subtotal int) int {
	return int(decimal.NewFromInt(int64(subtotal)).Mul(discountRate).Round(0).IntPart())
}

// PointsFor returns the points a delivered order earns its referrer.
func PointsFor(total int) int {
	if total >= PointsThreshold {
		return PointsHigh
	}
	return PointsLow
}

// CreditFor builds the credit for an order of the given units and total.
func CreditFor(u Units, total int) Credit {
	return Credit{Puntos: PointsFor(total), Units: u}
}
