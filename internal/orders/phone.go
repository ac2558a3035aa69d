package orders

import "strings"

// MobilePrefix is the first digit of every Colombian mobile number.
const MobilePrefix = '3'

var phoneCleaner = strings.NewReplacer(" ", "", "-", "")

// NormalizePhone strips the spaces and hyphens customers type.
func NormalizePhone(phone string) string {
	return phoneCleaner.Replace(phone)
}

// ValidatePhone accepts exactly ten digits starting with the mobile prefix,
// ignoring spaces and hyphens.
func ValidatePhone(phone string) error {
	p := NormalizePhone(phone)
	if p == "" || strings.IndexFunc(p, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return invalid("telefono", "El teléfono debe contener solo números")
	}
	if len(p) != 10 {
		return invalid("telefono", "El teléfono debe tener 10 dígitos")
	}
	if p[0] != MobilePrefix {
		return invalid("telefono", "No es un número telefónico colombiano válido")
	}
	return nil
}
