package inventory

import "errors"

var ErrNegative = errors.New("inventory counts cannot be negative")

// Record is the single shared stock row.
type Record struct {
	MaxiVasos int `json:"maxiVasos"`
	Bolsas    int `json:"bolsas"`
}

func (r Record) Validate() error {
	if r.MaxiVasos < 0 || r.Bolsas < 0 {
		return ErrNegative
	}
	return nil
}

// Take decrements by the given units, flooring each count at zero.
// clamped reports whether any count hit the floor before the full amount.
func (r Record) Take(maxiVasos, bolsas int) (out Record, clamped bool) {
	out = r
	out.MaxiVasos, clamped = floorSub(r.MaxiVasos, maxiVasos)
	var c bool
	out.Bolsas, c = floorSub(r.Bolsas, bolsas)
	return out, clamped || c
}

// Restore returns units to stock.
func (r Record) Restore(maxiVasos, bolsas int) Record {
	return Record{MaxiVasos: r.MaxiVasos + maxiVasos, Bolsas: r.Bolsas + bolsas}
}

func floorSub(have, want int) (int, bool) {
	if want > have {
		return 0, true
	}
	return have - want, false
}
