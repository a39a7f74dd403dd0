// Package pricing computes the price of a stay from the nightly rate and the
// configured table of optional extras.
package pricing

import (
	"fmt"
	"math"
	"staybook/pkg/model"
	"strings"
	"time"
)

// Nights counts started 24h periods between check-in and check-out.
// A zero or negative span yields a value <= 0.
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

type Table struct {
	rates map[string]model.ExtraRate
}

func NewTable(rates []model.ExtraRate) *Table {
	t := &Table{rates: make(map[string]model.ExtraRate, len(rates))}
	for _, r := range rates {
		t.rates[normalizeCode(r.Code)] = r
	}
	return t
}

func (t *Table) Has(code string) bool {
	_, ok := t.rates[normalizeCode(code)]
	return ok
}

// Codes returns the extras in canonical form, in the caller's order.
func (t *Table) Codes(extras []string) []string {
	out := make([]string, 0, len(extras))
	for _, e := range extras {
		out = append(out, normalizeCode(e))
	}
	return out
}

// ExtrasCost prices the selected extras for a stay of the given length.
func (t *Table) ExtrasCost(extras []string, nights int) (float64, error) {
	var total float64
	for _, code := range extras {
		rate, ok := t.rates[normalizeCode(code)]
		if !ok {
			return 0, fmt.Errorf("unknown extra %q", code)
		}
		switch rate.Per {
		case model.ExtraPerNight:
			total += rate.Amount * float64(nights)
		default:
			total += rate.Amount
		}
	}
	return total, nil
}

// Quote returns nights * pricePerNight plus the extras, rounded to cents.
func (t *Table) Quote(pricePerNight float64, nights int, extras []string) (float64, error) {
	extrasCost, err := t.ExtrasCost(extras, nights)
	if err != nil {
		return 0, err
	}
	return RoundCents(float64(nights)*pricePerNight + extrasCost), nil
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
