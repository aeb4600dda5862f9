package calcium

import (
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Interpretation places a corrected calcium value relative to the usual
// adult normal range.
type Interpretation string

const (
	Low    Interpretation = "Low"
	Normal Interpretation = "Normal"
	High   Interpretation = "High"
)

var (
	normalLowMgDl  = decimal.RequireFromString("8.5")
	normalHighMgDl = decimal.RequireFromString("10.5")
)

// NormalRange returns the inclusive normal range of corrected calcium in u.
func NormalRange(u Unit) (lo, hi float64) {
	return fromMgDl(normalLowMgDl, u).InexactFloat64(), fromMgDl(normalHighMgDl, u).InexactFloat64()
}

// Interpret classifies the displayed value of r. Bounds are inclusive and the
// mmol/L range is the exact image of 8.5-10.5 mg/dL.
func Interpret(r Result) (Interpretation, error) {
	v, err := decimal.NewFromString(r.Value)
	if err != nil {
		return "", pkgerrors.Wrapf(err, "invalid result value %q", r.Value)
	}
	v = toMgDl(v, r.Unit)

	switch {
	case v.LessThan(normalLowMgDl):
		return Low, nil
	case v.GreaterThan(normalHighMgDl):
		return High, nil
	default:
		return Normal, nil
	}
}
