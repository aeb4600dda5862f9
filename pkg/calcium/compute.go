package calcium

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	correctionFactor = decimal.RequireFromString("0.8")
	referenceAlbumin = decimal.NewFromInt(4)
	mmolToMgDl       = decimal.NewFromInt(mgDlPerMmolL)
	mgDlToMmol       = decimal.RequireFromString("0.25")
)

// Result is a corrected calcium value rendered with exactly two decimals,
// tagged with the unit it is expressed in.
type Result struct {
	Value string `json:"value"`
	Unit  Unit   `json:"unit"`
}

// ClipboardText is the text handed to the copy-to-clipboard action.
func (r Result) ClipboardText() string {
	return fmt.Sprintf("Corrected Calcium: %s %s", r.Value, r.Unit)
}

// Correct applies corrected = calcium + 0.8 * (4.0 - albumin) in mg/dL and
// expresses the outcome in u. calcium is read in u, albumin in g/dL.
//
// The arithmetic is exact on the shortest decimal form of both inputs and the
// final value is rounded half away from zero, so 9.005 mg/dL with albumin 4
// gives "9.01".
func Correct(calcium, albumin float64, u Unit) Result {
	ca := toMgDl(decimal.NewFromFloat(calcium), u)
	corrected := ca.Add(correctionFactor.Mul(referenceAlbumin.Sub(decimal.NewFromFloat(albumin))))
	return Result{Value: fromMgDl(corrected, u).StringFixed(2), Unit: u}
}

// Convert re-expresses a calcium value given in from as a two-decimal string in to.
func Convert(v float64, from, to Unit) string {
	return fromMgDl(toMgDl(decimal.NewFromFloat(v), from), to).StringFixed(2)
}

func toMgDl(d decimal.Decimal, u Unit) decimal.Decimal {
	if u == MmolL {
		return d.Mul(mmolToMgDl)
	}
	return d
}

func fromMgDl(d decimal.Decimal, u Unit) decimal.Decimal {
	if u == MmolL {
		return d.Mul(mgDlToMmol)
	}
	return d
}
