package calcium

import (
	"fmt"
	"strconv"
)

const invalidNumberMessage = "Please enter a valid number"

// Validation is the advisory feedback for one input field. The zero value
// carries no warning.
type Validation struct {
	Message string `json:"message,omitempty"`
}

// NoWarning is the Validation of a field that looks fine, or is still empty.
var NoWarning = Validation{}

func Warning(message string) Validation {
	return Validation{Message: message}
}

func (v Validation) HasWarning() bool {
	return v.Message != ""
}

// plausibleRange is an inclusive soft bound. Values outside it are flagged
// but still take part in the calculation.
type plausibleRange struct {
	min, max float64
	unit     string
}

func (r plausibleRange) contains(v float64) bool {
	return v >= r.min && v <= r.max
}

func (r plausibleRange) String() string {
	return fmt.Sprintf("%s-%s %s",
		strconv.FormatFloat(r.min, 'f', -1, 64),
		strconv.FormatFloat(r.max, 'f', -1, 64),
		r.unit)
}

var (
	calciumRangeMgDl = plausibleRange{min: 5, max: 15, unit: MgDl.String()}
	// Linear image of the mg/dL window, not an independent choice.
	calciumRangeMmolL = plausibleRange{
		min:  calciumRangeMgDl.min / mgDlPerMmolL,
		max:  calciumRangeMgDl.max / mgDlPerMmolL,
		unit: MmolL.String(),
	}
	albuminRange = plausibleRange{min: 1, max: 7, unit: AlbuminUnit}
)

// AlbuminUnit is the only unit albumin is accepted in.
const AlbuminUnit = "g/dL"

// CalciumRange returns the inclusive plausible window for calcium in u.
func CalciumRange(u Unit) (lo, hi float64) {
	r := calciumRangeFor(u)
	return r.min, r.max
}

func calciumRangeFor(u Unit) plausibleRange {
	if u == MmolL {
		return calciumRangeMmolL
	}
	return calciumRangeMgDl
}

func validate(p ParsedValue, name string, r plausibleRange) Validation {
	switch p.Kind() {
	case Invalid:
		return Warning(invalidNumberMessage)
	case Numeric:
		v, _ := p.Value()
		if !r.contains(v) {
			return Warning(fmt.Sprintf("%s values typically range from %s. Please verify your input.", name, r))
		}
	}
	return NoWarning
}

// ValidateCalcium checks a parsed calcium input against the window of u.
func ValidateCalcium(p ParsedValue, u Unit) Validation {
	return validate(p, "Calcium", calciumRangeFor(u))
}

// ValidateAlbumin checks a parsed albumin input (g/dL).
func ValidateAlbumin(p ParsedValue) Validation {
	return validate(p, "Albumin", albuminRange)
}
