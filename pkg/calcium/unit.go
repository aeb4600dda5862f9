package calcium

import (
	"fmt"
	"strings"
)

// Unit is the unit the calcium measurement is expressed in. Only MgDl and
// MmolL exist; the zero value is MgDl.
type Unit struct {
	mmol bool
}

var (
	MgDl  = Unit{}
	MmolL = Unit{mmol: true}
)

// mmol/L -> mg/dL. The inverse is 0.25.
const mgDlPerMmolL = 4

func (u Unit) String() string {
	if u.mmol {
		return "mmol/L"
	}
	return "mg/dL"
}

// ParseUnit accepts the display form of a unit and a few shorthands, ignoring case.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mg/dl", "mgdl", "mg":
		return MgDl, nil
	case "mmol/l", "mmoll", "mmol":
		return MmolL, nil
	default:
		return MgDl, fmt.Errorf("unknown calcium unit %q, expected mg/dL or mmol/L", s)
	}
}

func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *Unit) UnmarshalText(b []byte) error {
	parsed, err := ParseUnit(string(b))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
