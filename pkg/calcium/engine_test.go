package calcium

import (
	"testing"
)

func TestEngine_FormulaNoCorrectionAtReferenceAlbumin(t *testing.T) {
	e := NewEngine(MgDl)
	e.SetCalciumInput("9.5")
	e.SetAlbuminInput("4.0")

	r, ok := e.Result()
	if !ok {
		t.Fatalf("expected a result")
	}
	if r.Value != "9.50" || r.Unit != MgDl {
		t.Fatalf("expected 9.50 mg/dL, got %s %s", r.Value, r.Unit)
	}
}

func TestEngine_CorrectionDirection(t *testing.T) {
	e := NewEngine(MgDl)
	e.SetCalciumInput("9.0")
	e.SetAlbuminInput("2.0")

	r, ok := e.Result()
	if !ok {
		t.Fatalf("expected a result")
	}
	if r.Value != "10.60" {
		t.Fatalf("expected 10.60, got %s", r.Value)
	}
}

func TestEngine_EmptyInputGivesNoResult(t *testing.T) {
	tests := []struct {
		name    string
		calcium string
		albumin string
	}{
		{name: "both empty"},
		{name: "calcium empty", albumin: "4.0"},
		{name: "albumin empty", calcium: "9.5"},
		{name: "calcium empty, albumin invalid", albumin: "abc"},
		{name: "albumin empty, calcium out of range", calcium: "100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, u := range []Unit{MgDl, MmolL} {
				e := NewEngine(u)
				e.SetCalciumInput(tt.calcium)
				e.SetAlbuminInput(tt.albumin)
				if r, ok := e.Result(); ok {
					t.Errorf("%s: expected no result, got %+v", u, r)
				}
			}
		})
	}
}

func TestEngine_InvalidInputContainment(t *testing.T) {
	e := NewEngine(MgDl)
	e.SetAlbuminInput("0.5")
	e.SetCalciumInput("abc")

	if got := e.CalciumValidation(); got != Warning("Please enter a valid number") {
		t.Errorf("unexpected calcium validation: %+v", got)
	}
	if _, ok := e.Result(); ok {
		t.Errorf("expected no result")
	}

	want := "Albumin values typically range from 1-7 g/dL. Please verify your input."
	if got := e.AlbuminValidation(); got.Message != want {
		t.Errorf("albumin validation should be derived on its own, got %q", got.Message)
	}

	e.SetAlbuminInput("3.5")
	if e.AlbuminValidation().HasWarning() {
		t.Errorf("albumin 3.5 should not warn")
	}
	if !e.CalciumValidation().HasWarning() {
		t.Errorf("calcium warning should persist while text is still invalid")
	}
}

func TestEngine_PartialTextIsStoredVerbatim(t *testing.T) {
	e := NewEngine(MgDl)
	e.SetCalciumInput("9.")
	e.SetAlbuminInput("4")

	if e.CalciumInput() != "9." {
		t.Fatalf("expected raw text to be kept, got %q", e.CalciumInput())
	}
	r, ok := e.Result()
	if !ok || r.Value != "9.00" {
		t.Fatalf("expected 9.00, got %+v (ok=%v)", r, ok)
	}
}

func TestEngine_CalciumRangeBoundaries(t *testing.T) {
	tests := []struct {
		unit    Unit
		input   string
		warning bool
	}{
		{MgDl, "5", false},
		{MgDl, "15", false},
		{MgDl, "4.99", true},
		{MgDl, "15.01", true},
		{MmolL, "1.25", false},
		{MmolL, "3.75", false},
		{MmolL, "1.24", true},
		{MmolL, "3.76", true},
		// 5 mg/dL read as mmol/L is far above the mmol/L window.
		{MmolL, "5", true},
	}
	for _, tt := range tests {
		t.Run(tt.unit.String()+"/"+tt.input, func(t *testing.T) {
			e := NewEngine(tt.unit)
			e.SetCalciumInput(tt.input)
			if got := e.CalciumValidation().HasWarning(); got != tt.warning {
				t.Errorf("expected warning=%v, got %v (%q)", tt.warning, got, e.CalciumValidation().Message)
			}
		})
	}
}

func TestEngine_RangeMessagesFollowUnit(t *testing.T) {
	e := NewEngine(MmolL)
	e.SetCalciumInput("1.24")
	want := "Calcium values typically range from 1.25-3.75 mmol/L. Please verify your input."
	if got := e.CalciumValidation().Message; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	e = NewEngine(MgDl)
	e.SetCalciumInput("16")
	want = "Calcium values typically range from 5-15 mg/dL. Please verify your input."
	if got := e.CalciumValidation().Message; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEngine_AlbuminRangeBoundaries(t *testing.T) {
	tests := []struct {
		input   string
		warning bool
	}{
		{"1", false},
		{"7", false},
		{"0.99", true},
		{"7.01", true},
		{"", false},
		{"x", true},
	}
	for _, tt := range tests {
		e := NewEngine(MgDl)
		e.SetAlbuminInput(tt.input)
		if got := e.AlbuminValidation().HasWarning(); got != tt.warning {
			t.Errorf("albumin %q: expected warning=%v, got %v", tt.input, tt.warning, got)
		}
	}
}

func TestEngine_OutOfRangeStillComputes(t *testing.T) {
	e := NewEngine(MgDl)
	e.SetCalciumInput("20")
	e.SetAlbuminInput("8")

	if !e.CalciumValidation().HasWarning() || !e.AlbuminValidation().HasWarning() {
		t.Fatalf("expected both fields to warn")
	}
	r, ok := e.Result()
	if !ok || r.Value != "16.80" {
		t.Fatalf("expected 16.80, got %+v (ok=%v)", r, ok)
	}
}

func TestEngine_MmolResult(t *testing.T) {
	e := NewEngine(MmolL)
	e.SetCalciumInput("2.25")
	e.SetAlbuminInput("2.0")

	// 2.25 mmol/L = 9 mg/dL, corrected 10.6 mg/dL = 2.65 mmol/L.
	r, ok := e.Result()
	if !ok {
		t.Fatalf("expected a result")
	}
	if r.Value != "2.65" || r.Unit != MmolL {
		t.Fatalf("expected 2.65 mmol/L, got %s %s", r.Value, r.Unit)
	}
}

func TestEngine_RoundsHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		name    string
		unit    Unit
		calcium string
		albumin string
		want    string
	}{
		// 9.005 * 100 is 900.4999... as a float64; exact decimal math keeps the half.
		{"mg/dL half", MgDl, "9.005", "4", "9.01"},
		{"mg/dL half via correction", MgDl, "9.001", "3.995", "9.01"},
		{"mg/dL below half", MgDl, "9.0049", "4", "9.00"},
		{"mmol/L half", MmolL, "1.125", "4", "1.13"},
		{"mmol/L small correction", MmolL, "2.5", "3.99", "2.50"},
		{"negative half", MgDl, "-0.005", "4", "-0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.unit)
			e.SetCalciumInput(tt.calcium)
			e.SetAlbuminInput(tt.albumin)
			r, ok := e.Result()
			if !ok {
				t.Fatalf("expected a result")
			}
			if r.Value != tt.want {
				t.Errorf("got %s, want %s", r.Value, tt.want)
			}
		})
	}
}

func TestEngine_SetUnitConvertsNumericInput(t *testing.T) {
	e := NewEngine(MgDl)
	e.SetCalciumInput("9.5")
	e.SetAlbuminInput("4")

	e.SetUnit(MmolL)
	if e.CalciumInput() != "2.38" {
		t.Fatalf("expected 2.38, got %q", e.CalciumInput())
	}
	if e.Unit() != MmolL {
		t.Fatalf("unit not switched")
	}
	r, _ := e.Result()
	if r.Value != "2.38" || r.Unit != MmolL {
		t.Fatalf("result not recomputed in mmol/L: %+v", r)
	}

	e.SetUnit(MgDl)
	if e.CalciumInput() != "9.52" {
		t.Fatalf("expected 9.52, got %q", e.CalciumInput())
	}
}

func TestEngine_UnitRoundTrip(t *testing.T) {
	for _, in := range []string{"9.00", "10.00", "8.40", "12.20", "5.00"} {
		e := NewEngine(MgDl)
		e.SetCalciumInput(in)
		e.SetUnit(MmolL)
		e.SetUnit(MgDl)

		orig, _ := Parse(in).Value()
		got, ok := Parse(e.CalciumInput()).Value()
		if !ok {
			t.Fatalf("%s: round trip produced non-numeric %q", in, e.CalciumInput())
		}
		if diff := got - orig; diff > 0.01 || diff < -0.01 {
			t.Errorf("%s: round trip drifted to %s", in, e.CalciumInput())
		}
	}
}

func TestEngine_SetUnitLeavesNonNumericText(t *testing.T) {
	for _, in := range []string{"", "abc"} {
		e := NewEngine(MgDl)
		e.SetCalciumInput(in)
		e.SetUnit(MmolL)
		if e.CalciumInput() != in {
			t.Errorf("expected %q to be kept, got %q", in, e.CalciumInput())
		}
		if e.Unit() != MmolL {
			t.Errorf("unit flag should still switch")
		}
	}
}

func TestEngine_SetSameUnitKeepsText(t *testing.T) {
	e := NewEngine(MgDl)
	e.SetCalciumInput("9.5")
	e.SetUnit(MgDl)
	if e.CalciumInput() != "9.5" {
		t.Errorf("text should not be re-rendered, got %q", e.CalciumInput())
	}
}

func TestEngine_SetUnitRevalidates(t *testing.T) {
	e := NewEngine(MgDl)
	e.SetCalciumInput("4.9")
	if !e.CalciumValidation().HasWarning() {
		t.Fatalf("4.9 mg/dL should warn")
	}
	// 4.9 mg/dL -> 1.23 mmol/L, still below 1.25.
	e.SetUnit(MmolL)
	if e.CalciumInput() != "1.23" || !e.CalciumValidation().HasWarning() {
		t.Fatalf("expected 1.23 mmol/L with warning, got %q %+v", e.CalciumInput(), e.CalciumValidation())
	}
}

func TestEngine_Reset(t *testing.T) {
	e := NewEngine(MgDl)
	e.SetUnit(MmolL)
	e.SetCalciumInput("abc")
	e.SetAlbuminInput("9")

	e.Reset()

	if e.CalciumInput() != "" || e.AlbuminInput() != "" {
		t.Errorf("inputs not cleared")
	}
	if e.CalciumValidation().HasWarning() || e.AlbuminValidation().HasWarning() {
		t.Errorf("validations not cleared")
	}
	if _, ok := e.Result(); ok {
		t.Errorf("result not cleared")
	}
	if e.Unit() != MmolL {
		t.Errorf("unit must survive reset, got %s", e.Unit())
	}
}

func TestEngine_ZeroValue(t *testing.T) {
	var e Engine
	if e.Unit() != MgDl {
		t.Fatalf("zero engine should be mg/dL")
	}
	e.SetCalciumInput("9")
	e.SetAlbuminInput("4")
	if r, ok := e.Result(); !ok || r.Value != "9.00" {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestEngine_StateIsACopy(t *testing.T) {
	e := NewEngine(MgDl)
	e.SetCalciumInput("9")
	e.SetAlbuminInput("4")

	s := e.State()
	s.Result.Value = "tampered"
	if r, _ := e.Result(); r.Value != "9.00" {
		t.Fatalf("State leaked internal result: %s", r.Value)
	}
}
