package calcium

// Inputs are the raw values an Engine holds. Text is stored verbatim.
type Inputs struct {
	Calcium string `json:"calcium"`
	Albumin string `json:"albumin"`
	Unit    Unit   `json:"unit"`
}

// State is everything derived from Inputs, together with the Inputs themselves.
type State struct {
	Inputs
	CalciumValidation Validation `json:"calciumValidation"`
	AlbuminValidation Validation `json:"albuminValidation"`
	// Result is nil until both inputs are numeric.
	Result *Result `json:"result,omitempty"`
}

// Derive computes the full State of in. It never fails: malformed input only
// shows up as a warning and a missing result.
func Derive(in Inputs) State {
	ca := Parse(in.Calcium)
	alb := Parse(in.Albumin)

	s := State{
		Inputs:            in,
		CalciumValidation: ValidateCalcium(ca, in.Unit),
		AlbuminValidation: ValidateAlbumin(alb),
	}

	caValue, caOK := ca.Value()
	albValue, albOK := alb.Value()
	if caOK && albOK {
		r := Correct(caValue, albValue, in.Unit)
		s.Result = &r
	}

	return s
}

// Engine keeps two raw inputs and the calcium unit, and re-derives its State
// after every mutation. The zero value is an empty engine in mg/dL.
type Engine struct {
	state State
}

// NewEngine returns an empty engine using u for calcium.
func NewEngine(u Unit) *Engine {
	e := &Engine{}
	e.apply(Inputs{Unit: u})
	return e
}

func (e *Engine) apply(in Inputs) {
	e.state = Derive(in)
}

func (e *Engine) SetCalciumInput(text string) {
	in := e.state.Inputs
	in.Calcium = text
	e.apply(in)
}

func (e *Engine) SetAlbuminInput(text string) {
	in := e.state.Inputs
	in.Albumin = text
	e.apply(in)
}

// SetUnit switches the calcium unit. A numeric calcium input is re-expressed
// in the new unit with two decimals; empty or invalid text is left untouched.
func (e *Engine) SetUnit(u Unit) {
	in := e.state.Inputs
	if u == in.Unit {
		return
	}
	if v, ok := Parse(in.Calcium).Value(); ok {
		in.Calcium = Convert(v, in.Unit, u)
	}
	in.Unit = u
	e.apply(in)
}

// Reset clears both inputs, their warnings and the result. The unit is kept.
func (e *Engine) Reset() {
	e.apply(Inputs{Unit: e.state.Unit})
}

func (e *Engine) Result() (Result, bool) {
	if e.state.Result == nil {
		return Result{}, false
	}
	return *e.state.Result, true
}

func (e *Engine) CalciumValidation() Validation { return e.state.CalciumValidation }
func (e *Engine) AlbuminValidation() Validation { return e.state.AlbuminValidation }
func (e *Engine) Unit() Unit                    { return e.state.Unit }
func (e *Engine) CalciumInput() string          { return e.state.Calcium }
func (e *Engine) AlbuminInput() string          { return e.state.Albumin }

// State returns a copy of the current derived state.
func (e *Engine) State() State {
	s := e.state
	if s.Result != nil {
		r := *s.Result
		s.Result = &r
	}
	return s
}
