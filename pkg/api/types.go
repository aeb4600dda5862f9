package api

import (
	"time"

	"github.com/charlie0129/corrcal/pkg/calcium"
)

// State is a calcium.State as served over HTTP. Interpretation is empty
// while there is no result.
type State struct {
	calcium.State
	Interpretation calcium.Interpretation `json:"interpretation,omitempty"`
}

func NewState(s calcium.State) State {
	st := State{State: s}
	if s.Result != nil {
		// Results produced by the engine always parse.
		st.Interpretation, _ = calcium.Interpret(*s.Result)
	}
	return st
}

type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	State     State     `json:"state"`
}

// CalculateRequest is a one-shot calculation that does not touch any
// session. A nil Unit means the daemon's default unit.
type CalculateRequest struct {
	Calcium string        `json:"calcium"`
	Albumin string        `json:"albumin"`
	Unit    *calcium.Unit `json:"unit,omitempty"`
}

type CreateSessionRequest struct {
	Unit *calcium.Unit `json:"unit,omitempty"`
}
