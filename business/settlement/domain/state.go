// Package domain contains the settlement state machine and the transparency
// report derived from a quote.
package domain

// State is a settlement attempt state.
type State string

const (
	StateIdle              State = "idle"
	StatePriceFetched      State = "price_fetched"
	StateAllowanceVerified State = "allowance_verified"
	StateQuoted            State = "quoted"
	StateSigned            State = "signed"
	StateNoSignatureNeeded State = "no_signature_needed"
	StateExecuted          State = "executed"
	StateFailed            State = "failed"
)

var transitions = map[State][]State{
	StateIdle:              {StatePriceFetched},
	StatePriceFetched:      {StateAllowanceVerified},
	StateAllowanceVerified: {StateQuoted},
	StateQuoted:            {StateSigned, StateNoSignatureNeeded},
	StateSigned:            {StateExecuted},
	StateNoSignatureNeeded: {StateExecuted},
}

// IsTerminal reports whether no transition leaves s.
func (s State) IsTerminal() bool {
	return s == StateExecuted || s == StateFailed
}

// CanTransition reports whether from may move to to. Failed is reachable
// from every non-terminal state.
func CanTransition(from, to State) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s State) String() string {
	return string(s)
}

// Stage names the step a failure happened in.
type Stage string

const (
	StageValidate  Stage = "validate"
	StagePrice     Stage = "price"
	StageAllowance Stage = "allowance"
	StageQuote     Stage = "quote"
	StageSign      Stage = "sign"
	StageExecute   Stage = "execute"
)

func (s Stage) String() string {
	return string(s)
}
