package enums

// GateState is the lifecycle of the manager authorization check.
type GateState string

const (
	GateStateUnchecked    GateState = "unchecked"
	GateStateChecking     GateState = "checking"
	GateStateAuthorized   GateState = "authorized"
	GateStateUnauthorized GateState = "unauthorized"
	GateStateError        GateState = "error"
)

// String implements fmt.Stringer.
func (g GateState) String() string {
	return string(g)
}

// Settled reports whether the gate has reached a decision.
func (g GateState) Settled() bool {
	switch g {
	case GateStateAuthorized, GateStateUnauthorized, GateStateError:
		return true
	default:
		return false
	}
}
