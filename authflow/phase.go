package authflow

// Phase is the position of the current attempt in the handshake.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseAwaitingCallback
	PhaseValidated
	PhaseExchanging
	PhaseFetchingIdentity
	PhaseDone
	PhaseRejected
)

var phaseNames = map[Phase]string{
	PhaseIdle:             "idle",
	PhaseAwaitingCallback: "awaiting_callback",
	PhaseValidated:        "validated",
	PhaseExchanging:       "exchanging",
	PhaseFetchingIdentity: "fetching_identity",
	PhaseDone:             "done",
	PhaseRejected:         "rejected",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}
