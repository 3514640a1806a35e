package behavior

// State is the behavior tag of an agent. Exactly one state is active; all
// transitions go through Machine.apply or the per-state update logic.
type State int

const (
	StateIdle State = iota
	StatePatrol
	StateAlert
	StateSuspicious
	StateSearch
	StateChase
	StateAttack
	StateCatch
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePatrol:
		return "patrol"
	case StateAlert:
		return "alert"
	case StateSuspicious:
		return "suspicious"
	case StateSearch:
		return "search"
	case StateChase:
		return "chase"
	case StateAttack:
		return "attack"
	case StateCatch:
		return "catch"
	default:
		return "unknown"
	}
}

// event is a machine-external stimulus routed through the transition
// function. Timer- and range-driven transitions happen inside the per-state
// update logic instead.
type event int

const (
	evAlertTriggered event = iota // suspicion crossed the alert threshold
	evChaseTriggered              // suspicion reached the chase threshold
	evSuspicionCleared            // suspicion decayed back to zero
	evPlayerLost                  // visual contact dropped while engaged
	evNoiseHeard                  // hearing filter passed a noise
)

func (e event) String() string {
	switch e {
	case evAlertTriggered:
		return "alert_triggered"
	case evChaseTriggered:
		return "chase_triggered"
	case evSuspicionCleared:
		return "suspicion_cleared"
	case evPlayerLost:
		return "player_lost"
	case evNoiseHeard:
		return "noise_heard"
	default:
		return "unknown"
	}
}
