package tracking

import "time"

// State enumerates the phases of a tracking session.
type State int32

const (
	StateHalt State = iota
	StateTracking
	StateChecking
)

func (s State) String() string {
	switch s {
	case StateHalt:
		return "halt"
	case StateTracking:
		return "tracking"
	case StateChecking:
		return "checking"
	default:
		return "unknown"
	}
}

// StateListener is called on each state transition from the session loop.
type StateListener func(prev, next State)

// Stats is a point-in-time view of the session counters.
type Stats struct {
	ID         string
	State      State
	Started    time.Time
	Faces      int
	Checks     uint64
	Smiles     uint64
	Failures   uint64
	LastSmile  time.Time
	LastResult string
}

// Interface slices for consumers (presenters).
type StateSource interface{ Current() State }
type Lifecycle interface {
	Start()
	Stop()
	Close()
}
type CheckEvents interface {
	CheckStarted()
	CheckFinished(smiling bool, err error)
}
type FaceEvents interface{ FacesSeen(n int) }

// SessionContract aggregate for DI.
type SessionContract interface {
	StateSource
	Lifecycle
	CheckEvents
	FaceEvents
	AddListener(StateListener)
	Stats() Stats
	ID() string
}
