package medoids

import "fmt"

// Phase is the progression tag of a State. It advances
// Initializing → Building → Swapping and never regresses.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseBuilding
	PhaseSwapping
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "Initializing"
	case PhaseBuilding:
		return "Building"
	case PhaseSwapping:
		return "Swapping"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}
