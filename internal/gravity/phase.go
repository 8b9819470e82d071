package gravity

import "fmt"

// Phase is the drop-tower state.
type Phase int

const (
	Loaded Phase = iota
	FreeFall
)

func (p Phase) String() string {
	switch p {
	case Loaded:
		return "loaded"
	case FreeFall:
		return "free_fall"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Advance returns the phase after checking the release time. Once in
// FreeFall the phase never changes. The second value reports the transition.
func (p Phase) Advance(t, startTime float64) (Phase, bool) {
	if p == Loaded && t >= startTime {
		return FreeFall, true
	}
	return p, false
}
