package cityfill

// EventKind identifies a request to the map.
type EventKind int

const (
	EventDrawCircle   EventKind = iota + 1 // draw a guess circle
	EventDrawPoint                         // draw a revealed city marker, labelled when Label is set
	EventLabelPoint                        // attach a persistent label to an existing marker
	EventPanTo                             // pan to Center at Zoom or closer
	EventClearCircles                      // remove every circle
	EventClearPoints                       // remove every marker
)

func (k EventKind) String() string {
	switch k {
	case EventDrawCircle:
		return "draw-circle"
	case EventDrawPoint:
		return "draw-point"
	case EventLabelPoint:
		return "label-point"
	case EventPanTo:
		return "pan-to"
	case EventClearCircles:
		return "clear-circles"
	case EventClearPoints:
		return "clear-points"
	default:
		return "unknown"
	}
}

// Event is one drawing request produced by a session operation. Sessions
// never draw; callers replay events on whatever map they have.
type Event struct {
	Kind         EventKind
	Center       Point
	RadiusMeters float64 // EventDrawCircle
	Key          string  // city key for EventDrawPoint and EventLabelPoint
	Label        string  // persistent label, empty for unlabelled markers
	Zoom         int     // EventPanTo
}

// panZoom is the minimum zoom used when panning to a guessed city.
const panZoom = 6
