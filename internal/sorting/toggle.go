package sorting

import "headerzoom/internal/hierarchy"

type Direction string

const (
	None Direction = ""
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// State is the single active sort, if any.
type State struct {
	Facet     string    `json:"facet"`
	Direction Direction `json:"direction"`
	NodeID    string    `json:"nodeId"`
}

func (s State) Active() bool { return s.Direction != None }

// Event announces a sort intent to whoever owns the records.
type Event struct {
	NodeID    string
	Facet     string
	Value     string
	Level     int
	Direction Direction
}

type Listener func(Event)

// Toggle tracks one tri-state sort indicator across all headers.
type Toggle struct {
	state    State
	listener Listener
}

func NewToggle(l Listener) *Toggle {
	return &Toggle{listener: l}
}

func (t *Toggle) SetListener(l Listener) { t.listener = l }

func (t *Toggle) State() State { return t.state }

// Click cycles asc, desc, none on the sorted facet; a click on another
// facet restarts at asc. A nil node is ignored.
func (t *Toggle) Click(n *hierarchy.Node) (Event, bool) {
	if n == nil {
		return Event{}, false
	}
	next := Asc
	if t.state.Active() && t.state.Facet == n.Facet {
		switch t.state.Direction {
		case Asc:
			next = Desc
		case Desc:
			next = None
		}
	}
	if next == None {
		t.state = State{}
	} else {
		t.state = State{Facet: n.Facet, Direction: next, NodeID: n.ID}
	}
	ev := Event{NodeID: n.ID, Facet: n.Facet, Value: n.Label, Level: n.Level, Direction: next}
	if t.listener != nil {
		t.listener(ev)
	}
	return ev, true
}

func (t *Toggle) Clear() { t.state = State{} }
