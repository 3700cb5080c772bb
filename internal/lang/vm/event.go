package vm

// EventKind is the closed set of event types the VM emits.
type EventKind string

const (
	EventLog         EventKind = "LOG"
	EventAction      EventKind = "ACTION"
	EventStateChange EventKind = "STATE_CHANGE"
	EventError       EventKind = "ERROR"
	EventWarning     EventKind = "WARNING"
)

// Event is one entry in the VM's append-only event log.
type Event struct {
	Type      EventKind
	Data      interface{}
	Tick      int
	Timestamp int64
}

// Subscriber receives events as they are emitted.
type Subscriber func(Event)

func (m *VM) emit(kind EventKind, data interface{}) {
	ev := Event{Type: kind, Data: data, Tick: m.instructionCount, Timestamp: m.clock()}
	m.eventLog = append(m.eventLog, ev)
	for _, sub := range m.subscribers[kind] {
		sub(ev)
	}
	for _, sub := range m.subscribers[anyEventKind] {
		sub(ev)
	}
}

// anyEventKind is the sentinel subscription key for subscribers that want
// every event regardless of kind.
const anyEventKind EventKind = ""

// Subscribe registers fn to be called whenever an event of kind is
// emitted. Passing the zero EventKind subscribes to all kinds.
func (m *VM) Subscribe(kind EventKind, fn Subscriber) {
	m.subscribers[kind] = append(m.subscribers[kind], fn)
}
