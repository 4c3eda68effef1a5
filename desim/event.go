package desim

import (
	"fmt"
	"strconv"
	"strings"
)

// Event is an immutable scheduled delivery of one Message from a sender to a
// receiver at a specified future simulation time. Events are created by
// SendEvent/SendEventAbsolute and destroyed on dispatch; nothing ever
// mutates an Event after construction.
//
// Ordering between events uses only the order key (eventTime, classPriority,
// tiebreaker, insertionSeq) — never the message payload — so that the event
// queue's peek operation never needs to inspect a message's content.
type Event struct {
	sendTime     float64
	eventTime    float64
	senderName   string
	receiverName string
	message      Message

	// classPriority and tiebreaker are captured from the receiver at
	// schedule time so the heap comparator never dereferences the object map.
	classPriority int
	tiebreaker    string

	// insertionSeq disambiguates two events that share every component of
	// the order key (event_time, classPriority, tiebreaker) — which, by I1
	// (no two objects share a name), can only happen for events destined to
	// the very same receiver at the very same instant. It preserves FIFO
	// scheduling order within that receiver, per the design notes.
	insertionSeq uint64
}

// SendTime is the simulation time at which the event was created (scheduled).
func (e *Event) SendTime() float64 { return e.sendTime }

// EventTime is the simulation time at which the event is delivered.
func (e *Event) EventTime() float64 { return e.eventTime }

// SenderName is the name of the simulation object that sent the event.
func (e *Event) SenderName() string { return e.senderName }

// ReceiverName is the name of the simulation object that will receive the event.
func (e *Event) ReceiverName() string { return e.receiverName }

// Message is the payload carried by the event.
func (e *Event) Message() Message { return e.message }

// orderKey is what this event is sorted on: (event_time,
// receiver.class_priority, receiver.tiebreaker), then insertionSeq. Two events
// share the first three components iff they share event_time, receiver class
// priority, and receiver tiebreaker, which by I1 can only occur when they
// share a receiver; insertionSeq then orders them by scheduling order.
type orderKey struct {
	eventTime     float64
	classPriority int
	tiebreaker    string
	insertionSeq  uint64
}

func (e *Event) orderKey() orderKey {
	return orderKey{e.eventTime, e.classPriority, e.tiebreaker, e.insertionSeq}
}

// less compares two order keys: event_time, then class_priority (smaller
// value = higher priority, so it sorts first), then tiebreaker string order,
// then insertion sequence as a final, same-receiver-only disambiguator.
func (k orderKey) less(o orderKey) bool {
	if k.eventTime != o.eventTime {
		return k.eventTime < o.eventTime
	}
	if k.classPriority != o.classPriority {
		return k.classPriority < o.classPriority
	}
	if k.tiebreaker != o.tiebreaker {
		return k.tiebreaker < o.tiebreaker
	}
	return k.insertionSeq < o.insertionSeq
}

// eventHeader names the fixed (non-message) columns of a rendered Event row.
var eventHeader = []string{"t(send)", "t(event)", "Sender", "Receiver", "Event type"}

// Render formats the event as a row for human inspection. When round is
// true, times are rounded to 3 decimal places, matching the teacher/original
// convention of truncating simulation-time noise in debug output.
func (e *Event) Render(round bool) []string {
	sendTime, eventTime := e.sendTime, e.eventTime
	fmtTime := func(t float64) string {
		if round {
			return strconv.FormatFloat(t, 'f', 3, 64)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	row := []string{fmtTime(sendTime), fmtTime(eventTime), e.senderName, e.receiverName, e.message.MessageType()}
	for _, v := range fieldValues(e.message) {
		row = append(row, fmt.Sprintf("%v", v))
	}
	return row
}

func (e *Event) String() string {
	return strings.Join(e.Render(false), "\t")
}
