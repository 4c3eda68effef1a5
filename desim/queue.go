package desim

import (
	"container/heap"
	"fmt"
	"math"
	"sort"
	"strings"
)

// eventQueue is a simulation's min-heap of pending events, ordered by each
// event's order key (event_time, receiver class_priority, receiver
// tiebreaker, insertion sequence). It implements heap.Interface following
// the teacher's own EventQueue (sim/simulator.go), which wraps
// container/heap the same way; the comparator here additionally threads the
// receiver's class priority and tiebreaker through the order key instead of
// comparing bare timestamps, per spec.md §4.3.
type eventQueue struct {
	heap         []*Event
	nextSeq      uint64
	descriptorOf func(objectName string) *ClassDescriptor
}

func newEventQueue(descriptorOf func(string) *ClassDescriptor) *eventQueue {
	return &eventQueue{descriptorOf: descriptorOf}
}

// heap.Interface implementation -- do not call these directly, use schedule/nextBatch.
func (q *eventQueue) Len() int { return len(q.heap) }
func (q *eventQueue) Less(i, j int) bool {
	return q.heap[i].orderKey().less(q.heap[j].orderKey())
}
func (q *eventQueue) Swap(i, j int) { q.heap[i], q.heap[j] = q.heap[j], q.heap[i] }
func (q *eventQueue) Push(x any)    { q.heap = append(q.heap, x.(*Event)) }
func (q *eventQueue) Pop() any {
	old := q.heap
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.heap = old[:n-1]
	return item
}

// reset empties the queue.
func (q *eventQueue) reset() {
	q.heap = nil
}

// len is the number of pending events.
func (q *eventQueue) len() int { return len(q.heap) }

func (q *eventQueue) isEmpty() bool { return len(q.heap) == 0 }

// schedule validates and pushes a new Event. Cost is O(log n).
func (q *eventQueue) schedule(sendTime, eventTime float64, senderName, receiverName, receiverTiebreaker string, receiverDesc *ClassDescriptor, message Message) error {
	if math.IsNaN(sendTime) || math.IsNaN(eventTime) {
		return newSimError(ErrKindNaNTime, "send_time (%v) and/or event_time (%v) is NaN", sendTime, eventTime)
	}
	if eventTime < sendTime {
		return newSimError(ErrKindInvalidTime, "event_time (%v) < send_time (%v) in schedule", eventTime, sendTime)
	}
	if message == nil {
		return newSimError(ErrKindBadMessage, "message must not be nil")
	}
	ev := &Event{
		sendTime:      sendTime,
		eventTime:     eventTime,
		senderName:    senderName,
		receiverName:  receiverName,
		message:       message,
		classPriority: receiverDesc.classPriority,
		tiebreaker:    receiverTiebreaker,
		insertionSeq:  q.nextSeq,
	}
	q.nextSeq++
	heap.Push(q, ev)
	return nil
}

// peekTime returns the event_time of the minimum order key, or +Inf if empty.
func (q *eventQueue) peekTime() float64 {
	if len(q.heap) == 0 {
		return math.Inf(1)
	}
	return q.heap[0].eventTime
}

// peekReceiver returns the receiver name of the root event, or "" if empty.
func (q *eventQueue) peekReceiver() (string, bool) {
	if len(q.heap) == 0 {
		return "", false
	}
	return q.heap[0].receiverName, true
}

// nextBatch pops and returns every event destined for the same (receiver,
// event_time) as the current root — i.e. every event simultaneously
// delivered to one object. When the batch has more than one event, it is
// then sorted by (handler priority, message content). Cost is O(m log n).
func (q *eventQueue) nextBatch() []*Event {
	if len(q.heap) == 0 {
		return nil
	}
	first := heap.Pop(q).(*Event)
	batch := []*Event{first}
	for len(q.heap) > 0 && q.heap[0].eventTime == first.eventTime && q.heap[0].receiverName == first.receiverName {
		batch = append(batch, heap.Pop(q).(*Event))
	}
	if len(batch) > 1 {
		sortBatchByPriority(batch, q.descriptorOf(first.receiverName))
	}
	return batch
}

// render returns a human-readable table of the queue's contents, sorted by
// order key. If filterReceiver is non-empty, only events destined for that
// receiver are included.
func (q *eventQueue) render(filterReceiver string) string {
	events := make([]*Event, 0, len(q.heap))
	for _, e := range q.heap {
		if filterReceiver == "" || e.receiverName == filterReceiver {
			events = append(events, e)
		}
	}
	if len(events) == 0 {
		return ""
	}
	sort.Slice(events, func(i, j int) bool { return events[i].orderKey().less(events[j].orderKey()) })

	messageTypes := map[string]struct{}{}
	for _, e := range events {
		messageTypes[e.message.MessageType()] = struct{}{}
	}

	var rows []string
	if len(messageTypes) > 1 {
		rows = append(rows, strings.Join(append(append([]string(nil), eventHeader...), "Message fields..."), "\t"))
		for _, e := range events {
			rows = append(rows, strings.Join(e.Render(false), "\t"))
		}
	} else {
		header := append([]string(nil), eventHeader...)
		if names, ok := events[0].message.(interface{ FieldNames() []string }); ok {
			header = append(header, names.FieldNames()...)
		}
		rows = append(rows, strings.Join(header, "\t"))
		for _, e := range events {
			rows = append(rows, strings.Join(e.Render(false), "\t"))
		}
	}
	return strings.Join(rows, "\n")
}

func (q *eventQueue) String() string {
	return fmt.Sprintf("eventQueue(len=%d)", q.len())
}
