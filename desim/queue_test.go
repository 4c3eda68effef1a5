package desim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queueTestObj struct{ BaseObject }

var queueTestDescriptor = Register[*queueTestObj](
	"queueTestObj",
	[]HandlerEntry{
		{MessageType: "First", Handler: func(Object, Message) error { return nil }},
		{MessageType: "Second", Handler: func(Object, Message) error { return nil }},
	},
	[]string{"First", "Second"},
	0,
)

type firstMsg struct{ n int }

func (firstMsg) MessageType() string { return "First" }
func (m firstMsg) Fields() []any     { return []any{m.n} }

type secondMsg struct{}

func (secondMsg) MessageType() string { return "Second" }

func newQueueForObj(obj *queueTestObj) *eventQueue {
	return newEventQueue(func(name string) *ClassDescriptor {
		if name == obj.Name() {
			return obj.Descriptor()
		}
		return nil
	})
}

func TestEventQueue_PeekTimeIsInfWhenEmpty(t *testing.T) {
	q := newEventQueue(func(string) *ClassDescriptor { return nil })
	assert.True(t, math.IsInf(q.peekTime(), 1))
	assert.True(t, q.isEmpty())
}

func TestEventQueue_ScheduleRejectsNaN(t *testing.T) {
	obj := &queueTestObj{BaseObject: NewBaseObject("obj", queueTestDescriptor, "", 0)}
	q := newQueueForObj(obj)
	err := q.schedule(math.NaN(), 1, "s", "obj", "obj", obj.Descriptor(), firstMsg{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNaNTime)
}

func TestEventQueue_ScheduleRejectsEventBeforeSend(t *testing.T) {
	obj := &queueTestObj{BaseObject: NewBaseObject("obj", queueTestDescriptor, "", 0)}
	q := newQueueForObj(obj)
	err := q.schedule(5, 2, "s", "obj", "obj", obj.Descriptor(), firstMsg{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestEventQueue_NextBatchGroupsBySameReceiverAndTime(t *testing.T) {
	obj := &queueTestObj{BaseObject: NewBaseObject("obj", queueTestDescriptor, "", 0)}
	q := newQueueForObj(obj)
	require.NoError(t, q.schedule(0, 5, "s", "obj", "obj", obj.Descriptor(), secondMsg{}))
	require.NoError(t, q.schedule(0, 5, "s", "obj", "obj", obj.Descriptor(), firstMsg{n: 1}))
	require.NoError(t, q.schedule(0, 6, "s", "obj", "obj", obj.Descriptor(), firstMsg{n: 2}))

	batch := q.nextBatch()
	require.Len(t, batch, 2)
	// First has handler priority 0, Second has priority 1: First sorts first
	// even though it was scheduled after Second.
	assert.Equal(t, "First", batch[0].Message().MessageType())
	assert.Equal(t, "Second", batch[1].Message().MessageType())

	assert.Equal(t, 1, q.len())
	rest := q.nextBatch()
	require.Len(t, rest, 1)
	assert.Equal(t, 2, rest[0].Message().(firstMsg).n)
}

func TestEventQueue_LenTracksScheduleAndBatchPops(t *testing.T) {
	obj := &queueTestObj{BaseObject: NewBaseObject("obj", queueTestDescriptor, "", 0)}
	q := newQueueForObj(obj)
	require.NoError(t, q.schedule(0, 1, "s", "obj", "obj", obj.Descriptor(), firstMsg{}))
	require.NoError(t, q.schedule(0, 2, "s", "obj", "obj", obj.Descriptor(), secondMsg{}))
	assert.Equal(t, 2, q.len())
	batch := q.nextBatch()
	assert.Equal(t, 1, len(batch))
	assert.Equal(t, 1, q.len())
	q.nextBatch()
	assert.Equal(t, 0, q.len())
	assert.True(t, q.isEmpty())
}

func TestEventQueue_ResetEmptiesHeap(t *testing.T) {
	obj := &queueTestObj{BaseObject: NewBaseObject("obj", queueTestDescriptor, "", 0)}
	q := newQueueForObj(obj)
	require.NoError(t, q.schedule(0, 1, "s", "obj", "obj", obj.Descriptor(), firstMsg{}))
	q.reset()
	assert.True(t, q.isEmpty())
}
