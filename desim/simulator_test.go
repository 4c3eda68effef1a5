package desim

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSimulator() *Simulator {
	return NewSimulator(discardWriter{}, logrus.ErrorLevel)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// --- Scenario 1: self-ticking object -----------------------------------

type tickMsg struct{}

func (tickMsg) MessageType() string { return "Tick" }

type tickerObject struct {
	BaseObject
	ticks int
}

var tickerDescriptor = Register[*tickerObject](
	"tickerObject",
	[]HandlerEntry{{MessageType: "Tick", Handler: handleTick}},
	[]string{"Tick"},
	0,
)

func newTickerObject(name string) *tickerObject {
	return &tickerObject{BaseObject: NewBaseObject(name, tickerDescriptor, "", 0)}
}

func (t *tickerObject) InitBeforeRun() {
	_ = SendEvent(t, 0, t, tickMsg{}, false)
}

func handleTick(receiver Object, _ Message) error {
	t := receiver.(*tickerObject)
	t.ticks++
	return SendEvent(t, 1, t, tickMsg{}, false)
}

func TestSelfTickingObject_SixDispatchesAtMaxTimeFive(t *testing.T) {
	sim := newTestSimulator()
	obj := newTickerObject("ticker")
	require.NoError(t, sim.AddObject(obj))
	require.NoError(t, sim.Initialize())

	n, err := sim.Simulate(Config{MaxTime: 5.0})
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, 6, obj.ticks)
	assert.Equal(t, 5.0, sim.Time())
}

func TestSimulate_ChecksAndSavesCheckpointsUnderOutputDir(t *testing.T) {
	dir := t.TempDir()
	sim := newTestSimulator()
	obj := newTickerObject("ticker")
	require.NoError(t, sim.AddObject(obj))
	require.NoError(t, sim.Initialize())

	n, err := sim.Simulate(Config{MaxTime: 5.0, OutputDir: dir, CheckpointInterval: 2})
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	cp := &FileCheckpointer{Dir: dir + "/checkpoints"}
	times, err := cp.List()
	require.NoError(t, err)
	// one at loop start (t=0), one every 2 batches (t=1,3,5 after dispatch
	// counts 2,4,6), and one at loop end (t=5, overwriting the interval one).
	assert.Contains(t, times, 0.0)
	assert.Contains(t, times, 5.0)
	assert.GreaterOrEqual(t, len(times), 3)

	state, rng, err := cp.Load(5.0)
	require.NoError(t, err)
	stateMap := state.(map[string]any)
	assert.Contains(t, stateMap, "ticker")
	assert.Nil(t, rng)
}

// --- Scenario 2: cyclical ring -------------------------------------------

type ringInitMsg struct{}

func (ringInitMsg) MessageType() string { return "RingInit" }

type ringObject struct {
	BaseObject
	index   int
	ring    []*ringObject
	hits    []float64
}

var ringDescriptor = Register[*ringObject](
	"ringObject",
	[]HandlerEntry{{MessageType: "RingInit", Handler: handleRingInit}},
	[]string{"RingInit"},
	0,
)

func handleRingInit(receiver Object, _ Message) error {
	r := receiver.(*ringObject)
	r.hits = append(r.hits, r.Time())
	next := r.ring[(r.index+1)%len(r.ring)]
	return SendEvent(r, 1, next, ringInitMsg{}, false)
}

func TestCyclicalRing_TwentyDispatchesOverFourObjects(t *testing.T) {
	sim := newTestSimulator()
	const n = 4
	ring := make([]*ringObject, n)
	for i := 0; i < n; i++ {
		ring[i] = &ringObject{BaseObject: NewBaseObject(ringObjectName(i), ringDescriptor, "", 0), index: i, ring: ring}
		require.NoError(t, sim.AddObject(ring[i]))
	}
	require.NoError(t, sim.AddObject(&initiator{BaseObject: NewBaseObject("initiator", initiatorDescriptor, "", 0), first: ring[0]}))

	require.NoError(t, sim.Initialize())
	dispatched, err := sim.Simulate(Config{MaxTime: 20})
	require.NoError(t, err)
	assert.Equal(t, 20, dispatched) // the initiator itself is never dispatched to, only the 4 ring objects are

	for k := 0; k < n; k++ {
		for i, hitTime := range ring[k].hits {
			expected := float64(k + 1 + n*i)
			assert.Equal(t, expected, hitTime)
		}
	}
}

func ringObjectName(i int) string { return string(rune('0' + i)) }

// initiator kicks off the ring with a single event to ring[0] at time 1.
type initiator struct {
	BaseObject
	first *ringObject
}

var initiatorDescriptor = Register[*initiator](
	"initiator",
	nil,
	[]string{"RingInit"},
	0,
)

func (i *initiator) InitBeforeRun() {
	_ = SendEvent(i, 1, i.first, ringInitMsg{}, false)
}

// --- Scenario 3: simultaneous mixed messages -----------------------------

type incrementMsg struct{}

func (incrementMsg) MessageType() string { return "Increment" }

type doubleMsg struct{}

func (doubleMsg) MessageType() string { return "Double" }

type counterObject struct {
	BaseObject
	value int
	round int
	limit float64
}

var counterDescriptor = Register[*counterObject](
	"counterObject",
	[]HandlerEntry{
		{MessageType: "Increment", Handler: handleIncrement},
		{MessageType: "Double", Handler: handleDouble},
	},
	[]string{"Increment", "Double"},
	0,
)

func (c *counterObject) InitBeforeRun() {
	_ = SendEvent(c, 1, c, incrementMsg{}, false)
	_ = SendEvent(c, 1, c, doubleMsg{}, false)
}

func handleIncrement(receiver Object, _ Message) error {
	c := receiver.(*counterObject)
	c.value++
	return nil
}

func handleDouble(receiver Object, _ Message) error {
	c := receiver.(*counterObject)
	c.value *= 2
	if c.Time() < c.limit {
		_ = SendEvent(c, 1, c, incrementMsg{}, false)
		_ = SendEvent(c, 1, c, doubleMsg{}, false)
	}
	return nil
}

func TestSimultaneousMixedMessages_HandlerPriorityOrdersBatch(t *testing.T) {
	sim := newTestSimulator()
	counter := &counterObject{BaseObject: NewBaseObject("counter", counterDescriptor, "", 0), limit: 5}
	require.NoError(t, sim.AddObject(counter))
	require.NoError(t, sim.Initialize())

	_, err := sim.Simulate(Config{MaxTime: 5})
	require.NoError(t, err)
	assert.Equal(t, 62, counter.value)
}

// --- Scenario 4: tiebreak by class priority ------------------------------

type markMsg struct{}

func (markMsg) MessageType() string { return "Mark" }

type recorderObject struct {
	BaseObject
	log *[]string
}

func handleMark(receiver Object, _ Message) error {
	r := receiver.(*recorderObject)
	*r.log = append(*r.log, r.Name())
	return nil
}

var highPriorityDescriptor = Register[*recorderObject](
	"highPriorityRecorder",
	[]HandlerEntry{{MessageType: "Mark", Handler: handleMark}},
	[]string{"Mark"},
	int(ClassPriorityHigh),
)

var lowPriorityDescriptor = Register[*recorderObject](
	"lowPriorityRecorder",
	[]HandlerEntry{{MessageType: "Mark", Handler: handleMark}},
	[]string{"Mark"},
	int(ClassPriorityLow),
)

func TestTiebreakByClassPriority_HighDispatchesBeforeLow(t *testing.T) {
	sim := newTestSimulator()
	var log []string
	a := &recorderObject{BaseObject: NewBaseObject("A", highPriorityDescriptor, "", 0), log: &log}
	b := &recorderObject{BaseObject: NewBaseObject("B", lowPriorityDescriptor, "", 0), log: &log}
	require.NoError(t, sim.AddObjects(a, b))
	require.NoError(t, sim.Initialize())
	require.NoError(t, sim.eventQueue.schedule(0, 5, "ext", "A", a.Tiebreaker(), a.Descriptor(), markMsg{}))
	require.NoError(t, sim.eventQueue.schedule(0, 5, "ext", "B", b.Tiebreaker(), b.Descriptor(), markMsg{}))

	_, err := sim.Simulate(Config{MaxTime: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, log)
}

// --- Scenario 5: tiebreak by tiebreaker string ---------------------------

var sameClassDescriptor = Register[*recorderObject](
	"sameClassRecorder",
	[]HandlerEntry{{MessageType: "Mark", Handler: handleMark}},
	[]string{"Mark"},
	0,
)

func TestTiebreakByTiebreakerString_AlphaDispatchesBeforeBeta(t *testing.T) {
	sim := newTestSimulator()
	var log []string
	alpha := &recorderObject{BaseObject: NewBaseObject("alpha", sameClassDescriptor, "", 0), log: &log}
	beta := &recorderObject{BaseObject: NewBaseObject("beta", sameClassDescriptor, "", 0), log: &log}
	require.NoError(t, sim.AddObjects(alpha, beta))
	require.NoError(t, sim.Initialize())
	require.NoError(t, sim.eventQueue.schedule(0, 5, "ext", "beta", beta.Tiebreaker(), beta.Descriptor(), markMsg{}))
	require.NoError(t, sim.eventQueue.schedule(0, 5, "ext", "alpha", alpha.Tiebreaker(), alpha.Descriptor(), markMsg{}))

	_, err := sim.Simulate(Config{MaxTime: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, log)
}

// --- Scenario 6/7: rejected sends -----------------------------------------

func TestRetroactiveSend_Rejected(t *testing.T) {
	sim := newTestSimulator()
	a := &recorderObject{BaseObject: NewBaseObject("A", sameClassDescriptor, "", 3.0), log: &[]string{}}
	b := &recorderObject{BaseObject: NewBaseObject("B", sameClassDescriptor, "", 0), log: &[]string{}}
	require.NoError(t, sim.AddObjects(a, b))

	err := SendEventAbsolute(a, 2.5, b, markMsg{}, false)
	require.Error(t, err)
	var simErr *SimError
	require.ErrorAs(t, err, &simErr)
	assert.Equal(t, ErrKindRetroactiveSend, simErr.Kind)
	assert.True(t, sim.eventQueue.isEmpty())
}

func TestNaNTime_Rejected(t *testing.T) {
	sim := newTestSimulator()
	a := &recorderObject{BaseObject: NewBaseObject("A", sameClassDescriptor, "", 0), log: &[]string{}}
	require.NoError(t, sim.AddObject(a))

	err := SendEvent(a, math.NaN(), a, markMsg{}, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNaNTime)

	err = sim.eventQueue.schedule(math.NaN(), 1, "A", "A", "A", a.Descriptor(), markMsg{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNaNTime)
}

// --- Scenario 8: stop condition -------------------------------------------

func TestStopCondition_TerminatesBeforeNextDispatch(t *testing.T) {
	sim := newTestSimulator()
	obj := newTickerObject("ticker")
	require.NoError(t, sim.AddObject(obj))
	require.NoError(t, sim.Initialize())

	n, err := sim.Simulate(Config{MaxTime: 100, StopCondition: func(time float64) bool { return time >= 3 }})
	require.NoError(t, err)
	assert.Equal(t, 4, n) // dispatches at 0, 1, 2, 3, then stop_condition(3) halts the loop
}
