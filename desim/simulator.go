package desim

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// eventCountKey identifies one cell of the event_counts multiset: how many
// times a given (class, object, message class) triple has been dispatched.
type eventCountKey struct {
	className   string
	objectName  string
	messageType string
}

// EventCount is one row of Simulator.ProvideEventCounts' report.
type EventCount struct {
	ClassName   string
	ObjectName  string
	MessageType string
	Count       int
}

// Simulator owns a set of uniquely-named objects and their shared event
// queue, and runs the single-threaded main loop described in spec.md §4.6.
// It is the direct generalization of the teacher's own simulator loop
// (sim/simulator.go), with the inference-specific batch stepping replaced by
// the generic "dispatch one batch to one receiving object" protocol.
type Simulator struct {
	time        float64
	objects     map[string]Object
	eventQueue  *eventQueue
	initialized bool
	eventCounts map[eventCountKey]int

	logger   *fastLogger
	progress ProgressReporter
}

// NewSimulator constructs an empty, uninitialized Simulator. out receives
// log output (typically os.Stderr); level controls the logger's verbosity.
func NewSimulator(out io.Writer, level logrus.Level) *Simulator {
	s := &Simulator{
		objects: make(map[string]Object),
		logger:  newFastLogger(out, level),
	}
	s.eventQueue = newEventQueue(func(name string) *ClassDescriptor {
		obj, ok := s.objects[name]
		if !ok {
			return nil
		}
		return obj.Descriptor()
	})
	return s
}

// AddObject registers obj under its Name(). Fails with DuplicateObjectName
// if the name is taken, or DeleteWhileRunning (I3) if already initialized.
func (s *Simulator) AddObject(obj Object) error {
	if s.initialized {
		return newSimError(ErrKindDeleteWhileRunning, "cannot add object %q: simulator is initialized", obj.Name())
	}
	if _, exists := s.objects[obj.Name()]; exists {
		return newSimError(ErrKindDuplicateObjectName, "an object named %q is already registered", obj.Name())
	}
	obj.attach(s)
	s.objects[obj.Name()] = obj
	return nil
}

// AddObjects registers every object in objs, stopping at the first error.
func (s *Simulator) AddObjects(objs ...Object) error {
	for _, obj := range objs {
		if err := s.AddObject(obj); err != nil {
			return err
		}
	}
	return nil
}

// GetObject returns the object named name, or ok=false if none is registered.
func (s *Simulator) GetObject(name string) (Object, bool) {
	obj, ok := s.objects[name]
	return obj, ok
}

// Objects returns all registered objects sorted by name, matching the
// deterministic iteration order spec.md §3 requires of the Simulator.
func (s *Simulator) Objects() []Object {
	names := make([]string, 0, len(s.objects))
	for n := range s.objects {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Object, len(names))
	for i, n := range names {
		out[i] = s.objects[n]
	}
	return out
}

// DeleteObject removes obj, only permitted while uninitialized (I3).
func (s *Simulator) DeleteObject(obj Object) error {
	if s.initialized {
		return newSimError(ErrKindDeleteWhileRunning, "cannot delete object %q: simulator is initialized", obj.Name())
	}
	if _, exists := s.objects[obj.Name()]; !exists {
		return newSimError(ErrKindUnknownObjectName, "no object named %q is registered", obj.Name())
	}
	obj.detach()
	delete(s.objects, obj.Name())
	return nil
}

// Initialize calls InitBeforeRun on every registered object in name-sorted
// order, clears event_counts, and marks the simulator initialized. Fails
// with AlreadyInitialized if called twice, or NoObjects if empty.
func (s *Simulator) Initialize() error {
	if s.initialized {
		return newSimError(ErrKindAlreadyInitialized, "simulator is already initialized")
	}
	if len(s.objects) == 0 {
		return newSimError(ErrKindNoObjects, "cannot initialize a simulator with no registered objects")
	}
	s.eventCounts = make(map[eventCountKey]int)
	for _, obj := range s.Objects() {
		obj.InitBeforeRun()
	}
	s.initialized = true
	return nil
}

// Reset detaches all objects, empties the queue, and clears time and the
// initialized flag, returning the simulator to its pre-Initialize state.
func (s *Simulator) Reset() {
	for _, obj := range s.objects {
		obj.detach()
	}
	s.objects = make(map[string]Object)
	s.eventQueue.reset()
	s.eventCounts = nil
	s.time = 0
	s.initialized = false
}

// Time returns the simulator's current logical clock value.
func (s *Simulator) Time() float64 { return s.time }

// MessageQueues renders the event queue as a human-readable table, one
// table per object if objectFilter is empty, else only that object's queue.
// Each per-object table is preceded by the object's name; objects with no
// pending events are omitted.
func (s *Simulator) MessageQueues(objectFilter string) string {
	if objectFilter != "" {
		return s.eventQueue.render(objectFilter)
	}
	var tables []string
	for _, obj := range s.Objects() {
		if table := s.eventQueue.render(obj.Name()); table != "" {
			tables = append(tables, obj.Name()+":\n"+table)
		}
	}
	return strings.Join(tables, "\n\n")
}

// snapshotState collects every registered object's GetState() into a
// checkpoint's opaque state payload, keyed by object name.
func (s *Simulator) snapshotState() map[string]any {
	state := make(map[string]any, len(s.objects))
	for name, obj := range s.objects {
		state[name] = obj.GetState()
	}
	return state
}

// ProvideEventCounts returns the event_counts multiset as rows, sorted by
// count descending, then by (class, object, message) for determinism.
func (s *Simulator) ProvideEventCounts() []EventCount {
	rows := make([]EventCount, 0, len(s.eventCounts))
	for k, count := range s.eventCounts {
		rows = append(rows, EventCount{ClassName: k.className, ObjectName: k.objectName, MessageType: k.messageType, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		if rows[i].ClassName != rows[j].ClassName {
			return rows[i].ClassName < rows[j].ClassName
		}
		if rows[i].ObjectName != rows[j].ObjectName {
			return rows[i].ObjectName < rows[j].ObjectName
		}
		return rows[i].MessageType < rows[j].MessageType
	})
	return rows
}

// Simulate runs the main loop per spec.md §4.6, under cfg, and returns the
// number of batches dispatched (num_handlers_called). Any error from within
// the loop is wrapped with ErrSimulationAborted; numHandlers reflects the
// count of batches successfully dispatched before the failure.
func (s *Simulator) Simulate(cfg Config) (numHandlers int, err error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	if !s.initialized {
		return 0, newSimError(ErrKindNotInitialized, "simulator must be initialized before Simulate")
	}
	if s.eventQueue.isEmpty() {
		return 0, newSimError(ErrKindNoInitialEvents, "no events scheduled before Simulate")
	}
	if s.eventQueue.peekTime() < cfg.TimeInit {
		return 0, newSimError(ErrKindInvalidTime, "earliest scheduled event (%v) precedes time_init (%v)", s.eventQueue.peekTime(), cfg.TimeInit)
	}

	var meta *SimulationMetadata
	if cfg.OutputDir != "" {
		meta = &SimulationMetadata{Config: cfg, Author: DefaultAuthorMetadata()}
		meta.Run.RecordStart()
	}
	recorder, err := newMeasurementRecorder(&cfg)
	if err != nil {
		return 0, err
	}

	var checkpointer Checkpointer
	if cfg.OutputDir != "" {
		dir := filepath.Join(cfg.OutputDir, "checkpoints")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("checkpoint: creating %s: %w", dir, err)
		}
		checkpointer = &FileCheckpointer{Dir: dir, Precision: cfg.MaxTimePrecision}
	}

	progress := s.progress
	if progress == nil {
		if cfg.Progress {
			progress = newTerminalProgress(os.Stderr)
		} else {
			progress = noopProgress{}
		}
	}
	progress.Start(cfg.MaxTime)
	recorder.recordStart(cfg.MaxTime)

	s.time = cfg.TimeInit
	var loopErr error
	if checkpointer != nil {
		loopErr = checkpointer.Save(s.time, s.snapshotState(), cfg.RandomSeed)
	}
	if loopErr == nil {
		numHandlers, loopErr = s.runLoop(cfg, progress, recorder, checkpointer)
	}

	progress.End()
	if checkpointer != nil {
		if werr := checkpointer.Save(s.time, s.snapshotState(), cfg.RandomSeed); werr != nil && loopErr == nil {
			loopErr = werr
		}
	}
	var runTime time.Duration
	if meta != nil {
		meta.Run.RecordRunTime()
		runTime = meta.Run.RunTime
		if werr := writeSimulationMetadata(cfg.OutputDir, meta); werr != nil && loopErr == nil {
			loopErr = werr
		}
	}
	if rerr := recorder.recordEnd(s.time, numHandlers, runTime); rerr != nil && loopErr == nil {
		loopErr = rerr
	}

	if loopErr != nil {
		return numHandlers, wrapAborted(loopErr)
	}
	return numHandlers, nil
}

// Run is an alias for Simulate, matching the teacher's run(...) convenience
// naming alongside simulate(config).
func (s *Simulator) Run(cfg Config) (int, error) { return s.Simulate(cfg) }

func (s *Simulator) runLoop(cfg Config, progress ProgressReporter, recorder *measurementRecorder, checkpointer Checkpointer) (int, error) {
	numHandlers := 0
	for {
		if cfg.StopCondition != nil && cfg.StopCondition(s.time) {
			s.logger.infof(s.time, "terminating: stop condition reached")
			return numHandlers, nil
		}

		peekTime := s.eventQueue.peekTime()
		if math.IsInf(peekTime, 1) {
			s.logger.infof(s.time, "terminating: no events remain")
			return numHandlers, nil
		}
		if peekTime > cfg.MaxTime {
			s.logger.infof(s.time, "terminating: max_time exceeded (next event at %v)", peekTime)
			return numHandlers, nil
		}

		receiverName, _ := s.eventQueue.peekReceiver()
		receiver, ok := s.objects[receiverName]
		if !ok {
			return numHandlers, newSimError(ErrKindUnknownObjectName, "event queue references unregistered object %q", receiverName)
		}
		if peekTime < receiver.Time() {
			return numHandlers, newSimError(ErrKindRetroactiveDispatch,
				"%q: dispatch time %v precedes its local time %v", receiverName, peekTime, receiver.Time())
		}

		s.time = peekTime
		receiver.setTime(peekTime)

		batch := s.eventQueue.nextBatch()
		for _, ev := range batch {
			key := eventCountKey{className: receiver.Descriptor().ClassName(), objectName: receiverName, messageType: ev.Message().MessageType()}
			s.eventCounts[key]++
		}

		if err := dispatchBatch(receiver, batch, s.logger); err != nil {
			return numHandlers, err
		}
		numHandlers++
		progress.Update(s.time)
		recorder.recordBatch(s.time, len(s.objects))
		if checkpointer != nil && cfg.CheckpointInterval > 0 && numHandlers%cfg.CheckpointInterval == 0 {
			if err := checkpointer.Save(s.time, s.snapshotState(), cfg.RandomSeed); err != nil {
				return numHandlers, err
			}
		}
	}
}

// dispatchBatch invokes receiver's registered handler for each event in
// batch, in order, incrementing its handled-event counter once for the
// whole batch, per spec.md §4.4.
func dispatchBatch(receiver Object, batch []*Event, logger *fastLogger) error {
	receiver.noteHandled()
	descriptor := receiver.Descriptor()
	for _, ev := range batch {
		msg := ev.Message()
		handler, ok := descriptor.HandlerFor(msg.MessageType())
		if !ok {
			return newSimError(ErrKindNotRegisteredReceiver, "%q (class %q) has no handler for %q",
				receiver.Name(), descriptor.ClassName(), msg.MessageType())
		}
		logger.debugf(ev.EventTime(), "%s <- %s: %s", receiver.Name(), ev.SenderName(), msg.MessageType())
		if err := handler(receiver, msg); err != nil {
			return fmt.Errorf("handling %q on %q: %w", msg.MessageType(), receiver.Name(), err)
		}
	}
	return nil
}
