// Package desim is a general-purpose discrete-event simulation engine: a
// priority queue of pending events, a simulation-object dispatch protocol,
// and the deterministic total ordering that makes two runs of the same
// model bit-reproducible.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - message.go: event messages, the typed payloads carried by events
//   - event.go: the immutable Event record and its composite order key
//   - queue.go: the event heap -- schedule, peek, pop a batch for one receiver
//   - object.go: Object, BaseObject, and send_event
//   - registry.go: Register, ClassDescriptor, and handler-priority resolution
//   - simulator.go: Simulator, the main loop, and invariant enforcement
//
// # Architecture
//
// User code defines message types (implementing Message) and object types
// (embedding BaseObject and satisfying Object), calls Register once per
// object type to bind handlers to message types, constructs a Simulator,
// adds object instances, and calls Initialize then Simulate.
//
// Logging, progress reporting, metadata capture, checkpointing, and
// measurements/profiling are external collaborators the Simulator drives
// through narrow interfaces (ProgressReporter, Checkpointer) or direct
// calls (fastLogger, measurementRecorder); none of them interpret event or
// message content.
//
// # Key Types
//
//   - Message: a typed event payload with a total lexicographic order
//   - Object: a named, clocked participant with per-class registered handlers
//   - ClassDescriptor: the resolved per-class metadata Register produces
//   - Simulator: owns objects and the event queue, runs the main loop
//   - Config: the validated parameter bundle Simulate consumes
package desim
