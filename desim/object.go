package desim

import (
	"fmt"
	"math"
)

// Object is the contract every simulation object must satisfy. Most user
// types satisfy it by embedding BaseObject and overriding InitBeforeRun.
//
// Dispatch (dispatchBatch in simulator.go) is done only by the Simulator, and only with a
// non-empty, already-sorted batch of events destined for this object at the
// same event_time.
type Object interface {
	// Name returns the object's unique name within its simulator.
	Name() string
	// Time returns the object's local clock.
	Time() float64
	// Tiebreaker returns the string used as the final component of this
	// object's events' order key.
	Tiebreaker() string
	// Descriptor returns the class-level metadata produced by Register.
	Descriptor() *ClassDescriptor
	// InitBeforeRun is called once by Simulator.Initialize, in object-name
	// order, before the main loop starts. The typical use is to schedule an
	// object's own first event(s).
	InitBeforeRun()
	// GetState returns an optional, opaque snapshot consumed only by a
	// Checkpointer; the core never interprets it.
	GetState() any

	// attach/detach/setTime/simulator/noteHandled/numEventsHandled are called
	// only by the engine and are not part of the contract user code invokes.
	attach(sim *Simulator)
	detach()
	setTime(t float64)
	simulator() *Simulator
	noteHandled()
	numEventsHandled() int
}

// BaseObject provides the bookkeeping every SimulationObject needs: unique
// name, local clock, tiebreaker, handled-event counter, and the back
// reference to its owning Simulator. Embed it, initialized by NewBaseObject
// with the *ClassDescriptor that Register returned, to get a working Object.
type BaseObject struct {
	name              string
	tiebreaker        string
	time              float64
	descriptor        *ClassDescriptor
	sim               *Simulator
	eventsHandledCnt  int
}

// NewBaseObject constructs a BaseObject. tiebreaker defaults to name when
// empty, per spec. startTime must be >= 0.
func NewBaseObject(name string, descriptor *ClassDescriptor, tiebreaker string, startTime float64) BaseObject {
	if tiebreaker == "" {
		tiebreaker = name
	}
	if startTime < 0 {
		panic(fmt.Sprintf("simulation object %q: start time must be >= 0, got %v", name, startTime))
	}
	return BaseObject{name: name, tiebreaker: tiebreaker, time: startTime, descriptor: descriptor}
}

func (b *BaseObject) Name() string            { return b.name }
func (b *BaseObject) Time() float64           { return b.time }
func (b *BaseObject) Tiebreaker() string      { return b.tiebreaker }
func (b *BaseObject) Descriptor() *ClassDescriptor { return b.descriptor }
func (b *BaseObject) GetState() any           { return nil }
func (b *BaseObject) InitBeforeRun()          {}

func (b *BaseObject) attach(sim *Simulator) { b.sim = sim }
func (b *BaseObject) detach()               { b.sim = nil }
func (b *BaseObject) setTime(t float64)     { b.time = t }
func (b *BaseObject) simulator() *Simulator { return b.sim }
func (b *BaseObject) noteHandled()          { b.eventsHandledCnt++ }
func (b *BaseObject) numEventsHandled() int { return b.eventsHandledCnt }

// ClassEventPriority returns this object's class priority (read-only view;
// use SetClassPriority on the ClassDescriptor to change it).
func (b *BaseObject) ClassEventPriority() int { return b.descriptor.classPriority }

// SendEvent schedules message for delivery to receiver at self.Time()+delay.
// delay must be >= 0 and finite.
func SendEvent(self Object, delay float64, receiver Object, message Message, copy bool) error {
	if math.IsNaN(delay) {
		return newSimError(ErrKindNaNTime, "send_event delay is NaN")
	}
	if delay < 0 {
		return newSimError(ErrKindInvalidTime, "send_event delay (%v) must be >= 0", delay)
	}
	if math.IsInf(delay, 1) {
		return newSimError(ErrKindInvalidTime, "send_event delay (%v) must be finite", delay)
	}
	return sendEventAbsolute(self, self.Time()+delay, receiver, message, copy)
}

// SendEventAbsolute schedules message for delivery to receiver at the given
// absolute event_time. event_time < self.Time() fails with RetroactiveSend.
func SendEventAbsolute(self Object, eventTime float64, receiver Object, message Message, copy bool) error {
	return sendEventAbsolute(self, eventTime, receiver, message, copy)
}

func sendEventAbsolute(self Object, eventTime float64, receiver Object, message Message, copy bool) error {
	if math.IsNaN(eventTime) {
		return newSimError(ErrKindNaNTime, "send_event_absolute event_time is NaN")
	}
	if eventTime < self.Time() {
		return newSimError(ErrKindRetroactiveSend, "%q at time %v cannot send event for time %v",
			self.Name(), self.Time(), eventTime)
	}
	senderDesc := self.Descriptor()
	if !senderDesc.sends(message.MessageType()) {
		return newSimError(ErrKindNotRegisteredSender, "%q (class %q) not registered to send %q messages",
			self.Name(), senderDesc.className, message.MessageType())
	}
	receiverDesc := receiver.Descriptor()
	if !receiverDesc.handles(message.MessageType()) {
		return newSimError(ErrKindNotRegisteredReceiver, "%q (class %q) not registered to receive %q messages",
			receiver.Name(), receiverDesc.className, message.MessageType())
	}
	if copy {
		if cl, ok := message.(Cloner); ok {
			message = cl.Clone()
		} else {
			return newSimError(ErrKindBadMessage, "message %q does not implement Cloner, cannot copy on send",
				message.MessageType())
		}
	}
	sim := self.simulator()
	if sim == nil {
		return newSimError(ErrKindNotInitialized, "%q is not attached to a simulator", self.Name())
	}
	return sim.eventQueue.schedule(self.Time(), eventTime, self.Name(), receiver.Name(), receiver.Tiebreaker(), receiverDesc, message)
}
