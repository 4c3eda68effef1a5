package desim

import "sort"

// HandlerFunc handles one delivered message for a receiving Object.
type HandlerFunc func(receiver Object, message Message) error

// HandlerEntry declares that messages of MessageType are dispatched to
// Handler. Position within the slice passed to Register determines handler
// priority: the first entry is priority 0 (highest), the second is 1, and
// so on — these priorities order execution within one batch of co-receiver,
// co-timed events (spec.md §4.5.2).
type HandlerEntry struct {
	MessageType string
	Handler     HandlerFunc
}

// ClassDescriptor is the per-class metadata a registry produces: the
// resolved handler map, per-message handler priority, sent-message set, and
// class priority, used by the event queue (batch sort) and by SendEvent
// (sender/receiver validation).
type ClassDescriptor struct {
	className      string
	handlers       map[string]HandlerFunc
	handlerPriority map[string]int
	sentMessages   map[string]struct{}
	classPriority  int
}

func (d *ClassDescriptor) handles(messageType string) bool {
	_, ok := d.handlers[messageType]
	return ok
}

func (d *ClassDescriptor) sends(messageType string) bool {
	_, ok := d.sentMessages[messageType]
	return ok
}

// HandlerFor returns the registered handler for messageType and whether one exists.
func (d *ClassDescriptor) HandlerFor(messageType string) (HandlerFunc, bool) {
	h, ok := d.handlers[messageType]
	return h, ok
}

// Priority returns the handler priority registered for messageType (0 =
// highest); the bool is false if messageType has no registered handler.
func (d *ClassDescriptor) Priority(messageType string) (int, bool) {
	p, ok := d.handlerPriority[messageType]
	return p, ok
}

// ClassPriority returns the resolved class priority (1-9, smaller = higher).
func (d *ClassDescriptor) ClassPriority() int { return d.classPriority }

// SetClassPriority overrides the class priority after registration (e.g. to
// set up a HIGH/LOW pair of object classes at runtime), matching
// SimulationObject.set_class_priority in the original.
func (d *ClassDescriptor) SetClassPriority(p int) {
	if !validClassPriority(p) {
		panic(newRegistrationError(ErrKindBadPriorityType, d.className, "class_priority must be in 1-9, got %d", p))
	}
	d.classPriority = p
}

// ClassName returns the registered class name.
func (d *ClassDescriptor) ClassName() string { return d.className }

// Register validates and records a simulation object class's event_handlers,
// messages_sent, and class_priority, exactly as spec.md §4.5 describes for
// the registry. It panics with a *RegistrationError on any violation,
// matching the teacher's own New*(name) factory convention of panicking at
// construction/registration time rather than returning an error that could
// be silently ignored until first dispatch.
//
// className should be a stable, human-readable name for the registering
// class (commonly the Go type name); it is used only for event-count keys
// and error messages, never reflected from T.
//
// classPriority of 0 means "unset", defaulting to ClassPriorityLow (9).
func Register[T Object](className string, handlers []HandlerEntry, sentMessages []string, classPriority int) *ClassDescriptor {
	if len(handlers) == 0 && len(sentMessages) == 0 {
		panic(newRegistrationError(ErrKindNoHandlersOrSent, className,
			"class declares neither event_handlers nor messages_sent"))
	}

	handlerMap := make(map[string]HandlerFunc, len(handlers))
	priorityMap := make(map[string]int, len(handlers))
	for i, h := range handlers {
		if h.MessageType == "" {
			panic(newRegistrationError(ErrKindNotAMessage, className, "handler entry %d has an empty MessageType", i))
		}
		if h.Handler == nil {
			panic(newRegistrationError(ErrKindHandlerNotCallable, className, "handler for %q is nil", h.MessageType))
		}
		if _, dup := handlerMap[h.MessageType]; dup {
			panic(newRegistrationError(ErrKindDuplicateHandler, className, "message type %q registered twice", h.MessageType))
		}
		handlerMap[h.MessageType] = h.Handler
		priorityMap[h.MessageType] = i
	}

	sentSet := make(map[string]struct{}, len(sentMessages))
	for _, mt := range sentMessages {
		if mt == "" {
			panic(newRegistrationError(ErrKindNotAMessage, className, "messages_sent contains an empty message type"))
		}
		sentSet[mt] = struct{}{}
	}

	if classPriority == 0 {
		classPriority = int(ClassPriorityLow)
	}
	if !validClassPriority(classPriority) {
		panic(newRegistrationError(ErrKindBadPriorityType, className, "class_priority must be in 1-9, got %d", classPriority))
	}

	return &ClassDescriptor{
		className:       className,
		handlers:        handlerMap,
		handlerPriority: priorityMap,
		sentMessages:    sentSet,
		classPriority:   classPriority,
	}
}

// sortBatchByPriority sorts events in place by (handler priority for the
// event's message type at the receiver, message content), lowest priority
// number first, per spec.md §4.3's next_batch contract. All events must
// share the same receiver.
func sortBatchByPriority(events []*Event, descriptor *ClassDescriptor) {
	sort.SliceStable(events, func(i, j int) bool {
		pi, _ := descriptor.Priority(events[i].message.MessageType())
		pj, _ := descriptor.Priority(events[j].message.MessageType())
		if pi != pj {
			return pi < pj
		}
		return Less(events[i].message, events[j].message)
	})
}
