package pipeline

import (
	"fmt"
	"sync"
)

// State is a lifecycle phase of a single submission.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSuccess
	StateBusinessError
	StateTransportError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateBusinessError:
		return "business-error"
	case StateTransportError:
		return "transport-error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether the state is an outcome.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateBusinessError || s == StateTransportError
}

var transitions = map[State][]State{
	StateIdle:           {StateValidating},
	StateValidating:     {StateIdle, StateSubmitting, StateSuccess},
	StateSubmitting:     {StateSuccess, StateBusinessError, StateTransportError},
	StateSuccess:        {StateIdle},
	StateBusinessError:  {StateIdle},
	StateTransportError: {StateIdle},
}

// Transition is delivered to observers after every state change.
type Transition struct {
	From    State
	To      State
	Message string
}

// Observer receives transitions. Observers run synchronously on the
// goroutine that caused the change and must not call back into the Machine's
// Transition method.
type Observer func(Transition)

// Machine tracks the submission lifecycle:
// Idle → Validating → Submitting → {Success | BusinessError | TransportError} → Idle.
// Validating may also return to Idle (invalid or unchanged input) or jump to
// Success for local completion.
type Machine struct {
	mu        sync.Mutex
	state     State
	observers map[int]Observer
	nextID    int
}

// NewMachine returns a machine in the Idle state.
func NewMachine() *Machine {
	return &Machine{observers: make(map[int]Observer)}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Loading reports whether a request is in flight.
func (m *Machine) Loading() bool {
	return m.State() == StateSubmitting
}

// Observe registers an observer and returns a function that removes it.
func (m *Machine) Observe(observer Observer) func() {
	if observer == nil {
		return func() {}
	}
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.observers[id] = observer
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

// Transition moves to the target state or returns ErrIllegalTransition.
func (m *Machine) Transition(to State, message string) error {
	m.mu.Lock()
	event, err := m.stepLocked(to, message)
	observers := m.observersLocked()
	m.mu.Unlock()
	if err != nil {
		return err
	}
	notify(observers, event)
	return nil
}

// begin claims the machine for a new submission. The busy check and the
// move to Validating happen under one lock.
func (m *Machine) begin() error {
	m.mu.Lock()
	if m.state == StateValidating || m.state == StateSubmitting {
		m.mu.Unlock()
		return ErrBusy
	}
	var events []Transition
	if m.state.Terminal() {
		event, err := m.stepLocked(StateIdle, "")
		if err != nil {
			m.mu.Unlock()
			return err
		}
		events = append(events, event)
	}
	event, err := m.stepLocked(StateValidating, "")
	if err != nil {
		m.mu.Unlock()
		return err
	}
	events = append(events, event)
	observers := m.observersLocked()
	m.mu.Unlock()

	notify(observers, events...)
	return nil
}

func (m *Machine) stepLocked(to State, message string) (Transition, error) {
	from := m.state
	if !allowed(from, to) {
		return Transition{}, fmt.Errorf("%w: %s → %s", ErrIllegalTransition, from, to)
	}
	m.state = to
	return Transition{From: from, To: to, Message: message}, nil
}

func (m *Machine) observersLocked() []Observer {
	observers := make([]Observer, 0, len(m.observers))
	for id := 0; id < m.nextID; id++ {
		if observer, ok := m.observers[id]; ok {
			observers = append(observers, observer)
		}
	}
	return observers
}

func notify(observers []Observer, events ...Transition) {
	for _, event := range events {
		for _, observer := range observers {
			observer(event)
		}
	}
}

// settle returns a terminal machine to Idle.
func (m *Machine) settle() {
	if m.State().Terminal() {
		_ = m.Transition(StateIdle, "")
	}
}

func allowed(from, to State) bool {
	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
