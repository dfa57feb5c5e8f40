package conversation

import (
	"context"
	"fmt"
)

// GuardFunc decides whether a transition may be taken
type GuardFunc func(ctx context.Context) bool

// Builder collects transitions and produces independent state machines
type Builder interface {
	// Configure returns the configuration for transitions leaving state
	Configure(state State) StateConfiguration

	// ConfigureAll applies fn to every valid state
	ConfigureAll(fn func(c StateConfiguration))

	// Build creates a machine positioned at initial
	Build(initial State) (StateMachine, error)
}

// StateConfiguration declares transitions leaving one state
type StateConfiguration interface {
	// Permit allows trigger to move to toState unconditionally
	Permit(trigger Trigger, toState State) StateConfiguration

	// PermitIf allows trigger to move to toState when guard passes
	PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration
}

type transition struct {
	toState State
	guard   GuardFunc
}

type stateConfig struct {
	transitions map[Trigger][]transition
}

type builder struct {
	configs map[State]*stateConfig
}

// NewBuilder creates an empty builder
func NewBuilder() Builder {
	return &builder{configs: make(map[State]*stateConfig)}
}

// Configure panics on an unknown state; transitions are declared at startup
func (b *builder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}

	cfg, ok := b.configs[state]
	if !ok {
		cfg = &stateConfig{transitions: make(map[Trigger][]transition)}
		b.configs[state] = cfg
	}
	return cfg
}

func (b *builder) ConfigureAll(fn func(c StateConfiguration)) {
	for _, state := range States() {
		fn(b.Configure(state))
	}
}

// Build copies the declared transitions so later Configure calls do not
// affect machines already built. An unknown initial state, as read back
// from a corrupt store, is reported rather than panicking.
func (b *builder) Build(initial State) (StateMachine, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidState, initial)
	}

	table := make(map[State]map[Trigger][]transition, len(b.configs))
	for state, cfg := range b.configs {
		triggers := make(map[Trigger][]transition, len(cfg.transitions))
		for trigger, ts := range cfg.transitions {
			triggers[trigger] = append([]transition(nil), ts...)
		}
		table[state] = triggers
	}

	return &stateMachine{current: initial, table: table}, nil
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	return c.PermitIf(trigger, toState, nil)
}

func (c *stateConfig) PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}
	c.transitions[trigger] = append(c.transitions[trigger], transition{toState: toState, guard: guard})
	return c
}
