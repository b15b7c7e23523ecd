package synth

import (
	"github.com/google/uuid"
)

// Synth owns the set of live modules and the logical rate. All dynamic state
// lives on the modules and their ports; the synth itself holds only the
// ordered module list and the rate.
//
// Thread-safety model: none. One goroutine owns a Synth; a multi-threaded
// host must serialize graph edits against stepping. Graph mutation during an
// in-progress step is not supported.
type Synth struct {
	rate     float64
	modules  []*Module // insertion order; this IS the evaluation order
	byHandle map[uuid.UUID]*Module
	handles  HandleGenerator
}

// Option configures a Synth.
type Option func(*Synth)

// WithHandleGenerator overrides the module handle generator (for testing).
func WithHandleGenerator(g HandleGenerator) Option {
	return func(s *Synth) {
		s.handles = g
	}
}

// New creates an empty synth with the given logical rate (steps per second
// of external time). A rate <= 0 means the RateAdapter never produces steps:
// a disabled patch.
func New(rate float64, opts ...Option) *Synth {
	s := &Synth{
		rate:     rate,
		byHandle: make(map[uuid.UUID]*Module),
		handles:  UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rate returns the logical rate in steps per second of external time.
func (s *Synth) Rate() float64 { return s.rate }

// SetRate replaces the logical rate. The host owns the RateAdapter and is
// expected to construct a new one when the rate changes.
func (s *Synth) SetRate(rate float64) { s.rate = rate }

// CreateModule instantiates spec and adds the new module to the graph.
//
// A SpecError (bad default, duplicate name, missing evaluator constructor)
// is returned before the module joins the graph: a module with an invalid
// declaration is never evaluated and never holds connections.
func (s *Synth) CreateModule(spec *Spec) (*Module, error) {
	m, err := newModule(spec, s.handles.Generate())
	if err != nil {
		return nil, err
	}
	s.modules = append(s.modules, m)
	s.byHandle[m.handle] = m
	return m, nil
}

// Module resolves a handle to a live module.
func (s *Synth) Module(h uuid.UUID) (*Module, error) {
	m, ok := s.byHandle[h]
	if !ok {
		return nil, &GraphError{Code: ErrCodeUnknownModule, Message: "no such module", Module: h.String()}
	}
	return m, nil
}

// Modules returns the live modules in evaluation order.
func (s *Synth) Modules() []*Module {
	ms := make([]*Module, len(s.modules))
	copy(ms, s.modules)
	return ms
}

// Connect wires target's input to read from source's output, replacing any
// prior source of that input. Both modules must be live, both ports must
// exist, and their declared types must match. A failed connect leaves every
// existing connection untouched.
func (s *Synth) Connect(target uuid.UUID, inputName string, source uuid.UUID, outputName string) error {
	tm, err := s.Module(target)
	if err != nil {
		return err
	}
	sm, err := s.Module(source)
	if err != nil {
		return err
	}
	in, err := tm.Input(inputName)
	if err != nil {
		return err
	}
	out, err := sm.Output(outputName)
	if err != nil {
		return err
	}
	if !in.typ.Equals(out.typ) {
		return &GraphError{
			Code:    ErrCodeTypeMismatch,
			Message: "input type " + in.typ.FriendlyName() + " does not match output type " + out.typ.FriendlyName(),
			Module:  tm.spec.Name,
			Port:    inputName,
		}
	}
	in.bind(out)
	return nil
}

// Disconnect clears the source of target's input. No-op if the input has no
// source.
func (s *Synth) Disconnect(target uuid.UUID, inputName string) error {
	tm, err := s.Module(target)
	if err != nil {
		return err
	}
	in, err := tm.Input(inputName)
	if err != nil {
		return err
	}
	in.bind(nil)
	return nil
}

// DestroyModule removes the module from the graph and severs every edge
// touching it: each input sourced from one of its outputs is disconnected,
// and each of its own inputs releases its back-reference on the surviving
// source output. A destroyed module is never evaluated again and never
// appears as a dangling source anywhere in the graph.
func (s *Synth) DestroyModule(h uuid.UUID) error {
	m, ok := s.byHandle[h]
	if !ok {
		return &GraphError{Code: ErrCodeUnknownModule, Message: "no such module", Module: h.String()}
	}

	// Remove from the live set first so the module cannot be evaluated or
	// re-connected while edges are being severed.
	delete(s.byHandle, h)
	for i, lm := range s.modules {
		if lm == m {
			s.modules = append(s.modules[:i], s.modules[i+1:]...)
			break
		}
	}

	for _, out := range m.outputs {
		// Snapshot: unbinding mutates the back-reference set.
		targets := make([]*Input, 0, len(out.targets))
		for in := range out.targets {
			targets = append(targets, in)
		}
		for _, in := range targets {
			in.bind(nil)
		}
	}
	for _, in := range m.inputs {
		in.bind(nil)
	}
	return nil
}
