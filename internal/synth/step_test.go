package synth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestStep_ChainReadsFreshValue(t *testing.T) {
	s := New(10)
	a, err := s.CreateModule(constSpec("a", 42))
	require.NoError(t, err)
	b, err := s.CreateModule(passSpec("b"))
	require.NoError(t, err)
	require.NoError(t, s.Connect(b.Handle(), "in", a.Handle(), "out"))

	// a is evaluated before b (insertion order), so after a single step b
	// has already observed a's freshly computed value, not a stale default.
	s.Step(0)

	bOut, err := b.Output("out")
	require.NoError(t, err)
	assert.Equal(t, 42.0, asFloat(bOut.Value()))
}

func TestStep_SelfFeedbackHasOneStepLatency(t *testing.T) {
	s := New(10)
	m, err := s.CreateModule(addOneSpec("acc"))
	require.NoError(t, err)
	require.NoError(t, s.Connect(m.Handle(), "in", m.Handle(), "out"))

	out, err := m.Output("out")
	require.NoError(t, err)

	// Step k reads the value produced on step k-1; the first step reads the
	// declared default because the output cell is still empty.
	for want := 1.0; want <= 50; want++ {
		s.Step(want - 1)
		require.NoError(t, m.LastError())
		require.Equal(t, want, asFloat(out.Value()))
	}
}

func TestStep_UpstreamEdgeIsStale(t *testing.T) {
	s := New(10)

	// b is created first, so it is evaluated before its source a: the edge
	// runs against the pass order and b sees a's previous-step value.
	b, err := s.CreateModule(passSpec("b"))
	require.NoError(t, err)
	a, err := s.CreateModule(addOneSpec("a"))
	require.NoError(t, err)
	require.NoError(t, s.Connect(b.Handle(), "in", a.Handle(), "out"))

	aOut, err := a.Output("out")
	require.NoError(t, err)
	bOut, err := b.Output("out")
	require.NoError(t, err)

	s.Step(0)
	assert.Equal(t, 1.0, asFloat(aOut.Value()))
	assert.Equal(t, 0.0, asFloat(bOut.Value()), "first step reads the default: a had no value yet")

	s.Step(1)
	assert.Equal(t, 1.0, asFloat(bOut.Value()), "second step reads a's step-1 value")
}

func TestStep_FailureIsIsolated(t *testing.T) {
	s := New(10)

	boom := errors.New("boom")
	failAfter := 3
	step := 0
	flaky := &Spec{
		Name:    "flaky",
		Outputs: []OutputSpec{{Name: "out", Type: cty.Number}},
		New: func() Evaluator {
			return evalFunc(func(m *Module, t float64, in Values) (Values, error) {
				step++
				if step > failAfter {
					return nil, boom
				}
				return Values{"out": num(float64(step))}, nil
			})
		},
	}

	f, err := s.CreateModule(flaky)
	require.NoError(t, err)
	healthy, err := s.CreateModule(addOneSpec("healthy"))
	require.NoError(t, err)
	require.NoError(t, s.Connect(healthy.Handle(), "in", healthy.Handle(), "out"))

	fOut, err := f.Output("out")
	require.NoError(t, err)
	hOut, err := healthy.Output("out")
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		s.Step(float64(i))
	}

	// The failing module froze at its last good value and carries the error.
	assert.Equal(t, 3.0, asFloat(fOut.Value()))
	var se *StepError
	require.ErrorAs(t, f.LastError(), &se)
	assert.ErrorIs(t, se, boom)
	assert.Equal(t, "flaky", se.Module)

	// Every other module kept producing normally.
	assert.NoError(t, healthy.LastError())
	assert.Equal(t, 10.0, asFloat(hOut.Value()))
}

func TestStep_LastErrorClearsOnRecovery(t *testing.T) {
	s := New(10)

	fail := true
	spec := &Spec{
		Name:    "recovering",
		Outputs: []OutputSpec{{Name: "out", Type: cty.Number}},
		New: func() Evaluator {
			return evalFunc(func(m *Module, t float64, in Values) (Values, error) {
				if fail {
					return nil, errors.New("not yet")
				}
				return Values{"out": num(7)}, nil
			})
		},
	}
	m, err := s.CreateModule(spec)
	require.NoError(t, err)

	s.Step(0)
	require.Error(t, m.LastError())

	fail = false
	s.Step(1)
	assert.NoError(t, m.LastError())
	assert.Equal(t, 7.0, asFloat(m.CurrentValues()["out"]))
}

func TestStep_PanicInEvaluatorIsIsolated(t *testing.T) {
	s := New(10)
	panicky := &Spec{
		Name:    "panicky",
		Outputs: []OutputSpec{{Name: "out", Type: cty.Number}},
		New: func() Evaluator {
			return evalFunc(func(m *Module, t float64, in Values) (Values, error) {
				panic("unexpected")
			})
		},
	}
	p, err := s.CreateModule(panicky)
	require.NoError(t, err)
	c, err := s.CreateModule(constSpec("c", 5))
	require.NoError(t, err)

	assert.NotPanics(t, func() { s.Step(0) })
	assert.Error(t, p.LastError())
	assert.NoError(t, c.LastError())
}

func TestStep_MisbehavedOutputsAreFailures(t *testing.T) {
	tests := []struct {
		name string
		out  Values
	}{
		{"undeclared output name", Values{"nope": num(1)}},
		{"mistyped output value", Values{"out": cty.True}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(10)
			spec := &Spec{
				Name:    "rogue",
				Outputs: []OutputSpec{{Name: "out", Type: cty.Number}},
				New: func() Evaluator {
					return evalFunc(func(m *Module, t float64, in Values) (Values, error) {
						return tt.out, nil
					})
				},
			}
			m, err := s.CreateModule(spec)
			require.NoError(t, err)

			s.Step(0)
			assert.Error(t, m.LastError())

			out, err := m.Output("out")
			require.NoError(t, err)
			assert.Equal(t, cty.NilVal, out.Value(), "no cell is written on a failed step")
		})
	}
}

func TestStep_PartialOutputUpdate(t *testing.T) {
	s := New(10)

	// Alternates which of its two outputs it updates; the untouched cell
	// must keep its previous value.
	step := 0
	spec := &Spec{
		Name: "alternator",
		Outputs: []OutputSpec{
			{Name: "even", Type: cty.Number},
			{Name: "odd", Type: cty.Number},
		},
		New: func() Evaluator {
			return evalFunc(func(m *Module, t float64, in Values) (Values, error) {
				step++
				if step%2 == 0 {
					return Values{"even": num(float64(step))}, nil
				}
				return Values{"odd": num(float64(step))}, nil
			})
		},
	}
	m, err := s.CreateModule(spec)
	require.NoError(t, err)

	even, err := m.Output("even")
	require.NoError(t, err)
	odd, err := m.Output("odd")
	require.NoError(t, err)

	s.Step(0) // step 1: writes odd
	assert.Equal(t, cty.NilVal, even.Value())
	assert.Equal(t, 1.0, asFloat(odd.Value()))

	s.Step(1) // step 2: writes even, odd untouched
	assert.Equal(t, 2.0, asFloat(even.Value()))
	assert.Equal(t, 1.0, asFloat(odd.Value()))
}

func TestRun_PerformsExactlyN(t *testing.T) {
	s := New(10)

	var times []float64
	counter := &Spec{
		Name: "counter",
		New: func() Evaluator {
			return evalFunc(func(m *Module, t float64, in Values) (Values, error) {
				times = append(times, t)
				return nil, nil
			})
		},
	}
	_, err := s.CreateModule(counter)
	require.NoError(t, err)

	s.Run(4, 0, 1)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75}, times, "[t0, t1) subdivided evenly, t1 excluded")

	times = nil
	s.Run(0, 5, 6)
	assert.Empty(t, times, "run(0) performs zero steps")
}

func TestStep_OrderIsStableAcrossSteps(t *testing.T) {
	s := New(10)

	var trace []string
	probe := func(name string) *Spec {
		return &Spec{
			Name: name,
			New: func() Evaluator {
				return evalFunc(func(m *Module, t float64, in Values) (Values, error) {
					trace = append(trace, name)
					return nil, nil
				})
			},
		}
	}

	for _, name := range []string{"w", "x", "y", "z"} {
		_, err := s.CreateModule(probe(name))
		require.NoError(t, err)
	}

	s.Step(0)
	first := append([]string(nil), trace...)

	for i := 1; i <= 5; i++ {
		trace = nil
		s.Step(float64(i))
		assert.Equal(t, first, trace, "evaluation order must not change while the module set is unchanged")
	}
}
