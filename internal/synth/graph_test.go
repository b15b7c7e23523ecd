package synth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestConnect_BidirectionalInvariant(t *testing.T) {
	s := New(10)
	a, err := s.CreateModule(constSpec("a", 1))
	require.NoError(t, err)
	b, err := s.CreateModule(constSpec("b", 2))
	require.NoError(t, err)
	p, err := s.CreateModule(passSpec("p"))
	require.NoError(t, err)

	require.True(t, checkBidirectional(s))

	// Connect, reconnect to a different source, disconnect - the back-set
	// must agree with the source pointers at every observable point.
	require.NoError(t, s.Connect(p.Handle(), "in", a.Handle(), "out"))
	require.True(t, checkBidirectional(s))

	in, err := p.Input("in")
	require.NoError(t, err)
	aOut, err := a.Output("out")
	require.NoError(t, err)
	assert.Same(t, aOut, in.Source())

	require.NoError(t, s.Connect(p.Handle(), "in", b.Handle(), "out"))
	require.True(t, checkBidirectional(s))

	bOut, err := b.Output("out")
	require.NoError(t, err)
	assert.Same(t, bOut, in.Source())
	assert.Empty(t, aOut.targets, "old source must drop its back-reference on reconnect")

	require.NoError(t, s.Disconnect(p.Handle(), "in"))
	require.True(t, checkBidirectional(s))
	assert.Nil(t, in.Source())
	assert.Empty(t, bOut.targets)
}

func TestDisconnect_NoSourceIsNoOp(t *testing.T) {
	s := New(10)
	p, err := s.CreateModule(passSpec("p"))
	require.NoError(t, err)

	assert.NoError(t, s.Disconnect(p.Handle(), "in"))
}

func TestConnect_StructuralErrors(t *testing.T) {
	s := New(10)
	c, err := s.CreateModule(constSpec("c", 1))
	require.NoError(t, err)
	p, err := s.CreateModule(passSpec("p"))
	require.NoError(t, err)

	boolSrc := &Spec{
		Name:    "flag",
		Outputs: []OutputSpec{{Name: "out", Type: cty.Bool}},
		New: func() Evaluator {
			return evalFunc(func(m *Module, t float64, in Values) (Values, error) {
				return Values{"out": cty.True}, nil
			})
		},
	}
	f, err := s.CreateModule(boolSrc)
	require.NoError(t, err)

	ghost := uuid.New()

	tests := []struct {
		name string
		do   func() error
		code GraphErrorCode
	}{
		{"unknown target module", func() error { return s.Connect(ghost, "in", c.Handle(), "out") }, ErrCodeUnknownModule},
		{"unknown source module", func() error { return s.Connect(p.Handle(), "in", ghost, "out") }, ErrCodeUnknownModule},
		{"unknown input name", func() error { return s.Connect(p.Handle(), "nope", c.Handle(), "out") }, ErrCodeUnknownInput},
		{"unknown output name", func() error { return s.Connect(p.Handle(), "in", c.Handle(), "nope") }, ErrCodeUnknownOutput},
		{"type mismatch", func() error { return s.Connect(p.Handle(), "in", f.Handle(), "out") }, ErrCodeTypeMismatch},
		{"disconnect unknown module", func() error { return s.Disconnect(ghost, "in") }, ErrCodeUnknownModule},
		{"destroy unknown module", func() error { return s.DestroyModule(ghost) }, ErrCodeUnknownModule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.do()
			var ge *GraphError
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, tt.code, ge.Code)

			// A failed operation never corrupts existing state.
			assert.True(t, checkBidirectional(s))
		})
	}

	assert.True(t, IsTypeMismatch(s.Connect(p.Handle(), "in", f.Handle(), "out")))
}

func TestDestroyModule_SeversAllEdges(t *testing.T) {
	s := New(10)

	// hub feeds two readers and reads from a survivor.
	hub, err := s.CreateModule(passSpec("hub"))
	require.NoError(t, err)
	src, err := s.CreateModule(constSpec("src", 1))
	require.NoError(t, err)
	r1, err := s.CreateModule(passSpec("r1"))
	require.NoError(t, err)
	r2, err := s.CreateModule(passSpec("r2"))
	require.NoError(t, err)

	require.NoError(t, s.Connect(hub.Handle(), "in", src.Handle(), "out"))
	require.NoError(t, s.Connect(r1.Handle(), "in", hub.Handle(), "out"))
	require.NoError(t, s.Connect(r2.Handle(), "in", hub.Handle(), "out"))

	require.NoError(t, s.DestroyModule(hub.Handle()))

	// Gone from the live set.
	_, err = s.Module(hub.Handle())
	assert.Error(t, err)
	assert.Len(t, s.Modules(), 3)

	// No dangling sources on previously-connected inputs.
	for _, m := range []*Module{r1, r2} {
		in, err := m.Input("in")
		require.NoError(t, err)
		assert.Nil(t, in.Source(), "reader must not point at a destroyed module")
	}

	// No back-references to the destroyed module on surviving outputs.
	srcOut, err := src.Output("out")
	require.NoError(t, err)
	assert.Empty(t, srcOut.targets)

	assert.True(t, checkBidirectional(s))

	// The survivors still step normally.
	s.Step(0)
	for _, m := range []*Module{src, r1, r2} {
		assert.NoError(t, m.LastError())
	}
}

func TestDestroyModule_SelfLoop(t *testing.T) {
	s := New(10)
	p, err := s.CreateModule(passSpec("p"))
	require.NoError(t, err)
	require.NoError(t, s.Connect(p.Handle(), "in", p.Handle(), "out"))

	require.NoError(t, s.DestroyModule(p.Handle()))
	assert.Empty(t, s.Modules())
}
