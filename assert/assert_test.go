package assert_test

import (
	"fmt"
	"testing"

	"github.com/rotisserie/eris"

	"github.com/lattice-works/lattice/assert"
)

// recordingT satisfies both assertion backends and just remembers
// whether a failure was reported.
type recordingT struct {
	failed bool
	msgs   []string
}

func (r *recordingT) FailNow() { r.failed = true }

func (r *recordingT) Fail() { r.failed = true }

func (r *recordingT) Log(args ...interface{}) {
	r.msgs = append(r.msgs, fmt.Sprint(args...))
}

func (r *recordingT) Errorf(format string, args ...interface{}) {
	r.failed = true
	r.msgs = append(r.msgs, fmt.Sprintf(format, args...))
}

func TestErrorAssertionsMatchRootCause(t *testing.T) {
	root := eris.New("boom")
	wrapped := eris.Wrap(eris.Wrap(root, "inner"), "outer")

	rt := &recordingT{}
	assert.ErrorIs(rt, wrapped, root)
	assert.False(t, rt.failed, "a wrapped error still matches its root sentinel")

	rt = &recordingT{}
	assert.ErrorContains(rt, wrapped, "boom")
	assert.False(t, rt.failed, "substring matching targets the root message")

	// Wrap text is stripped before matching, so the outer message does
	// not satisfy ErrorContains.
	rt = &recordingT{}
	assert.ErrorContains(rt, wrapped, "outer")
	assert.True(t, rt.failed)

	rt = &recordingT{}
	assert.IsError(rt, nil)
	assert.True(t, rt.failed)
}

func TestValueAssertionsReport(t *testing.T) {
	rt := &recordingT{}
	assert.Equal(rt, 1, 1)
	assert.NilError(rt, nil)
	assert.Len(rt, []int{1, 2}, 2)
	assert.False(t, rt.failed)

	rt = &recordingT{}
	assert.NotEqual(rt, 3, 3)
	assert.True(t, rt.failed)
}
