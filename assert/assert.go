// Package assert narrows the gotest.tools and testify assertion APIs to
// the helpers this module's tests actually use. Error assertions render
// the full error chain into the failure message and match against the
// root cause, so a layered wrap never hides the sentinel underneath.
package assert

import (
	gocmp "github.com/google/go-cmp/cmp"
	"github.com/rotisserie/eris"
	testify "github.com/stretchr/testify/assert"
	gotest "gotest.tools/v3/assert"
)

type helperT interface {
	Helper()
}

func helper(t any) {
	if ht, ok := t.(helperT); ok {
		ht.Helper()
	}
}

// chain prepends the rendered error chain to the failure message.
func chain(err error, msgAndArgs []interface{}) []interface{} {
	if err == nil {
		return msgAndArgs
	}
	return append([]interface{}{eris.ToString(err, true)}, msgAndArgs...)
}

func Assert(t gotest.TestingT, comparison gotest.BoolOrComparison, msgAndArgs ...interface{}) {
	helper(t)
	gotest.Assert(t, comparison, msgAndArgs...)
}

func NilError(t gotest.TestingT, err error, msgAndArgs ...interface{}) {
	helper(t)
	gotest.NilError(t, err, chain(err, msgAndArgs)...)
}

func Equal(t gotest.TestingT, x, y interface{}, msgAndArgs ...interface{}) {
	helper(t)
	gotest.Equal(t, x, y, msgAndArgs...)
}

func DeepEqual(t gotest.TestingT, x, y interface{}, opts ...gocmp.Option) {
	helper(t)
	gotest.DeepEqual(t, x, y, opts...)
}

// ErrorContains asserts that the root cause of err mentions substring.
func ErrorContains(t gotest.TestingT, err error, substring string, msgAndArgs ...interface{}) {
	helper(t)
	gotest.ErrorContains(t, eris.Cause(err), substring, chain(err, msgAndArgs)...)
}

// ErrorIs asserts that err and expected share a root cause.
func ErrorIs(t gotest.TestingT, err error, expected error, msgAndArgs ...interface{}) {
	helper(t)
	gotest.ErrorIs(t, eris.Cause(err), eris.Cause(expected), chain(err, msgAndArgs)...)
}

// IsError asserts that err is non-nil, whatever its chain looks like.
func IsError(t testify.TestingT, err error, msgAndArgs ...interface{}) bool {
	helper(t)
	return testify.Error(t, err, chain(err, msgAndArgs)...)
}

func True(t testify.TestingT, value bool, msgAndArgs ...interface{}) bool {
	helper(t)
	return testify.True(t, value, msgAndArgs...)
}

func False(t testify.TestingT, value bool, msgAndArgs ...interface{}) bool {
	helper(t)
	return testify.False(t, value, msgAndArgs...)
}

func Len(t testify.TestingT, object interface{}, length int, msgAndArgs ...interface{}) bool {
	helper(t)
	return testify.Len(t, object, length, msgAndArgs...)
}

func Same(t testify.TestingT, expected, actual interface{}, msgAndArgs ...interface{}) bool {
	helper(t)
	return testify.Same(t, expected, actual, msgAndArgs...)
}

func NotEqual(t testify.TestingT, expected, actual interface{}, msgAndArgs ...interface{}) bool {
	helper(t)
	return testify.NotEqual(t, expected, actual, msgAndArgs...)
}

func Nil(t testify.TestingT, object interface{}, msgAndArgs ...interface{}) bool {
	helper(t)
	return testify.Nil(t, object, msgAndArgs...)
}

func NotNil(t testify.TestingT, object interface{}, msgAndArgs ...interface{}) bool {
	helper(t)
	return testify.NotNil(t, object, msgAndArgs...)
}
