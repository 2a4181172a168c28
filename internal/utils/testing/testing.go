package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Must[Result any](r Result, err error) Result {
	if err != nil {
		panic(err)
	}
	return r
}

func ExpectNoError(t *testing.T, err error) {
	t.Helper()
	require.NoError(t, err)
}

func ExpectHasError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
}

func ExpectError(t *testing.T, expected error, err error) {
	t.Helper()
	require.ErrorIs(t, err, expected)
}

func ExpectEqual[T comparable](t *testing.T, got T, want T) {
	t.Helper()
	require.Equal(t, want, got)
}

func ExpectDeepEqual[T any](t *testing.T, got T, want T) {
	t.Helper()
	require.Equal(t, want, got)
}

func ExpectBytesEqual(t *testing.T, got []byte, want []byte) {
	t.Helper()
	require.Equal(t, want, got)
}

func ExpectTrue(t *testing.T, got bool) {
	t.Helper()
	require.True(t, got)
}

func ExpectFalse(t *testing.T, got bool) {
	t.Helper()
	require.False(t, got)
}

func ExpectContains(t *testing.T, s string, substr string) {
	t.Helper()
	require.Contains(t, s, substr)
}

func ExpectType[T any](t *testing.T, got any) (_ T) {
	t.Helper()
	v, ok := got.(T)
	require.Truef(t, ok, "expected type %T, got %T", v, got)
	return v
}
