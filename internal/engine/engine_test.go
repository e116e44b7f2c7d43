package engine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, mode Mode) (*Engine, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	e := New(Options{Mode: mode, Stdout: &out, Stdin: strings.NewReader("")})
	return e, &out
}

func TestRunSourceTreeWalk(t *testing.T) {
	e, out := newTestEngine(t, TreeWalk)
	require.NoError(t, e.RunSource(`print 1 + 2 * 3;`))
	assert.Equal(t, "7\n", out.String())
}

func TestRunSourceTreeWalkPersistsGlobalsAcrossCalls(t *testing.T) {
	e, out := newTestEngine(t, TreeWalk)
	require.NoError(t, e.RunSource(`var x = 10;`))
	require.NoError(t, e.RunSource(`print x + 1;`))
	assert.Equal(t, "11\n", out.String())
}

func TestRunSourceVM(t *testing.T) {
	e, out := newTestEngine(t, Bytecode)
	require.NoError(t, e.RunSource(`1 + 2 * 3;`))
	assert.Equal(t, "7\n", out.String())
}

func TestRunSourceTreeWalkAndVMAgreeOnArithmetic(t *testing.T) {
	twi, twiOut := newTestEngine(t, TreeWalk)
	vm, vmOut := newTestEngine(t, Bytecode)

	require.NoError(t, twi.RunSource(`print (2 + 3) * 4 - 1;`))
	require.NoError(t, vm.RunSource(`(2 + 3) * 4 - 1;`))

	assert.Equal(t, twiOut.String(), vmOut.String())
}

func TestRunSourceReportsParseError(t *testing.T) {
	e, _ := newTestEngine(t, TreeWalk)
	assert.Error(t, e.RunSource(`print 1 +;`))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "twi", TreeWalk.String())
	assert.Equal(t, "vm", Bytecode.String())
}
