package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruthiness(t *testing.T) {
	assert.False(t, NilValue().Truthy())
	assert.False(t, BoolValue(false).Truthy())
	assert.True(t, BoolValue(true).Truthy())
	assert.True(t, NumberValue(0).Truthy())
	assert.True(t, StringValue("").Truthy())
}

func TestEqualityIsPerVariant(t *testing.T) {
	assert.True(t, NumberValue(1).Equal(NumberValue(1)))
	assert.False(t, NumberValue(1).Equal(NumberValue(2)))
	assert.False(t, NumberValue(1).Equal(StringValue("1")))
	assert.True(t, StringValue("hi").Equal(StringValue("hi")))
	assert.True(t, NilValue().Equal(NilValue()))
}

func TestDisplayForms(t *testing.T) {
	assert.Equal(t, "nil", NilValue().String())
	assert.Equal(t, "true", BoolValue(true).String())
	assert.Equal(t, "false", BoolValue(false).String())
	assert.Equal(t, "7", NumberValue(7).String())
	assert.Equal(t, "3.14", NumberValue(3.14).String())
	assert.Equal(t, "hi", StringValue("hi").String())
}

func TestEnvironmentShadowingAndAssign(t *testing.T) {
	globals := NewEnvironment(nil)
	globals.Define("a", NumberValue(1))

	inner := NewEnvironment(globals)
	inner.Define("a", NumberValue(2))

	v, err := inner.Get("a")
	require.NoError(t, err)
	assert.Equal(t, NumberValue(2), v)

	v, err = globals.Get("a")
	require.NoError(t, err)
	assert.Equal(t, NumberValue(1), v)

	require.NoError(t, inner.Assign("a", NumberValue(3)))
	v, _ = inner.Get("a")
	assert.Equal(t, NumberValue(3), v)
	v, _ = globals.Get("a")
	assert.Equal(t, NumberValue(1), v, "assigning in inner scope must not leak to the shadowed outer binding")
}

func TestEnvironmentAssignUndefinedFails(t *testing.T) {
	env := NewEnvironment(nil)
	err := env.Assign("nope", NumberValue(1))
	assert.Error(t, err)
}

func TestEnvironmentGetAtFallsBackToEnclosing(t *testing.T) {
	// GetAt(d, name) skips d frames, then falls back through enclosing
	// frames if the name isn't bound exactly there.
	globals := NewEnvironment(nil)
	globals.Define("a", NumberValue(42))
	block := NewEnvironment(globals)

	v, err := block.GetAt(0, "a")
	require.NoError(t, err)
	assert.Equal(t, NumberValue(42), v)
}

func TestInstanceFieldsShadowMethods(t *testing.T) {
	class := &Class{Name: "C", Methods: map[string]*Function{
		"greet": {Name: "greet", Invoke: func(fn *Function, args []Value) (Value, error) {
			return StringValue("method"), nil
		}},
	}}
	inst := NewInstance(class)

	v, err := inst.Get("greet")
	require.NoError(t, err)
	require.Equal(t, Obj, v.Kind())

	inst.Set("greet", StringValue("field"))
	v, err = inst.Get("greet")
	require.NoError(t, err)
	assert.Equal(t, "field", v.AsString())
}

func TestClassArityUsesInheritedInitializer(t *testing.T) {
	base := &Class{Name: "A", Methods: map[string]*Function{
		"init": {Name: "init", Params: []string{"n"}, IsInitializer: true},
	}}
	derived := &Class{Name: "B", Methods: map[string]*Function{}, Superclass: base}

	assert.Equal(t, 1, derived.Arity(), "Arity must walk the superclass chain like FindMethod, not just check its own Methods table")
}

func TestFindMethodWalksSuperclassChain(t *testing.T) {
	base := &Class{Name: "A", Methods: map[string]*Function{
		"f": {Name: "f"},
	}}
	derived := &Class{Name: "B", Methods: map[string]*Function{}, Superclass: base}

	m, ok := derived.FindMethod("f")
	require.True(t, ok)
	assert.Equal(t, "f", m.Name)

	_, ok = derived.FindMethod("nope")
	assert.False(t, ok)
}
