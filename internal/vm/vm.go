package vm

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/arfeld/wisp/internal/value"
)

const maxStack = 256

// Result classifies how a run ended, letting the CLI pick an exit code
// without inspecting error strings.
type Result int

const (
	Ok Result = iota
	CompileError
	RuntimeError
)

// VM is a stack-machine interpreter for a Chunk. It holds no state
// across runs beyond what's reset in Run, so one VM can be reused for a
// sequence of REPL lines.
type VM struct {
	stack  []value.Value
	stdout io.Writer
	trace  bool
}

func New(stdout io.Writer, trace bool) *VM {
	return &VM{stdout: stdout, trace: trace}
}

// Interpret compiles src and runs the resulting chunk.
func Interpret(src string, stdout io.Writer, trace bool) Result {
	chunk, err := NewCompiler(trace).Compile(src)
	if err != nil {
		fmt.Fprintln(stdout, err)
		return CompileError
	}
	return New(stdout, trace).Run(chunk)
}

func (vm *VM) compile(src string) (*Chunk, error) {
	return Compile(src)
}

// Run executes a chunk's bytecode top to bottom against a fresh stack.
func (vm *VM) Run(chunk *Chunk) Result {
	vm.stack = vm.stack[:0]
	ip := 0

	readByte := func() byte {
		b := chunk.Code[ip]
		ip++
		return b
	}

	for ip < len(chunk.Code) {
		op := OpCode(readByte())
		line := chunk.Lines[ip-1]
		if vm.trace {
			logrus.WithFields(logrus.Fields{"op": op.String(), "line": line, "stack": len(vm.stack)}).Debug("executing opcode")
		}

		switch op {
		case OpConstant:
			idx := readByte()
			if err := vm.push(chunk.Constants[idx]); err != nil {
				return vm.runtimeError(line, err)
			}

		case OpNegate:
			v, err := vm.pop()
			if err != nil {
				return vm.runtimeError(line, err)
			}
			if v.Kind() != value.Number {
				return vm.runtimeError(line, fmt.Errorf("operand must be a number"))
			}
			if err := vm.push(value.NumberValue(-v.AsNumber())); err != nil {
				return vm.runtimeError(line, err)
			}

		case OpAdd, OpSubtract, OpMultiply, OpDivide:
			if err := vm.binaryArith(op); err != nil {
				return vm.runtimeError(line, err)
			}

		case OpReturn:
			v, err := vm.pop()
			if err != nil {
				return vm.runtimeError(line, err)
			}
			fmt.Fprintln(vm.stdout, v.String())
			return Ok

		default:
			return vm.runtimeError(line, fmt.Errorf("unknown opcode %d", op))
		}
	}

	return Ok
}

func (vm *VM) binaryArith(op OpCode) error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}
	if a.Kind() != value.Number || b.Kind() != value.Number {
		return fmt.Errorf("operands must be numbers")
	}
	var result float64
	switch op {
	case OpAdd:
		result = a.AsNumber() + b.AsNumber()
	case OpSubtract:
		result = a.AsNumber() - b.AsNumber()
	case OpMultiply:
		result = a.AsNumber() * b.AsNumber()
	case OpDivide:
		result = a.AsNumber() / b.AsNumber()
	}
	return vm.push(value.NumberValue(result))
}

func (vm *VM) push(v value.Value) error {
	if len(vm.stack) >= maxStack {
		return fmt.Errorf("stack overflow")
	}
	vm.stack = append(vm.stack, v)
	return nil
}

func (vm *VM) pop() (value.Value, error) {
	if len(vm.stack) == 0 {
		return value.Value{}, fmt.Errorf("stack underflow")
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VM) runtimeError(line int, err error) Result {
	fmt.Fprintf(vm.stdout, "[line %d] %s\n", line, err)
	return RuntimeError
}
