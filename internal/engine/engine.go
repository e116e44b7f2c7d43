// Package engine wires the scanner/parser/resolver/interpreter pipeline
// and the compiler/VM pipeline behind one small surface: a CLI or test
// harness picks a Mode and calls RunSource, RunFile, or REPL without
// caring which pipeline actually executes the program.
package engine

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/arfeld/wisp/internal/ast"
	"github.com/arfeld/wisp/internal/interpreter"
	"github.com/arfeld/wisp/internal/parser"
	"github.com/arfeld/wisp/internal/resolver"
	"github.com/arfeld/wisp/internal/scanner"
	"github.com/arfeld/wisp/internal/vm"
)

// Mode selects which of the two implementations executes a program.
type Mode int

const (
	TreeWalk Mode = iota
	Bytecode
)

func (m Mode) String() string {
	if m == Bytecode {
		return "vm"
	}
	return "twi"
}

// Options configures an Engine. Trace turns on per-opcode/per-statement
// debug logging via logrus; it has no effect on program output.
type Options struct {
	Mode   Mode
	Trace  bool
	Stdout io.Writer
	Stdin  io.Reader
}

// Engine runs programs under a fixed Options/Mode for the lifetime of a
// process (or a REPL session). The tree-walking interpreter carries
// state across REPL lines (global variables persist); the VM does not
// yet, matching its current single-expression grammar.
type Engine struct {
	opts Options
	twi  *interpreter.Interpreter
	log  *logrus.Logger
}

func New(opts Options) *Engine {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if opts.Trace {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return &Engine{
		opts: opts,
		twi:  interpreter.New(opts.Stdout, opts.Stdin),
		log:  log,
	}
}

// RunSource compiles and executes one unit of source under the engine's
// configured Mode, returning the first error encountered.
func (e *Engine) RunSource(src string) error {
	switch e.opts.Mode {
	case Bytecode:
		return e.runVM(src)
	default:
		return e.runTWI(src)
	}
}

func (e *Engine) runTWI(src string) error {
	toks, err := scanner.Scan(src)
	if err != nil {
		e.reportDiagnostic(err)
		return err
	}
	stmts, err := parser.Parse(toks)
	if err != nil {
		e.reportDiagnostic(err)
		return err
	}
	if e.opts.Trace {
		for _, s := range stmts {
			if es, ok := s.(*ast.ExprStmt); ok {
				e.log.WithFields(logrus.Fields{
					"lisp":    ast.Print(es.Expr),
					"polish":  ast.PrintPolish(es.Expr),
					"rpolish": ast.PrintReversePolish(es.Expr),
				}).Debug("parsed expression statement")
			}
		}
	}
	if err := resolver.Resolve(stmts); err != nil {
		e.reportDiagnostic(err)
		return err
	}
	if err := e.twi.Interpret(stmts); err != nil {
		e.reportDiagnostic(err)
		return err
	}
	return nil
}

func (e *Engine) runVM(src string) error {
	res := vm.Interpret(src, e.opts.Stdout, e.opts.Trace)
	switch res {
	case vm.CompileError:
		return fmt.Errorf("compile error")
	case vm.RuntimeError:
		return fmt.Errorf("runtime error")
	default:
		return nil
	}
}

// RunFile reads path and runs it as a single program. Returns a
// non-nil error if the file can't be read or the program fails.
func (e *Engine) RunFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return e.RunSource(string(data))
}

// RunStdin reads all of stdin and runs it as a single program, for
// non-interactive invocations (e.g. `wisp < script.wisp`).
func (e *Engine) RunStdin() error {
	data, err := io.ReadAll(e.opts.Stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	return e.RunSource(string(data))
}

// REPL drives an interactive session with readline-backed line editing
// and history, running each line as it's entered. A line that fails
// never kills the session — the error is reported and the loop
// continues, matching a REPL's "one bad line doesn't kill the session"
// expectation. It returns when the session ends (Ctrl-D) or on an
// unrecoverable readline error.
func (e *Engine) REPL() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          color.CyanString("wisp> "),
		HistoryFile:     historyFilePath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "",
	})
	if err != nil {
		return fmt.Errorf("starting REPL: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		if err := e.RunSource(line); err != nil {
			e.log.WithError(err).Debug("line failed")
		}
	}
}

func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.wisp_history"
}

func (e *Engine) reportDiagnostic(err error) {
	fmt.Fprintln(os.Stderr, color.New(color.FgRed).Sprint(err))
}
