// Command wisp runs programs written in the wisp scripting language,
// either from a file, from stdin, or interactively at a REPL.
package main

import (
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arfeld/wisp/internal/engine"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		useVM bool
		trace bool
	)

	cmd := &cobra.Command{
		Use:   "wisp [script]",
		Short: "Run wisp programs",
		Long: heredoc.Doc(`
			wisp is a small scripting language with two interchangeable
			implementations: a tree-walking interpreter (the default) and a
			bytecode compiler and stack machine (--vm).

			With no arguments, wisp starts a REPL when stdin is a terminal,
			or reads a whole program from stdin otherwise. With one
			argument, it runs that file.
		`),
		Example: heredoc.Doc(`
			wisp script.wisp
			wisp --vm script.wisp
			echo 'print 1 + 2;' | wisp
		`),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, useVM, trace)
		},
	}

	cmd.Flags().BoolVar(&useVM, "vm", false, "use the bytecode compiler and stack machine instead of the tree-walking interpreter")
	cmd.Flags().BoolVar(&trace, "trace", false, "log each parsed/compiled/executed step to stderr")

	return cmd
}

func run(cmd *cobra.Command, args []string, useVM, trace bool) error {
	if trace {
		logrus.SetLevel(logrus.DebugLevel)
	}

	mode := engine.TreeWalk
	if useVM {
		mode = engine.Bytecode
	}
	eng := engine.New(engine.Options{
		Mode:   mode,
		Trace:  trace,
		Stdout: cmd.OutOrStdout(),
		Stdin:  cmd.InOrStdin(),
	})

	if len(args) == 1 {
		if err := eng.RunFile(args[0]); err != nil {
			return err
		}
		return nil
	}

	if !isTerminal(os.Stdin) {
		return eng.RunStdin()
	}

	return eng.REPL()
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
