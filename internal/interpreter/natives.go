package interpreter

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arfeld/wisp/internal/value"
)

// RegisterNatives installs the host-provided built-in functions: clock,
// readLines, parseInt. Each gets its own small constructor function
// rather than one shared switch statement, so adding a native later is
// an additive change.
func RegisterNatives(i *Interpreter) {
	i.Globals.Define("clock", value.ObjectValue(clockNative()))
	i.Globals.Define("readLines", value.ObjectValue(readLinesNative(i)))
	i.Globals.Define("parseInt", value.ObjectValue(parseIntNative()))
}

func clockNative() *value.Native {
	return &value.Native{
		Name:   "clock",
		ArityN: 0,
		Fn: func(args []value.Value) (value.Value, error) {
			return value.NumberValue(float64(time.Now().UnixNano()) / 1e9), nil
		},
	}
}

// readLinesNative reads one trimmed line from the interpreter's Stdin,
// returning Nil on an empty read.
func readLinesNative(i *Interpreter) *value.Native {
	var reader *bufio.Reader
	return &value.Native{
		Name:   "readLines",
		ArityN: 0,
		Fn: func(args []value.Value) (value.Value, error) {
			if reader == nil {
				reader = bufio.NewReader(i.Stdin)
			}
			line, _ := reader.ReadString('\n')
			line = strings.TrimRight(line, "\r\n")
			if line == "" {
				return value.NilValue(), nil
			}
			return value.StringValue(line), nil
		},
	}
}

func parseIntNative() *value.Native {
	return &value.Native{
		Name:   "parseInt",
		ArityN: 1,
		Fn: func(args []value.Value) (value.Value, error) {
			if args[0].Kind() != value.String {
				return value.Value{}, fmt.Errorf("parseInt expects a string argument")
			}
			n, err := strconv.ParseInt(strings.TrimSpace(args[0].AsString()), 10, 64)
			if err != nil {
				return value.Value{}, fmt.Errorf("parseInt: malformed integer %q", args[0].AsString())
			}
			return value.NumberValue(float64(n)), nil
		},
	}
}
