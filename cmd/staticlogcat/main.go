// Command staticlogcat reads a staticlog output file and re-emits each line
// either as a JSON object or, on a terminal, with a colorized level prefix.
// It is the operator-facing inspection tool adapted from the teacher's
// pslogconsole2json.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hncelestialtech/static-logger/ansi"
	"github.com/hncelestialtech/static-logger/internal/isatty"
)

type line struct {
	Timestamp string `json:"ts"`
	Level     string `json:"level"`
	Function  string `json:"fn"`
	Line      int    `json:"line"`
	Message   string `json:"msg"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		jsonOut bool
		color   bool
	)

	cmd := &cobra.Command{
		Use:   "staticlogcat [file]",
		Short: "Inspect a staticlog output file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = os.Stdin
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return run(in, os.Stdout, jsonOut, color)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit each line as a JSON object")
	cmd.Flags().BoolVar(&color, "color", isTerminalStdout(), "colorize the level prefix")
	return cmd
}

func run(in io.Reader, out io.Writer, jsonOut, color bool) error {
	enc := json.NewEncoder(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		l, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		if jsonOut {
			if err := enc.Encode(l); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(out, formatPlain(l, color))
	}
	return scanner.Err()
}

// parseLine splits "[ts][level][fn][line]msg" into its fields.
func parseLine(s string) (line, bool) {
	fields := make([]string, 0, 4)
	rest := s
	for i := 0; i < 4; i++ {
		if len(rest) == 0 || rest[0] != '[' {
			return line{}, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return line{}, false
		}
		fields = append(fields, rest[1:end])
		rest = rest[end+1:]
	}
	lineNum, err := strconv.Atoi(fields[3])
	if err != nil {
		return line{}, false
	}
	return line{
		Timestamp: fields[0],
		Level:     fields[1],
		Function:  fields[2],
		Line:      lineNum,
		Message:   rest,
	}, true
}

func formatPlain(l line, color bool) string {
	if !color {
		return fmt.Sprintf("[%s][%s][%s][%d]%s", l.Timestamp, l.Level, l.Function, l.Line, l.Message)
	}
	return fmt.Sprintf("[%s][%s%s%s][%s][%d]%s",
		ansi.Timestamp+l.Timestamp+ansi.Reset,
		levelColor(l.Level), l.Level, ansi.Reset,
		l.Function, l.Line, l.Message)
}

func levelColor(level string) string {
	switch level {
	case "error":
		return ansi.Error
	case "warn":
		return ansi.Warn
	case "notice":
		return ansi.Info
	case "debug":
		return ansi.Debug
	default:
		return ansi.NoLevel
	}
}

func isTerminalStdout() bool {
	return isatty.IsTerminal(os.Stdout)
}
