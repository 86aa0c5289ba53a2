// Package proctest turns a test binary into a scriptable child process.
//
// A package's TestMain calls Main first; when the binary was started by
// Helper it runs the requested behaviour and exits instead of running
// tests. This gives process tests a real child with exact, portable output
// and no dependency on tools installed on the host.
package proctest

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

// EnvVar selects the helper mode in the child.
const EnvVar = "FRAMEPUMP_TEST_HELPER"

// Helper modes.
const (
	// ModeEmit writes args[0] bytes (byte i = i mod 256) in writes of
	// args[1] bytes (default: all at once), then exits 0.
	ModeEmit = "emit"
	// ModeExit exits with code args[0].
	ModeExit = "exit"
	// ModeSleep sleeps for duration args[0], then exits 0.
	ModeSleep = "sleep"
	// ModeCat copies stdin to stdout and reports the byte count on stderr.
	ModeCat = "cat"
	// ModeEnv prints the value of variable args[0].
	ModeEnv = "env"
	// ModePwd prints the working directory.
	ModePwd = "pwd"
	// ModeArgs prints its arguments separated by NUL bytes.
	ModeArgs = "args"
	// ModeStream writes bytes until stdout breaks or it is killed.
	ModeStream = "stream"
	// ModeStderr prints args as lines on stderr, then exits 0.
	ModeStderr = "stderr"
	// ModeNoise writes args[0] bytes to stderr in lines of args[1] bytes,
	// then the line "last words", then exits with code args[2].
	ModeNoise = "noise"
)

// Main runs the helper if this binary was launched as one, otherwise the
// tests. It never returns.
func Main(m *testing.M) {
	if mode := os.Getenv(EnvVar); mode != "" {
		os.Exit(run(mode, os.Args[1:]))
	}

	os.Exit(m.Run())
}

// Helper returns the executable, arguments and environment overrides that
// launch this test binary in the given mode.
func Helper(t testing.TB, mode string, args ...string) (string, []string, map[string]string) {
	t.Helper()

	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("locate test binary: %v", err)
	}

	return exe, args, map[string]string{EnvVar: mode}
}

// Pattern returns the bytes ModeEmit writes for n.
func Pattern(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i)
	}

	return out
}

func run(mode string, args []string) int {
	arg := func(i int, def string) string {
		if i < len(args) {
			return args[i]
		}

		return def
	}

	switch mode {
	case ModeEmit:
		n, _ := strconv.Atoi(arg(0, "0"))
		chunk, _ := strconv.Atoi(arg(1, strconv.Itoa(n)))

		data := Pattern(n)
		for len(data) > 0 {
			step := min(max(chunk, 1), len(data))
			if _, err := os.Stdout.Write(data[:step]); err != nil {
				return 3
			}

			data = data[step:]
		}

		return 0
	case ModeExit:
		code, _ := strconv.Atoi(arg(0, "0"))

		return code
	case ModeSleep:
		d, _ := time.ParseDuration(arg(0, "1s"))
		time.Sleep(d)

		return 0
	case ModeCat:
		n, err := io.Copy(os.Stdout, os.Stdin)
		fmt.Fprintf(os.Stderr, "copied %d", n)

		if err != nil {
			return 3
		}

		return 0
	case ModeEnv:
		fmt.Print(os.Getenv(arg(0, "")))

		return 0
	case ModePwd:
		wd, err := os.Getwd()
		if err != nil {
			return 3
		}

		fmt.Print(wd)

		return 0
	case ModeArgs:
		fmt.Print(strings.Join(args, "\x00"))

		return 0
	case ModeStream:
		buf := Pattern(4096)
		for {
			if _, err := os.Stdout.Write(buf); err != nil {
				return 3
			}
		}
	case ModeStderr:
		for _, line := range args {
			fmt.Fprintln(os.Stderr, line)
		}

		return 0
	case ModeNoise:
		total, _ := strconv.Atoi(arg(0, "0"))
		width, _ := strconv.Atoi(arg(1, "80"))
		code, _ := strconv.Atoi(arg(2, "0"))

		line := []byte(strings.Repeat("x", max(width-1, 0)) + "\n")
		for written := 0; written < total; written += len(line) {
			if _, err := os.Stderr.Write(line); err != nil {
				return 3
			}
		}

		fmt.Fprintln(os.Stderr, "last words")

		return code
	default:
		fmt.Fprintf(os.Stderr, "unknown helper mode %q\n", mode)

		return 2
	}
}
