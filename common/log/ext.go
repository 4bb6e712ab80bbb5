package log

import (
	"fmt"
	"os"
	"strings"

	"gitlab.com/aquachain/aquahash/common/sense"
)

// NoSync drops the write lock around stream handlers when NO_LOGSYNC is truthy.
var NoSync = sense.EnvBool("NO_LOGSYNC")

// Printf logs a formatted message at info level on the root logger.
func Printf(msg string, args ...any) {
	root.writeskip(0, sprintf(msg, args), LvlInfo, nil)
}

func sprintf(msg string, args []any) string {
	return fmt.Sprintf(strings.TrimSuffix(msg, "\n"), args...)
}

var testloghandler Handler

// ResetForTesting routes the root logger to plain stderr at warn level, or at
// TESTLOGLVL / LOGLEVEL when set. Test packages call it from init.
func ResetForTesting() {
	if testloghandler != nil {
		return
	}
	lvl := LvlWarn
	envlvl := sense.Getenv("TESTLOGLVL")
	if envlvl == "" {
		envlvl = sense.Getenv("LOGLEVEL")
	}
	// TESTLOGLVL=0 means unset, not crit.
	if envlvl != "" && envlvl != "0" {
		lvl = MustParseLevel(envlvl)
	}
	testloghandler = LvlFilterHandler(lvl, StreamHandler(os.Stderr, TerminalFormat(false)))
	Root().SetHandler(testloghandler)
}

// ParseLevel accepts a level name or its number, 0 (crit) to 5 (trace).
// Numbers above 5 mean trace.
func ParseLevel(s string) (Lvl, error) {
	switch strings.ToLower(s) {
	case "":
		return LvlInfo, nil
	case "trace", "5", "6", "7", "8", "9":
		return LvlTrace, nil
	case "debug", "4":
		return LvlDebug, nil
	case "info", "3":
		return LvlInfo, nil
	case "warn", "warning", "2":
		return LvlWarn, nil
	case "error", "1":
		return LvlError, nil
	case "crit", "critical", "0":
		return LvlCrit, nil
	}
	return LvlInfo, fmt.Errorf("unknown log level %q", s)
}

// MustParseLevel is ParseLevel for environment values, panicking on garbage.
func MustParseLevel(s string) Lvl {
	lvl, err := ParseLevel(s)
	if err != nil {
		panic(err)
	}
	return lvl
}

func newRoot(handler Handler) *logger {
	x := &logger{[]interface{}{}, new(swapHandler)}
	x.SetHandler(handler)
	return x
}

// levelFromEnv checks LOGLEVEL, TESTLOGLVL and LOGLVL in that order.
func levelFromEnv() Lvl {
	for _, name := range []string{"LOGLEVEL", "TESTLOGLVL", "LOGLVL"} {
		if v := sense.Getenv(name); v != "" {
			return MustParseLevel(v)
		}
	}
	return LvlInfo
}

func newRootHandler() Handler {
	if sense.FeatureEnabled("JSONLOG", "jsonlog") {
		return CallerFileHandler(StreamHandler(os.Stderr, JsonFormatEx(false, true)))
	}
	return TerminalHandler(levelFromEnv())
}

// TerminalHandler writes records up to lvl to stderr, in colour when stderr
// is a terminal.
func TerminalHandler(lvl Lvl) Handler {
	out, usecolor := terminalOutput()
	return LvlFilterHandler(lvl, CallerFileHandler(StreamHandler(out, TerminalFormat(usecolor))))
}
