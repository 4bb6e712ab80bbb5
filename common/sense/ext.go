// Package sense reads feature toggles from the environment and command line
// before any flag parsing has happened.
package sense

import (
	"fmt"
	"os"
	"strings"
)

// envPrefix namespaces every variable read here; the bare name wins when both
// are set.
const envPrefix = "AQUAHASH_"

var main_argv = os.Args // allow test package to override

func lookupEnv(name string) (string, bool) {
	if x, ok := os.LookupEnv(name); ok {
		return x, true
	}
	return os.LookupEnv(envPrefix + name)
}

// Getenv returns the value of name, falling back to the AQUAHASH_ prefixed
// variant so that tool and library settings can share one namespace.
func Getenv(name string) string {
	x, _ := lookupEnv(name)
	return x
}

// FeatureEnabled returns true if the os env is truthy, or flagname is found in command line
func FeatureEnabled(envname string, flagname string) bool {
	if envname == "" && flagname == "" {
		panic("FeatureEnabled called with no args")
	}
	if envname != "" && EnvBool(envname) {
		return true
	}
	return flagname != "" && FastParseArgsBool(flagname)
}

// FastParseArgs is a quick way to check if a flag has been FOUND on the actual command line
//
// returns true if flagname is found, and the next argument
// if there is one. Completely skips first arg.
func FastParseArgs(flagname string) (bool, string) {
	if strings.Contains(flagname, "-") {
		panic("here, flagname should not contain -")
	}
	argv := main_argv
	for i := 1; i < len(argv); i++ {
		if k, v, ok := strings.Cut(argv[i], "="); ok && strings.TrimLeft(k, "-") == flagname {
			return true, v
		}
		if strings.TrimLeft(argv[i], "-") == flagname && strings.HasPrefix(argv[i], "-") {
			if i+1 < len(argv) {
				return true, argv[i+1]
			}
			return true, ""
		}
	}
	return false, ""
}

// FastParseArgsBool is a quick way to check if a bool flag has been FOUND on the actual command line
func FastParseArgsBool(flagname string) bool {
	x, next := FastParseArgs(flagname)
	if !x || next == "" {
		return x
	}
	// a following positional argument is not a value unless it parses as one
	return boolString(next, true, true)
}

func boolString(s string, unset bool, unparsable bool) bool {
	switch strings.ToLower(s) {
	case "":
		return unset
	case "true", "yes", "1", "on", "enabled", "enable":
		return true
	case "false", "no", "0", "off", "disabled", "disable":
		return false
	default:
		if unparsable != unset {
			fmt.Fprintf(os.Stderr, "warn: unknown bool string: %q\n", s)
		}
		return unparsable
	}
}

// EnvBool returns false if empty/unset/falsy, true if otherwise non-empty
func EnvBool(name string) bool {
	x, ok := lookupEnv(name)
	if !ok {
		return false
	}
	return boolString(x, false, true)
}

// EnvBoolDisabled returns true only if nonempty+falsy (such as "0" or "false")
//
// a bit different logic than !EnvBool
func EnvBoolDisabled(name string) bool {
	x, ok := lookupEnv(name)
	if !ok {
		return false
	}
	return !boolString(x, true, true)
}
