// Package flagx holds the small amount of command-line plumbing shared by
// the configuration loaders: filtering os.Args down to the flags a loader
// owns, and picking out the config-file locations before the main flag set
// is parsed.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the subset of args that belongs to allowedFlags,
// keeping each flag's value when it is passed separately.
//
// Both "-f value" and "-f=value" forms are recognised. A token following an
// allowed flag is only taken as its value if it does not start with "-".
// The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// JsonConfigFlags returns the JSON config path given via -c or -config,
// or "" when neither is present.
func JsonConfigFlags() string {
	return lookupString("json", "path to JSON config file", "c", "config")
}

// EnvFileFlags returns the dotenv path given via -env, or "" when absent.
func EnvFileFlags() string {
	return lookupString("env", "path to .env file", "env")
}

// lookupString parses only the named flags out of os.Args. All names bind to
// the same variable, so the last occurrence wins.
func lookupString(set, usage string, names ...string) string {
	var value string

	allowed := make([]string, 0, len(names))
	for _, n := range names {
		allowed = append(allowed, "-"+n)
	}
	args := FilterArgs(os.Args[1:], allowed)

	fs := flag.NewFlagSet(set, flag.ContinueOnError)
	fs.SetOutput(discard{})
	for _, n := range names {
		fs.StringVar(&value, n, "", usage)
	}
	_ = fs.Parse(args)

	return value
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
