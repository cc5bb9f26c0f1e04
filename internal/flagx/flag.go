// Package flagx lets several components parse their own flags out of the
// same os.Args without tripping over each other's unknown flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// Set lists the flags a component owns. Valued flags may take their value
// from the next argument; Bool flags never do.
type Set struct {
	Valued []string
	Bool   []string
}

// Filter returns the subset of args that belongs to s, keeping values for
// valued flags. Both "-f value" and "-f=value" forms are recognised.
func (s Set) Filter(args []string) []string {
	kind := make(map[string]bool, len(s.Valued)+len(s.Bool))
	for _, f := range s.Valued {
		kind[f] = true
	}
	for _, f := range s.Bool {
		kind[f] = false
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		if name, _, ok := strings.Cut(arg, "="); ok {
			if _, known := kind[name]; known {
				filtered = append(filtered, arg)
			}
			continue
		}

		valued, known := kind[arg]
		if !known {
			continue
		}
		filtered = append(filtered, arg)
		if valued && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}
	return filtered
}

// FilterArgs keeps only the allowed valued flags from args.
func FilterArgs(args []string, allowedFlags []string) []string {
	return Set{Valued: allowedFlags}.Filter(args)
}

// ConfigPath returns the JSON config file given with -c or -config, or "".
func ConfigPath() string {
	return configPath(os.Args[1:])
}

func configPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}
