// Command fictionary generates plausible but fictitious words from
// character-level Markov chains trained on wordlists.
//
// Usage:
//
//	fictionary [command] [flags] [args]
//
// Without a command, fictionary behaves like "fictionary words".
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// errUsage reports a bad command line after the usage text was printed.
var errUsage = errors.New("invalid usage")

// app carries what every subcommand needs: output streams, the loaded
// config and a logger built from it.
type app struct {
	stdout io.Writer
	stderr io.Writer
	config *Config
	logger *slog.Logger
}

var commands = map[string]func(ctx context.Context, a *app, args []string) error{
	"words":     cmdWords,
	"compile":   cmdCompile,
	"data-dir":  cmdDataDir,
	"data-dirs": cmdDataDirs,
	"names":     cmdNames,
	"import":    cmdImport,
	"export":    cmdExport,
	"remove":    cmdRemove,
	"stats":     cmdStats,
	"dump":      cmdDump,
	"serve":     cmdServe,
	"version":   cmdVersion,
}

var summaries = map[string]string{
	"words":     "generate fictionary words (default)",
	"compile":   "compile a fictionary from a wordlist",
	"data-dir":  "print the most local data directory",
	"data-dirs": "print every directory searched for fictionaries",
	"names":     "print the available fictionary names",
	"import":    "store a fictionary file in the library",
	"export":    "write a library fictionary to a file",
	"remove":    "delete a fictionary from the library",
	"stats":     "print library or fictionary statistics",
	"dump":      "print a fictionary as JSON",
	"serve":     "serve the library over HTTP",
	"version":   "print version information",
}

var commandOrder = []string{"words", "compile", "data-dir", "data-dirs", "names", "import", "export", "remove", "stats", "dump", "serve", "version"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fatal("%v", err)
	}
}

// run dispatches args to a subcommand. A first argument that is not a
// command name is treated as a flag or argument of "words".
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr, config: DefaultConfig()}
	a.logger = newLogger(stderr, a.config.LogLevel)

	name := "words"
	if len(args) > 0 {
		switch args[0] {
		case "help", "-h", "-help", "--help":
			usage(stderr)
			return nil
		}
		if _, ok := commands[args[0]]; ok {
			name, args = args[0], args[1:]
		}
	}
	err := commands[name](ctx, a, args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

// newFlagSet returns a flag set for a subcommand with the flags every
// subcommand shares.
func (a *app) newFlagSet(name, synopsis string) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	common := &commonFlags{}
	fs.StringVar(&common.configPath, "config", "", "path to a JSON config file, created with defaults if missing")
	fs.StringVar(&common.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: %s %s %s\n\n%s\n\nFlags:\n", appName, name, synopsis, summaries[name])
		fs.PrintDefaults()
	}
	return fs, common
}

type commonFlags struct {
	configPath string
	logLevel   string
}

// parse parses args into fs, then loads the config and builds the logger.
// It returns the names of the flags that were set explicitly.
func (a *app) parse(fs *flag.FlagSet, common *commonFlags, args []string) (map[string]bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, flag.ErrHelp
		}
		return nil, errUsage
	}

	if common.configPath != "" {
		config, err := LoadConfig(common.configPath)
		if err != nil {
			return nil, err
		}
		a.config = config
	}
	if common.logLevel != "" {
		a.config.LogLevel = common.logLevel
	}
	a.logger = newLogger(a.stderr, a.config.LogLevel)

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set, nil
}

// wantArgs checks the number of positional arguments left in fs.
func wantArgs(fs *flag.FlagSet, min, max int) error {
	if n := fs.NArg(); n < min || n > max {
		fmt.Fprintf(fs.Output(), "%s: wrong number of arguments\n", fs.Name())
		fs.Usage()
		return errUsage
	}
	return nil
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `Usage: %s [command] [flags] [args]

Generate fictitious words that look like they belong to a language.

Commands:
`, appName)
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-10s %s\n", name, summaries[name])
	}
	fmt.Fprintf(w, `
Every command accepts -config FILE and -log-level LEVEL.
Run '%s COMMAND -h' for the flags of a command.

Examples:
  %s -c 5                               Five words from the default fictionary
  %s -f german -m 6 -x 9                Words of 6 to 9 characters
  %s compile words.txt mine.fictionary  Compile a wordlist to a file
  %s compile -name mine words.txt       Compile a wordlist into the library
  %s serve -addr :8080                  Serve the library over HTTP

`, appName, appName, appName, appName, appName, appName)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, appName+": "+format+"\n", args...)
	os.Exit(1)
}
