package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/tabwriter"

	"github.com/CTAG07/Fictionary/pkg/charkov"
	"github.com/CTAG07/Fictionary/pkg/library"
	"github.com/dustin/go-humanize"
)

// errNoLibrary is returned when a command needs the library database and
// it has not been created yet.
var errNoLibrary = errors.New("the fictionary library has not been created yet")

func cmdWords(ctx context.Context, a *app, args []string) error {
	fs, common := a.newFlagSet("words", "[-c count] [-m min] [-x max] [-p file | -f name]")
	defaults := DefaultConfig()
	count := fs.Int("c", defaults.Count, "the number of words to generate")
	minLength := fs.Int("m", defaults.MinLength, "the minimum word length")
	maxLength := fs.Int("x", defaults.MaxLength, "the maximum word length")
	path := fs.String("p", "", "the path to a fictionary file")
	name := fs.String("f", defaults.DefaultFictionary, "the name of a fictionary")
	attempts := fs.Int("attempts", defaults.MaxAttempts, "candidates to try per word before giving up")
	seed := fs.Uint64("seed", 0, "seed for reproducible output (0 picks a random seed)")

	set, err := a.parse(fs, common, args)
	if err != nil {
		return err
	}
	if err = wantArgs(fs, 0, 0); err != nil {
		return err
	}
	if !set["c"] {
		*count = a.config.Count
	}
	if !set["m"] {
		*minLength = a.config.MinLength
	}
	if !set["x"] {
		*maxLength = a.config.MaxLength
	}
	if !set["f"] {
		*name = a.config.DefaultFictionary
	}
	if !set["attempts"] {
		*attempts = a.config.MaxAttempts
	}

	if err = charkov.ValidateLengths(*minLength, *maxLength); err != nil {
		return err
	}

	ch, err := a.resolveChain(ctx, *path, *name)
	if err != nil {
		return err
	}

	r := newRand(*seed)
	for i := 0; i < *count; i++ {
		word, err := ch.Word(r, *minLength, *maxLength, charkov.WithMaxAttempts(*attempts))
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, word)
	}
	return nil
}

func cmdCompile(ctx context.Context, a *app, args []string) error {
	fs, common := a.newFlagSet("compile", "[-name NAME] WORDLIST [OUTPUT]")
	name := fs.String("name", "", "store the fictionary in the library under this name instead of a file")
	minLength := fs.Int("min", DefaultConfig().WordlistMinLength, "skip words shorter than this many characters")
	maxLength := fs.Int("max", 0, "skip words longer than this many characters (0 for no limit)")
	lower := fs.Bool("lower", false, "fold words to lower case")
	reject := fs.String("reject", "", "skip words matching this regular expression")

	set, err := a.parse(fs, common, args)
	if err != nil {
		return err
	}
	if *name != "" {
		err = wantArgs(fs, 1, 1)
	} else {
		err = wantArgs(fs, 2, 2)
	}
	if err != nil {
		return err
	}
	if !set["min"] {
		*minLength = a.config.WordlistMinLength
	}

	opts := []charkov.WordlistOption{
		charkov.WithMinLength(*minLength),
		charkov.WithMaxLength(*maxLength),
		charkov.WithLowercase(*lower),
	}
	if *reject != "" {
		re, err := regexp.Compile(*reject)
		if err != nil {
			return fmt.Errorf("invalid -reject expression: %w", err)
		}
		opts = append(opts, charkov.WithRejectRegex(re))
	}

	ch, err := a.compileWordlist(ctx, fs.Arg(0), charkov.NewWordlist(opts...))
	if err != nil {
		return err
	}

	if *name != "" {
		lib, closeLib, err := a.openLibrary(ctx, true)
		if err != nil {
			return err
		}
		defer closeLib()
		return lib.Save(ctx, *name, ch)
	}

	output := fs.Arg(1)
	if err = library.WriteFile(output, ch); err != nil {
		return err
	}
	a.logger.InfoContext(ctx, "Fictionary written", slog.String("path", output))
	return nil
}

// compileWordlist trains a fresh counter on the wordlist at path ("-" for
// standard input) and compiles it.
func (a *app) compileWordlist(ctx context.Context, path string, wl *charkov.Wordlist) (*charkov.Chain, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func(f *os.File) {
			_ = f.Close()
		}(f)
		r = f
	}

	counter := charkov.NewCounter()
	counter.SetLogger(a.logger)
	fed, err := counter.Train(ctx, r, wl)
	if err != nil {
		return nil, err
	}
	if fed == 0 {
		return nil, fmt.Errorf("%s: no usable words in wordlist", path)
	}
	return charkov.Compile(counter)
}

func cmdDataDir(_ context.Context, a *app, args []string) error {
	fs, common := a.newFlagSet("data-dir", "")
	if _, err := a.parse(fs, common, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 0, 0); err != nil {
		return err
	}
	dir, err := localDataDir()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, dir)
	return nil
}

func cmdDataDirs(_ context.Context, a *app, args []string) error {
	fs, common := a.newFlagSet("data-dirs", "")
	if _, err := a.parse(fs, common, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 0, 0); err != nil {
		return err
	}
	for _, dir := range dataDirs() {
		fmt.Fprintln(a.stdout, dir)
	}
	return nil
}

func cmdNames(ctx context.Context, a *app, args []string) error {
	fs, common := a.newFlagSet("names", "")
	if _, err := a.parse(fs, common, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 0, 0); err != nil {
		return err
	}

	files, err := fictionaryFiles(dataDirs())
	if err != nil {
		return err
	}
	var stored []string
	lib, closeLib, err := a.openLibrary(ctx, false)
	switch {
	case err == nil:
		defer closeLib()
		if stored, err = lib.Names(ctx); err != nil {
			return err
		}
	case !errors.Is(err, errNoLibrary):
		return err
	}

	for _, name := range sortedNames(files, stored) {
		fmt.Fprintln(a.stdout, name)
	}
	return nil
}

func cmdImport(ctx context.Context, a *app, args []string) error {
	fs, common := a.newFlagSet("import", "NAME FILE")
	if _, err := a.parse(fs, common, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 2, 2); err != nil {
		return err
	}
	lib, closeLib, err := a.openLibrary(ctx, true)
	if err != nil {
		return err
	}
	defer closeLib()
	return lib.ImportFile(ctx, fs.Arg(0), fs.Arg(1))
}

func cmdExport(ctx context.Context, a *app, args []string) error {
	fs, common := a.newFlagSet("export", "NAME FILE")
	if _, err := a.parse(fs, common, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 2, 2); err != nil {
		return err
	}
	lib, closeLib, err := a.openLibrary(ctx, false)
	if err != nil {
		return err
	}
	defer closeLib()
	return lib.ExportFile(ctx, fs.Arg(0), fs.Arg(1))
}

func cmdRemove(ctx context.Context, a *app, args []string) error {
	fs, common := a.newFlagSet("remove", "NAME")
	if _, err := a.parse(fs, common, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1, 1); err != nil {
		return err
	}
	lib, closeLib, err := a.openLibrary(ctx, false)
	if err != nil {
		return err
	}
	defer closeLib()
	return lib.Remove(ctx, fs.Arg(0))
}

func cmdStats(ctx context.Context, a *app, args []string) error {
	fs, common := a.newFlagSet("stats", "[-p file] [NAME]")
	path := fs.String("p", "", "the path to a fictionary file")
	if _, err := a.parse(fs, common, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 0, 1); err != nil {
		return err
	}

	if *path != "" || fs.NArg() == 1 {
		ch, err := a.resolveChain(ctx, *path, fs.Arg(0))
		if err != nil {
			return err
		}
		printChainStats(a.stdout, ch.Stats())
		return nil
	}

	lib, closeLib, err := a.openLibrary(ctx, false)
	if err != nil {
		return err
	}
	defer closeLib()
	stats, err := lib.GetStats(ctx)
	if err != nil {
		return err
	}
	printLibraryStats(a.stdout, stats)
	return nil
}

func printChainStats(w io.Writer, s charkov.ChainStats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Training words:\t%s\n", humanize.Comma(int64(s.Words)))
	fmt.Fprintf(tw, "Contexts:\t%s\n", humanize.Comma(int64(s.Contexts)))
	fmt.Fprintf(tw, "Transitions:\t%s\n", humanize.Comma(int64(s.Transitions)))
	fmt.Fprintf(tw, "Total frequency:\t%s\n", humanize.Comma(int64(s.TotalFrequency)))
	fmt.Fprintf(tw, "Starting characters:\t%d\n", s.StartingChars)
	fmt.Fprintf(tw, "Alphabet:\t%d\n", s.Alphabet)
	_ = tw.Flush()
}

func printLibraryStats(w io.Writer, s *library.Stats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tWORDS\tCONTEXTS\tTRANSITIONS\tSIZE\tSAVED")
	for _, info := range s.Fictionaries {
		cs := s.Chains[info.Name]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			info.Name,
			humanize.Comma(int64(info.Words)),
			humanize.Comma(int64(info.Contexts)),
			humanize.Comma(int64(cs.Transitions)),
			humanize.Bytes(uint64(info.Size)),
			humanize.Time(info.CreatedAt),
		)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d fictionaries, %s training words, %s\n",
		len(s.Fictionaries), humanize.Comma(int64(s.TotalWords)), humanize.Bytes(uint64(s.TotalBytes)))
}

func cmdDump(ctx context.Context, a *app, args []string) error {
	fs, common := a.newFlagSet("dump", "[-f name] [FILE]")
	name := fs.String("f", "", "dump a fictionary by name instead of a file")
	if _, err := a.parse(fs, common, args); err != nil {
		return err
	}
	if *name != "" {
		if err := wantArgs(fs, 0, 0); err != nil {
			return err
		}
	} else if err := wantArgs(fs, 1, 1); err != nil {
		return err
	}

	ch, err := a.resolveChain(ctx, fs.Arg(0), *name)
	if err != nil {
		return err
	}
	return ch.ExportJSON(a.stdout)
}

func cmdVersion(_ context.Context, a *app, args []string) error {
	fs, common := a.newFlagSet("version", "")
	if _, err := a.parse(fs, common, args); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s %s (commit %s, built %s)\n", appName, Version, Commit, BuildDate)
	return nil
}

// resolveChain loads a chain from an explicit file path, or else by name:
// first from <name>.fictionary in the data directories, then from the
// library database.
func (a *app) resolveChain(ctx context.Context, path, name string) (*charkov.Chain, error) {
	if path != "" {
		a.logger.DebugContext(ctx, "Loading fictionary file", slog.String("path", path))
		return library.ReadFile(path)
	}

	dirs := dataDirs()
	files, err := fictionaryFiles(dirs)
	if err != nil {
		return nil, err
	}
	if p, ok := files[name]; ok {
		a.logger.DebugContext(ctx, "Loading fictionary file", slog.String("path", p))
		return library.ReadFile(p)
	}

	lib, closeLib, err := a.openLibrary(ctx, false)
	if err == nil {
		defer closeLib()
		ch, err := lib.Load(ctx, name)
		if !errors.Is(err, library.ErrNotFound) {
			return ch, err
		}
	} else if !errors.Is(err, errNoLibrary) {
		return nil, err
	}

	return nil, fmt.Errorf("could not find %s%s in the data dirs (%s) or in the library",
		name, library.FileExtension, strings.Join(dirs, ", "))
}

// databasePath returns the configured data source, or fictionary.db in the
// most local data directory.
func (a *app) databasePath() (string, error) {
	if a.config.DatabasePath != "" {
		return a.config.DatabasePath, nil
	}
	dir, err := localDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName+".db"), nil
}

// isMemoryDSN reports whether dsn names an in-memory SQLite database.
func isMemoryDSN(dsn string) bool {
	file, query, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	return file == ":memory:" || strings.Contains(query, "mode=memory")
}

// openLibrary opens the library database. Unless create is set, a database
// file that does not exist yet yields errNoLibrary instead of an empty new
// database. In-memory databases are always opened.
func (a *app) openLibrary(ctx context.Context, create bool) (*library.Library, func(), error) {
	dsn, err := a.databasePath()
	if err != nil {
		return nil, nil, err
	}
	memory := isMemoryDSN(dsn)
	file, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	switch {
	case memory:
	case create:
		if err = os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, nil, err
		}
	default:
		if _, err = os.Stat(file); errors.Is(err, os.ErrNotExist) {
			return nil, nil, errNoLibrary
		}
	}

	db, err := initDB(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err = library.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to setup library schema: %w", err)
	}
	lib, err := library.NewLibrary(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to prepare library: %w", err)
	}
	lib.SetLogger(a.logger)
	a.logger.DebugContext(ctx, "Library opened", slog.String("database", dsn))

	return lib, func() {
		lib.Close()
		if err := db.Close(); err != nil {
			a.logger.Error("Failed to close database", "error", err)
		}
	}, nil
}

// newRand returns a generator seeded with seed, or with a random seed when
// seed is zero.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}
