// Command planetctl inspects the generated universe offline: golden-vector
// checks, single planet lookups, full scans and snapshot exports.
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
	"sort"
	"syscall"

	"planetinfo-server/internal/shared/config"
	"planetinfo-server/internal/shared/logger"
)

type env struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
}

type command struct {
	usage string
	run   func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"verify":        {"verify", runVerify},
	"planet":        {"planet <map-key>", runPlanet},
	"galaxies":      {"galaxies", runGalaxies},
	"scan":          {"scan [-workers n]", runScan},
	"dump-json":     {"dump-json <file>", runDumpJSON},
	"export-sqlite": {"export-sqlite <file>", runExportSQLite},
	"preview":       {"preview [-o file.png] [-tile px] [-sixel] <map-key>", runPreview},
	"textures":      {"textures <dir>", runTextures},
	"token":         {"token [-subject name]", runToken},
}

var errUsage = errors.New("usage")

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: planetctl <command> [args]")
	fmt.Fprintln(w, "commands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "planetctl: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := &env{
		cfg:    cfg,
		logger: logger.New(cfg.Logging, stderr).With("component", "planetctl", "command", args[0]),
		stdout: stdout,
	}
	if err := cmd.run(ctx, e, args[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "usage: planetctl %s\n", cmd.usage)
			return 2
		}
		fmt.Fprintf(stderr, "planetctl %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

// parseFlags parses a subcommand's flags and returns the positional
// arguments, which must number exactly want.
func parseFlags(fs *flag.FlagSet, args []string, want int) ([]string, error) {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != want {
		return nil, errUsage
	}
	return fs.Args(), nil
}
