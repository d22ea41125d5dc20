// Command storefront is a terminal frontend for the grocery storefront API.
//
// Usage:
//
//	storefront [flags] <command> [args]
//
// Configuration comes from STOREFRONT_CONFIG (a YAML file) and the
// environment; see internal/config.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/Sternrassler/storefront-client/internal/config"
	"github.com/Sternrassler/storefront-client/pkg/logging"
	"github.com/Sternrassler/storefront-client/pkg/metrics"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(stderr)
	apiURL := fs.String("api", "", "API base URL (overrides "+config.EnvAPIURL+")")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error, disabled")
	showMetrics := fs.Bool("metrics", false, "print client metrics after the command")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "storefront: unknown command %q\n", name)
		fs.Usage()
		return exitUsage
	}
	cmdArgs := fs.Args()[1:]
	if len(cmdArgs) < cmd.minArgs || (cmd.maxArgs >= 0 && len(cmdArgs) > cmd.maxArgs) {
		fmt.Fprintf(stderr, "usage: storefront %s %s\n", name, cmd.usage)
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "storefront: %v\n", err)
		return exitFailed
	}
	if *apiURL != "" {
		cfg.API.BaseURL = *apiURL
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "storefront: %v\n", err)
		return exitFailed
	}

	logCfg := cfg.Logging()
	logCfg.Output = stderr
	logging.Setup(logCfg)

	a, err := newApp(ctx, cfg, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "storefront: %v\n", err)
		return exitFailed
	}
	defer a.Close()

	code := exitOK
	if err := cmd.run(ctx, a, cmdArgs); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(stderr, "storefront: %v\n", err)
		}
		code = exitFailed
	}

	if *showMetrics {
		if err := printMetrics(stderr); err != nil {
			fmt.Fprintf(stderr, "storefront: %v\n", err)
		}
	}
	return code
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "usage: storefront [flags] <command> [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(tw, "  %s %s\t%s\n", name, cmd.usage, cmd.summary)
	}
	tw.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	fs.PrintDefaults()
}

func printMetrics(w io.Writer) error {
	samples, err := metrics.Snapshot()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tVALUE")
	for _, s := range samples {
		fmt.Fprintf(tw, "%s\t%g\n", s.Name, s.Value)
	}
	return tw.Flush()
}
