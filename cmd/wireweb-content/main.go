// Command wireweb-content runs a content server: it negotiates a
// rendering stack with the client and serves files from a root directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/jroosing/wireweb/internal/config"
	"github.com/jroosing/wireweb/internal/contentserver"
	"github.com/jroosing/wireweb/internal/logging"
	"github.com/jroosing/wireweb/internal/protocol"
	"github.com/jroosing/wireweb/internal/store"
	"github.com/jroosing/wireweb/internal/wireserver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

type cliFlags struct {
	configPath string
	listen     string
	directory  string
	stacks     string
	stacksFile string
	verbose    int
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&f.listen, "listen", "", "Override listen address (host:port)")
	flag.StringVar(&f.directory, "directory", "", "Content root directory")
	flag.StringVar(&f.directory, "d", "", "Shorthand for -directory")
	flag.StringVar(&f.stacks, "stacks", "", "Comma-separated list of recognized 5-byte stack tags")
	flag.StringVar(&f.stacks, "s", "", "Shorthand for -stacks")
	flag.StringVar(&f.stacksFile, "stacks-file", "", "Path to a flat stacks.txt seed file")
	flag.IntVar(&f.verbose, "verbose", 0, "Verbosity level (0=info, 1 or higher=debug)")
	flag.IntVar(&f.verbose, "v", 0, "Shorthand for -verbose")
	flag.Parse()
	return f
}

func run() error {
	flags := parseFlags()

	cfg, err := config.Load(config.ResolveConfigPath(flags.configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyOverrides(cfg, flags)

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
		IncludePID:       cfg.Logging.IncludePID,
		ExtraFields:      cfg.Logging.ExtraFields,
	})

	tags := tagSet{}
	for _, tag := range cfg.Content.Stacks {
		if len(tag) == protocol.StackTagSize {
			tags[tag] = struct{}{}
		}
	}
	if cfg.Content.StacksFile != "" {
		if err := store.SeedStacksFile(tags, cfg.Content.StacksFile); err != nil {
			return fmt.Errorf("seed stacks file: %w", err)
		}
	}
	if len(tags) == 0 {
		return fmt.Errorf("no recognized stacks configured")
	}

	version := protocol.Version{Major: cfg.Version.Major, Minor: cfg.Version.Minor, Patch: cfg.Version.Patch}
	handler := contentserver.NewHandler(cfg.Content.Root, tags, version, logger)

	srv := &wireserver.Server{Logger: logger, Handler: handler}
	addr := net.JoinHostPort(cfg.Content.Host, strconv.Itoa(cfg.Content.Port))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("content server starting", "addr", addr, "root", cfg.Content.Root, "stacks", tags, "version", version)
	if err := srv.Run(ctx, addr); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

// tagSet implements store.StackPutter, letting SeedStacksFile's fixed-width
// parser populate a recognized-tag set directly: the content server only
// needs to know which tags it will serve, not a rendering plugin path.
type tagSet map[string]struct{}

func (t tagSet) PutStack(tag, _ string) error {
	t[tag] = struct{}{}
	return nil
}

func applyOverrides(cfg *config.Config, f cliFlags) {
	if f.directory != "" {
		cfg.Content.Root = f.directory
	}
	if f.stacks != "" {
		cfg.Content.Stacks = strings.Split(f.stacks, ",")
	}
	if f.stacksFile != "" {
		cfg.Content.StacksFile = f.stacksFile
	}
	if f.listen != "" {
		if host, port, err := net.SplitHostPort(f.listen); err == nil {
			cfg.Content.Host = host
			if p, err := strconv.Atoi(port); err == nil {
				cfg.Content.Port = p
			}
		}
	}
	if f.verbose > 0 {
		cfg.Logging.Level = "DEBUG"
	}
}
