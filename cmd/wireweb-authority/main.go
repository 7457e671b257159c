// Command wireweb-authority runs an authority server: it answers
// authority-resolve requests out of a dns_records SQLite store.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jroosing/wireweb/internal/adminapi"
	"github.com/jroosing/wireweb/internal/authorityserver"
	"github.com/jroosing/wireweb/internal/config"
	"github.com/jroosing/wireweb/internal/logging"
	"github.com/jroosing/wireweb/internal/protocol"
	authoritystore "github.com/jroosing/wireweb/internal/store/authority"
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
	dbPath     string
	overwrite  bool
	verbose    int
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&f.listen, "listen", "", "Override listen address (host:port)")
	flag.StringVar(&f.dbPath, "db", "", "Path to the dns_records SQLite database")
	flag.BoolVar(&f.overwrite, "overwrite", false, "Drop and recreate the dns_records table on startup")
	flag.BoolVar(&f.overwrite, "o", false, "Shorthand for -overwrite")
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

	st, err := authoritystore.Open(cfg.Authority.DB)
	if err != nil {
		return fmt.Errorf("open authority store: %w", err)
	}
	defer st.Close()

	if flags.overwrite {
		logger.Info("overwrite requested, recreating dns_records table")
		if err := st.Reset(); err != nil {
			return fmt.Errorf("reset authority store: %w", err)
		}
	}

	version := protocol.Version{Major: cfg.Version.Major, Minor: cfg.Version.Minor, Patch: cfg.Version.Patch}
	handler := authorityserver.NewHandler(st, version, logger)

	srv := &wireserver.Server{Logger: logger, Handler: handler}
	addr := net.JoinHostPort(cfg.Authority.Host, strconv.Itoa(cfg.Authority.Port))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var adminSrv *adminapi.Server
	if cfg.API.Enabled {
		adminSrv = adminapi.New(cfg, logger, st, nil, nil)
		go func() {
			logger.Info("admin api starting", "addr", adminSrv.Addr())
			if serveErr := adminSrv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				logger.Error("admin api error", "error", serveErr)
			}
		}()
	}

	logger.Info("authority server starting", "addr", addr, "db", cfg.Authority.DB, "version", version)
	err = srv.Run(ctx, addr)

	if adminSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = adminSrv.Shutdown(shutdownCtx)
		shutdownCancel()
	}

	if err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func applyOverrides(cfg *config.Config, f cliFlags) {
	if f.dbPath != "" {
		cfg.Authority.DB = f.dbPath
	}
	if f.listen != "" {
		if host, port, err := net.SplitHostPort(f.listen); err == nil {
			cfg.Authority.Host = host
			if p, err := strconv.Atoi(port); err == nil {
				cfg.Authority.Port = p
			}
		}
	}
	if f.verbose > 0 {
		cfg.Logging.Level = "DEBUG"
	}
}
