// Command wireweb-client drives the resolution coordinator for a
// single address: it resolves the address and, unless -resolve-only is
// set, fetches content from the resolved endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jroosing/wireweb/internal/adminapi"
	"github.com/jroosing/wireweb/internal/adminapi/models"
	"github.com/jroosing/wireweb/internal/client"
	"github.com/jroosing/wireweb/internal/config"
	"github.com/jroosing/wireweb/internal/coordinator"
	"github.com/jroosing/wireweb/internal/logging"
	"github.com/jroosing/wireweb/internal/protocol"
	"github.com/jroosing/wireweb/internal/resolver"
	"github.com/jroosing/wireweb/internal/store"
	clientstore "github.com/jroosing/wireweb/internal/store/client"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

type cliFlags struct {
	configPath     string
	dbPath         string
	dnsAddr        string
	cacherAddr     string
	address        string
	resolveOnly    bool
	overwrite      bool
	integrityCheck bool
	stacksFile     string
	verbose        int
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&f.dbPath, "db", "", "Path to the client's ephemeral/stacks SQLite database")
	flag.StringVar(&f.dnsAddr, "dns-provider", "", "Authority server address to start resolution from")
	flag.StringVar(&f.dnsAddr, "d", "", "Shorthand for -dns-provider")
	flag.StringVar(&f.cacherAddr, "dns-cacher", "", "Cache server address to try before the authority walk")
	flag.StringVar(&f.address, "resolve", "", "Address to resolve (and, unless -resolve-only, fetch)")
	flag.StringVar(&f.address, "r", "", "Shorthand for -resolve")
	flag.BoolVar(&f.resolveOnly, "resolve-only", false, "Resolve the address without fetching content")
	flag.BoolVar(&f.overwrite, "overwrite", false, "Drop and recreate the client's local tables on startup")
	flag.BoolVar(&f.overwrite, "o", false, "Shorthand for -overwrite")
	flag.BoolVar(&f.integrityCheck, "integrity-check", false, "Cross-validate the losing resolution path")
	flag.StringVar(&f.stacksFile, "stacks-file", "", "Path to a flat stacks.txt seed file for rendering plugins")
	flag.IntVar(&f.verbose, "verbose", 0, "Verbosity level (0=info, 1 or higher=debug)")
	flag.IntVar(&f.verbose, "v", 0, "Shorthand for -verbose")
	flag.Parse()
	return f
}

func run() error {
	flags := parseFlags()
	if flags.address == "" {
		return fmt.Errorf("usage: wireweb-client -resolve <address> [flags]")
	}

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

	st, err := clientstore.Open(cfg.Client.DB)
	if err != nil {
		return fmt.Errorf("open client store: %w", err)
	}
	defer st.Close()

	if flags.overwrite {
		logger.Info("overwrite requested, recreating client tables")
		if err := st.Reset(); err != nil {
			return fmt.Errorf("reset client store: %w", err)
		}
	}
	if flags.stacksFile != "" {
		if err := store.SeedStacksFile(st, flags.stacksFile); err != nil {
			return fmt.Errorf("seed stacks file: %w", err)
		}
	}

	version := protocol.Version{Major: cfg.Version.Major, Minor: cfg.Version.Minor, Patch: cfg.Version.Patch}
	authority := resolver.NewAuthorityResolver(resolver.DialTCP, version, logger)

	var remoteCache *resolver.CacheResolver
	if cfg.Client.CacherAddr != "" {
		remoteCache = resolver.NewCacheResolver(resolver.DialTCP, version, logger)
	}

	localCache := client.New(st, authority, remoteCache, logger)
	coord := coordinator.New(authority, localCache, resolver.DialTCP, version, logger)

	if cfg.API.Enabled {
		adminSrv := adminapi.New(cfg, logger, nil, nil, st)
		adminSrv.SetStatsFunc(func() models.ResolveStats {
			s := coord.Stats()
			return models.ResolveStats{
				Total:          s.Total,
				CacheWins:      s.CacheWins,
				AuthorityWins:  s.AuthorityWins,
				Failures:       s.Failures,
				Invalidations:  localCache.Invalidations(),
				IntegrityFails: s.IntegrityFails,
			}
		})
		go func() {
			logger.Info("admin api starting", "addr", adminSrv.Addr())
			if serveErr := adminSrv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				logger.Error("admin api error", "error", serveErr)
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = adminSrv.Shutdown(shutdownCtx)
			shutdownCancel()
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if flags.resolveOnly {
		res, err := coord.Resolve(ctx, flags.address, cfg.Client.IntegrityCheck, cfg.Client.DNSAddr, cfg.Client.CacherAddr)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", flags.address, err)
		}
		fmt.Printf("%s -> %s (status %s)\n", flags.address, res.Endpoint, res.Status)
		return nil
	}

	resp, err := coord.Fetch(ctx, flags.address, cfg.Client.Stacks, cfg.Client.IntegrityCheck, cfg.Client.DNSAddr, cfg.Client.CacherAddr)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", flags.address, err)
	}
	if resp.Status != protocol.StatusSuccess {
		return fmt.Errorf("fetch %s: status %s", flags.address, resp.Status)
	}
	os.Stdout.Write(resp.Body)
	return nil
}

func applyOverrides(cfg *config.Config, f cliFlags) {
	if f.dbPath != "" {
		cfg.Client.DB = f.dbPath
	}
	if f.dnsAddr != "" {
		cfg.Client.DNSAddr = f.dnsAddr
	}
	if f.cacherAddr != "" {
		cfg.Client.CacherAddr = f.cacherAddr
	}
	if f.integrityCheck {
		cfg.Client.IntegrityCheck = true
	}
	if f.verbose > 0 {
		cfg.Logging.Level = "DEBUG"
	}
	cfg.Client.DNSAddr = strings.TrimSpace(cfg.Client.DNSAddr)
}
