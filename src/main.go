// SPDX-License-Identifier: MIT

// SeeSea - privacy-preserving metasearch engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/apimgr/seesea/src/cache"
	"github.com/apimgr/seesea/src/cli"
	"github.com/apimgr/seesea/src/config"
	"github.com/apimgr/seesea/src/logging"
	"github.com/apimgr/seesea/src/mode"
	"github.com/apimgr/seesea/src/netclient"
	"github.com/apimgr/seesea/src/privacy"
	"github.com/apimgr/seesea/src/ratelimit"
	"github.com/apimgr/seesea/src/search/aggregator"
	"github.com/apimgr/seesea/src/search/engine"
	"github.com/apimgr/seesea/src/search/manager"
	"github.com/apimgr/seesea/src/search/orchestrator"
	"github.com/apimgr/seesea/src/search/query"
	"github.com/apimgr/seesea/src/server"
	"github.com/apimgr/seesea/src/tor"
)

// Build info, set via -ldflags at build time.
var (
	Version   = "dev"
	CommitID  = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		configDir string
		dataDir   string
		addr      string
		runCLI    bool
		debugFlag bool
	)

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			if i+1 < len(args) {
				i++
				configDir = args[i]
			}
		case "--data":
			if i+1 < len(args) {
				i++
				dataDir = args[i]
			}
		case "--listen":
			if i+1 < len(args) {
				i++
				addr = args[i]
			}
		case "--debug":
			debugFlag = true
		case "--version", "-v":
			fmt.Printf("seesea %s (%s) built %s\n", Version, CommitID, BuildDate)
			return
		default:
			if !strings.HasPrefix(args[i], "-") {
				runCLI = true
			}
		}
		if runCLI {
			break
		}
	}

	cfg, _, err := config.Load(configDir, dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	mode.Initialize(cfg.General.Mode, debugFlag)
	if mode.IsAppModeDevelopment() {
		cfg.Server.Logs.Level = "debug"
	}
	if !runCLI {
		fmt.Println(mode.ConsoleModeMessage())
	}

	logger, err := logging.New(logging.Options{
		Level: cfg.Server.Logs.Level,
		Server: logging.Config{
			Enabled: cfg.Server.Logs.Server.Enabled, Filename: cfg.Server.Logs.Server.Filename,
			Rotate: cfg.Server.Logs.Server.Rotate, Compress: cfg.Server.Logs.Server.Compress, Keep: cfg.Server.Logs.Server.Keep,
		},
		Access: logging.Config{
			Enabled: cfg.Server.Logs.Access.Enabled, Filename: cfg.Server.Logs.Access.Filename,
			Rotate: cfg.Server.Logs.Access.Rotate, Compress: cfg.Server.Logs.Access.Compress, Keep: cfg.Server.Logs.Access.Keep,
		},
		Security: logging.Config{
			Enabled: cfg.Server.Logs.Security.Enabled, Filename: cfg.Server.Logs.Security.Filename,
			Rotate: cfg.Server.Logs.Security.Rotate, Compress: cfg.Server.Logs.Security.Compress, Keep: cfg.Server.Logs.Security.Keep,
		},
		Audit: logging.Config{
			Enabled: cfg.Server.Logs.Audit.Enabled, Filename: cfg.Server.Logs.Audit.Filename,
			Rotate: cfg.Server.Logs.Audit.Rotate, Compress: cfg.Server.Logs.Audit.Compress, Keep: cfg.Server.Logs.Audit.Keep,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	orc, closeFn, err := buildOrchestrator(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize search: %v\n", err)
		os.Exit(1)
	}
	defer closeFn()

	if runCLI {
		cli.Version = Version
		root := cli.NewRootCommand(orc)
		root.SetArgs(args)
		if err := root.Execute(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}

	runServer(cfg, orc, logger, addr)
}

// buildOrchestrator wires the privacy manager, Tor circuit (if enabled),
// HTTP client, cache store, engine registry, and orchestrator together.
func buildOrchestrator(cfg *config.Config, logger *logging.Logger) (*orchestrator.Orchestrator, func(), error) {
	privacyCfg := privacy.DefaultConfig()
	privacyCfg.UAStrategy = parseUAStrategy(cfg.Privacy.UAStrategy)
	privacyCfg.CustomUA = cfg.Privacy.CustomUA
	privacyCfg.FakeHeaders = cfg.Privacy.FakeHeaders
	privacyCfg.FakeReferer = cfg.Privacy.FakeReferer
	privacyCfg.Fingerprint = parseFingerprint(cfg.Privacy.Fingerprint)
	privacyCfg.DoHEnabled = cfg.Privacy.DoHEnabled
	privacyCfg.FallbackToSystem = cfg.Privacy.FallbackToSystem
	privacyCfg.GeoIPDBPath = cfg.Privacy.GeoIPDBPath
	for _, raw := range cfg.Privacy.DoHServers {
		privacyCfg.DoHServers = append(privacyCfg.DoHServers, privacy.DoHServer{Name: raw, URL: raw})
	}
	privacyMgr := privacy.New(privacyCfg)

	netOpts := netclient.DefaultOptions()
	netOpts.Fingerprint = privacyMgr.Fingerprint()

	var torMgr *tor.Manager
	if cfg.Privacy.Tor.Enabled {
		torDataDir := cfg.Privacy.Tor.DataDir
		if torDataDir == "" {
			torDataDir = filepath.Join(cfg.General.DataDir, "tor")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		m, err := tor.New(ctx, tor.Config{
			SOCKSAddr: cfg.Privacy.Tor.SOCKSAddr,
			Embedded:  cfg.Privacy.Tor.Embedded,
			DataDir:   torDataDir,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "tor initialization failed, continuing without it: %v\n", err)
		} else {
			torMgr = m
			netOpts.ProxyDialer = m.Dialer()
		}
	}

	client := netclient.New(netOpts)

	cachePath := cfg.Cache.DBPath
	if cachePath == "" {
		cachePath = filepath.Join(cfg.General.DataDir, "cache.db")
	}
	cacheMode := cache.HighThroughput
	if cfg.Cache.Mode == "low_latency" {
		cacheMode = cache.LowLatency
	}
	store, err := cache.Open(cache.Config{
		DBPath:     cachePath,
		DefaultTTL: cfg.Cache.TTL,
		Mode:       cacheMode,
		Enabled:    true,
		RedisAddr:  cfg.Cache.RedisAddr,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open cache store: %w", err)
	}

	mgr := manager.New()
	for _, e := range buildEngines(client) {
		mgr.Register(e)
	}

	opts := orchestrator.DefaultOptions()
	if cfg.Search.MaxConcurrentEngines > 0 {
		opts.MaxConcurrentEngines = cfg.Search.MaxConcurrentEngines
	}
	if cfg.Search.GlobalDeadline > 0 {
		opts.GlobalDeadline = cfg.Search.GlobalDeadline
	}
	opts.CacheTTL = cfg.Cache.TTL
	opts.AllowStale = cfg.Cache.AllowStale

	orc := orchestrator.New(store, mgr, query.NewParser(), aggregator.Default(), opts)

	closeFn := func() {
		store.Close()
		if torMgr != nil {
			torMgr.Close()
		}
		_ = privacyMgr.Close()
	}
	return orc, closeFn, nil
}

func buildEngines(client *netclient.Client) []engine.Engine {
	return []engine.Engine{
		engine.NewGoogleEngine(client),
		engine.NewBingEngine(client),
		engine.NewDuckDuckGoEngine(client),
		engine.NewYandexEngine(client),
		engine.NewSogouEngine(client),
		engine.NewGitHubEngine(client),
		engine.NewStackOverflowEngine(client),
		engine.NewWikipediaEngine(client),
		engine.NewHackerNewsEngine(client),
		engine.NewUnsplashEngine(client),
		engine.NewYouTubeEngine(client),
	}
}

func parseUAStrategy(s string) privacy.UAStrategy {
	switch strings.ToLower(s) {
	case "fixed":
		return privacy.UAFixed
	case "random":
		return privacy.UARandom
	case "custom":
		return privacy.UACustom
	default:
		return privacy.UARealistic
	}
}

func parseFingerprint(s string) privacy.TLSFingerprintLevel {
	switch strings.ToLower(s) {
	case "none":
		return privacy.FingerprintNone
	case "basic":
		return privacy.FingerprintBasic
	case "full":
		return privacy.FingerprintFull
	default:
		return privacy.FingerprintAdvanced
	}
}

func runServer(cfg *config.Config, orc *orchestrator.Orchestrator, logger *logging.Logger, addrOverride string) {
	var limiter *ratelimit.EndpointLimiters
	if cfg.Server.RateLimit {
		limiter = ratelimit.NewEndpointLimiters(true)
		limiter.SetLogger(logger)
	}

	server.Version = Version
	srv := server.New(orc, logger, limiter)

	addr := addrOverride
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	}

	go func() {
		fmt.Printf("seesea %s listening on %s\n", Version, addr)
		if err := srv.ListenAndServe(addr); err != nil {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
	}
}
