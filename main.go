package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/api"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/completion"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/config"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/detect"
	_ "github.com/ASRagab/ai-tool-guard-sub000/internal/earlyinit"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/logger"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/patterns"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/report"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/scan"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/tui"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/tui/banner"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/tui/spinner"
)

// Version is set at build time via ldflags: -X main.Version=x.y.z
var Version = "1.0.0"

var log = logger.New("main")

var commandNames = []string{
	"scan", "ecosystems", "patterns", "lint-patterns",
	"serve", "completion", "version", "help",
}

func main() {
	// Shell completion protocol: when invoked by the shell the process
	// must emit candidates and nothing else.
	if completion.Run() {
		return
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "scan":
			runScan(os.Args[2:])
			return
		case "ecosystems":
			runEcosystems(os.Args[2:])
			return
		case "patterns":
			runPatterns(os.Args[2:])
			return
		case "lint-patterns":
			runLintPatterns(os.Args[2:])
			return
		case "serve":
			runServe(os.Args[2:])
			return
		case "completion":
			runCompletion(os.Args[2:])
			return
		case "help", "-h", "--help":
			printUsage()
			return
		case "version", "-v", "--version":
			runVersion(os.Args[2:])
			return
		}

		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		if s := detect.Suggest(os.Args[1], commandNames); len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Did you mean: %s?\n", strings.Join(s, ", "))
		}
		fmt.Fprintln(os.Stderr)
		printUsage()
		os.Exit(1)
	}

	// No subcommand - show help
	printUsage()
}

// loadConfig loads the config file and applies AIGUARD_* environment
// overrides. Flag overrides are applied by the caller before
// initLogging validates the result.
func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	return cfg
}

func initLogging(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger.SetGlobalLevelFromString(cfg.Log.Level)
	if cfg.Log.NoColor {
		logger.SetColored(false)
		tui.SetPlainMode(true)
	}
}

func buildRegistry(cfg *config.Config) *patterns.Registry {
	dir := cfg.Patterns.UserDir
	if dir == "" {
		dir = patterns.DefaultUserPatternsDir()
	}
	reg, err := patterns.NewRegistry(patterns.RegistryConfig{
		UserPatternsDir: dir,
		DisableBuiltin:  cfg.Patterns.DisableBuiltin,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load patterns: %v\n", err)
		os.Exit(1)
	}
	return reg
}

func buildSelector(cfg *config.Config, reg *patterns.Registry) *scan.Selector {
	walkerOpts := []scan.WalkerOption{scan.WithMaxDepth(cfg.Scan.MaxDepth)}
	if len(cfg.Scan.Excludes) > 0 {
		walkerOpts = append(walkerOpts, scan.WithExcludes(cfg.Scan.Excludes))
	}

	opts := []scan.ScannerOption{scan.WithWalker(scan.NewWalker(walkerOpts...))}
	if cfg.Scan.Analyzer {
		opts = append(opts, scan.WithAnalyzer(scan.NewScriptAnalyzer()))
	}
	return scan.NewSelector(reg, opts...)
}

func detectTimeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Detect.Timeout) * time.Second
}

// runScan handles the scan subcommand
func runScan(args []string) {
	scanFlags := flag.NewFlagSet("scan", flag.ExitOnError)
	configPath := scanFlags.String("config", config.DefaultConfigPath(), "Path to configuration file")
	ecosystem := scanFlags.String("ecosystem", "", "Scan a single ecosystem (name or alias)")
	componentType := scanFlags.String("type", "", "Restrict to one component type (mcp, hook, skill, config, plugin)")
	scanPath := scanFlags.String("path", "", "Scan a directory directly, skipping detection")
	jsonOutput := scanFlags.Bool("json", false, "Print the report as JSON")
	output := scanFlags.String("output", "", "Write the JSON report to a file (.zst compresses)")
	logLevel := scanFlags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	noColor := scanFlags.Bool("no-color", false, "Disable colored output")
	timeout := scanFlags.Int("timeout", -1, "Per-detector timeout in seconds (0 disables)")
	noAnalyzer := scanFlags.Bool("no-analyzer", false, "Disable the script analyzer pass")
	_ = scanFlags.Parse(args)

	cfg := loadConfig(*configPath)
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *noColor {
		cfg.Log.NoColor = true
	}
	if *timeout >= 0 {
		cfg.Detect.Timeout = *timeout
	}
	if *noAnalyzer {
		cfg.Scan.Analyzer = false
	}
	initLogging(cfg)
	if *jsonOutput {
		tui.SetPlainMode(true)
	}

	reg := buildRegistry(cfg)
	agg := detect.NewAggregator(buildSelector(cfg, reg))

	var (
		failures []detect.DetectorFailure
		rep      *detect.ScanReport
	)

	run := func() error {
		var results map[string]detect.DetectionResult
		if *scanPath != "" {
			var err error
			results, err = localTarget(*scanPath)
			if err != nil {
				return err
			}
		} else {
			orch := detect.NewOrchestrator(detect.WithTimeout(detectTimeout(cfg)))
			var err error
			results, failures, err = orch.DetectAll(context.Background(), *ecosystem, *componentType)
			if err != nil {
				return err
			}
		}
		rep = agg.ScanDetected(results)
		return nil
	}

	if *jsonOutput {
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	} else if err := spinner.RunWithSpinner("Scanning AI tool installations", "Scan complete", run); err != nil {
		// RunWithSpinner already displayed the error
		os.Exit(1)
	}

	out := report.Output{Report: rep, Failures: failures, Version: Version}

	if *output != "" {
		if err := report.Export(*output, out); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write report: %v\n", err)
			os.Exit(1)
		}
	}

	if *jsonOutput {
		if err := report.WriteJSON(os.Stdout, out); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := report.NewRenderer(os.Stdout).Render(rep, failures); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render report: %v\n", err)
		os.Exit(1)
	}
}

// localTarget wraps a directory in a synthetic detection result so a
// --path scan flows through the same aggregation pipeline as detected
// components. The pattern set is inferred from the path.
func localTarget(path string) (map[string]detect.DetectionResult, error) {
	path = scan.ExpandTilde(path)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", path, err)
	}

	name := filepath.Base(path)
	return map[string]detect.DetectionResult{
		"local": {
			Ecosystem: "local",
			Found:     true,
			Components: map[string]detect.ComponentInfo{
				"path:" + name: {Name: name, Path: path},
			},
		},
	}, nil
}

// runEcosystems handles the ecosystems subcommand
func runEcosystems(args []string) {
	ecoFlags := flag.NewFlagSet("ecosystems", flag.ExitOnError)
	configPath := ecoFlags.String("config", config.DefaultConfigPath(), "Path to configuration file")
	jsonOutput := ecoFlags.Bool("json", false, "Output as JSON")
	_ = ecoFlags.Parse(args)

	cfg := loadConfig(*configPath)
	initLogging(cfg)
	if *jsonOutput {
		tui.SetPlainMode(true)
	}

	orch := detect.NewOrchestrator(detect.WithTimeout(detectTimeout(cfg)))
	results, failures, err := orch.DetectAll(context.Background(), "", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{
			"known":    orch.EcosystemNames(),
			"detected": results,
			"failures": failures,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}

	names := orch.EcosystemNames()
	tui.PrintInfo(fmt.Sprintf("%d ecosystems known, %d detected", len(names), len(results)))
	fmt.Println()

	for _, name := range names {
		res, found := results[name]
		if !found {
			if tui.IsPlainMode() {
				fmt.Printf("  - %s: not detected\n", name)
			} else {
				fmt.Printf("  %s %s\n", tui.StyleMuted.Render(tui.IconCircle),
					tui.StyleMuted.Render(name+": not detected"))
			}
			continue
		}

		line := fmt.Sprintf("%s: %d components", name, len(res.Components))
		if tui.IsPlainMode() {
			fmt.Printf("  + %s\n", line)
		} else {
			fmt.Printf("  %s %s\n", tui.StyleSuccess.Render(tui.IconDot), line)
		}
		for _, root := range res.ScanPaths {
			if tui.IsPlainMode() {
				fmt.Printf("      %s\n", root)
			} else {
				fmt.Printf("      %s\n", tui.Faint(root))
			}
		}
	}

	if len(failures) > 0 {
		fmt.Println()
		for _, f := range failures {
			tui.PrintWarning(fmt.Sprintf("%s: %s", f.DetectorName, f.Error))
		}
	}
}

// runPatterns handles the patterns subcommand
func runPatterns(args []string) {
	patFlags := flag.NewFlagSet("patterns", flag.ExitOnError)
	configPath := patFlags.String("config", config.DefaultConfigPath(), "Path to configuration file")
	setFilter := patFlags.String("set", "", "Show one pattern set (base, mcp, hook, skill, config)")
	jsonOutput := patFlags.Bool("json", false, "Output as JSON")
	_ = patFlags.Parse(args)

	cfg := loadConfig(*configPath)
	initLogging(cfg)
	if *jsonOutput {
		tui.SetPlainMode(true)
	}

	reg := buildRegistry(cfg)

	sets := patterns.ValidSets
	if *setFilter != "" {
		set := patterns.Set(strings.ToLower(strings.TrimSpace(*setFilter)))
		if !set.Valid() {
			fmt.Fprintf(os.Stderr, "Unknown pattern set %q. Valid sets: base, mcp, hook, skill, config\n", *setFilter)
			os.Exit(1)
		}
		sets = []patterns.Set{set}
	}

	catalog := make(map[patterns.Set][]patterns.Definition, len(sets))
	total := 0
	for _, set := range sets {
		var defs []patterns.Definition
		for _, c := range reg.Extension(set) {
			defs = append(defs, c.Definition)
		}
		catalog[set] = defs
		total += len(defs)
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"total": total, "sets": catalog}); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}

	if tui.IsPlainMode() {
		fmt.Printf("aiguard patterns (%d total)\n\n", total)
	} else {
		fmt.Printf("%s %s\n\n", tui.StyleTitle.Render(tui.IconShield),
			tui.StyleBold.Render(fmt.Sprintf("aiguard patterns (%d total)", total)))
	}

	for _, set := range sets {
		defs := catalog[set]
		if len(defs) == 0 {
			continue
		}

		if tui.IsPlainMode() {
			fmt.Printf("[%s] %d patterns\n", set, len(defs))
		} else {
			fmt.Println(tui.Separator(fmt.Sprintf("%s (%d)", set, len(defs))))
		}

		if tui.IsPlainMode() {
			for _, d := range defs {
				suffix := ""
				if d.Source == patterns.SourceUser {
					suffix = " (user)"
				}
				fmt.Printf("  [%s] %s (%s) %s%s\n",
					strings.ToUpper(string(d.Severity)), d.ID, d.Category, d.Description, suffix)
			}
			fmt.Println()
			continue
		}

		rows := make([][2]string, 0, len(defs))
		for _, d := range defs {
			left := tui.SeverityBadge(string(d.Severity)) + " " + tui.StyleBold.Render(d.ID)
			right := tui.StyleMuted.Render(string(d.Category)) + "  " + d.Description
			if d.Source == patterns.SourceUser {
				right += tui.StyleMuted.Render(" (user)")
			}
			rows = append(rows, [2]string{left, right})
		}
		fmt.Print(tui.AlignColumns(rows, "  ", 2))
		fmt.Println()
	}
}

// runLintPatterns handles the lint-patterns subcommand
func runLintPatterns(args []string) {
	lintFlags := flag.NewFlagSet("lint-patterns", flag.ExitOnError)
	configPath := lintFlags.String("config", config.DefaultConfigPath(), "Path to configuration file")
	showInfo := lintFlags.Bool("info", false, "Show informational messages")
	_ = lintFlags.Parse(args)

	linter := patterns.NewLinter()
	var result patterns.LintResult

	if rest := lintFlags.Args(); len(rest) > 0 {
		path := rest[0]
		fmt.Printf("Linting %s...\n\n", path)
		var err error
		result, err = linter.LintFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println("Linting all pattern catalogs...")
		cfg := loadConfig(*configPath)

		builtin, err := linter.LintBuiltin()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		mergeLint(&result, builtin)

		dir := cfg.Patterns.UserDir
		if dir == "" {
			dir = patterns.DefaultUserPatternsDir()
		}
		files, err := patterns.NewLoader(dir).ListUserFiles()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to list user catalogs: %v\n", err)
		}
		fmt.Printf("User catalog files: %d\n\n", len(files))

		for _, f := range files {
			fr, err := linter.LintFile(f)
			if err != nil {
				// An unloadable catalog file is itself a lint error
				result.Issues = append(result.Issues, patterns.LintIssue{
					PatternID: filepath.Base(f),
					Field:     "file",
					Severity:  patterns.LintError,
					Message:   err.Error(),
				})
				result.Errors++
				continue
			}
			mergeLint(&result, fr)
		}
	}

	fmt.Print(result.FormatIssues(*showInfo))
	fmt.Println()

	switch {
	case result.Errors > 0:
		tui.PrintError(fmt.Sprintf("%d error(s), %d warning(s)", result.Errors, result.Warns))
		os.Exit(1)
	case result.Warns > 0:
		tui.PrintWarning(fmt.Sprintf("%d warning(s)", result.Warns))
	default:
		tui.PrintSuccess("All patterns valid")
	}
}

func mergeLint(dst *patterns.LintResult, src patterns.LintResult) {
	dst.Issues = append(dst.Issues, src.Issues...)
	dst.Errors += src.Errors
	dst.Warns += src.Warns
}

// runServe handles the serve subcommand
func runServe(args []string) {
	serveFlags := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := serveFlags.String("config", config.DefaultConfigPath(), "Path to configuration file")
	port := serveFlags.Int("port", 0, "Listen port (default from config)")
	logLevel := serveFlags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	noColor := serveFlags.Bool("no-color", false, "Disable colored log output")
	_ = serveFlags.Parse(args)

	cfg := loadConfig(*configPath)
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *noColor {
		cfg.Log.NoColor = true
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	initLogging(cfg)
	banner.PrintBanner(Version)

	reg := buildRegistry(cfg)
	orch := detect.NewOrchestrator(detect.WithTimeout(detectTimeout(cfg)))
	agg := detect.NewAggregator(buildSelector(cfg, reg))
	srv := api.NewServer(orch, agg, reg, Version)

	var watcher *patterns.Watcher
	if cfg.Patterns.Watch {
		w, err := patterns.NewWatcher(reg)
		if err != nil {
			log.Warn("Failed to create pattern watcher: %v", err)
		} else if err := w.Start(); err != nil {
			log.Warn("Failed to start pattern watcher: %v", err)
		} else {
			watcher = w
		}
	}
	defer func() {
		if watcher != nil {
			_ = watcher.Stop()
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Scan responses wait on detection and file walks
		WriteTimeout: 2 * time.Minute,
	}

	log.Info("aiguard API listening on :%d", cfg.Server.Port)
	log.Info("  Patterns: %d loaded", reg.Count())
	log.Info("  Ecosystems: %s", strings.Join(orch.EcosystemNames(), ", "))

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server error: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Info("aiguard stopped")
}

// runCompletion handles the completion subcommand
func runCompletion(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: aiguard completion <install|uninstall>")
		os.Exit(1)
	}

	switch args[0] {
	case "install":
		if completion.IsInstalled() {
			tui.PrintInfo("Shell completion is already installed")
			return
		}
		if err := completion.Install(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to install completion: %v\n", err)
			os.Exit(1)
		}
		tui.PrintSuccess("Shell completion installed. Restart your shell to pick it up.")
	case "uninstall":
		if err := completion.Uninstall(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to uninstall completion: %v\n", err)
			os.Exit(1)
		}
		tui.PrintSuccess("Shell completion removed")
	default:
		fmt.Fprintf(os.Stderr, "Unknown completion action %q. Use install or uninstall.\n", args[0])
		os.Exit(1)
	}
}

// runVersion handles the version subcommand
func runVersion(args []string) {
	verFlags := flag.NewFlagSet("version", flag.ExitOnError)
	jsonOutput := verFlags.Bool("json", false, "Output as JSON")
	_ = verFlags.Parse(args)

	if *jsonOutput {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{"version": Version})
		return
	}
	fmt.Printf("aiguard version %s\n", Version)
}

func printUsage() {
	fmt.Println(`aiguard - Static security triage for AI tool installations

Usage:
  aiguard scan [flags]               Detect installed AI tools and scan their components
  aiguard ecosystems [--json]        Show which ecosystems are installed
  aiguard patterns [--set S]         List the active pattern catalog
  aiguard lint-patterns [file.yaml]  Validate pattern catalogs
  aiguard serve [--port N]           Run the HTTP API with pattern hot reload
  aiguard completion install         Install shell completion
  aiguard version                    Show version
  aiguard help                       Show this help message

Scan Flags:
  --ecosystem string   Scan a single ecosystem (claude-code, cursor, windsurf, ...)
  --type string        Restrict to one component type (mcp, hook, skill, config, plugin)
  --path string        Scan a directory directly, skipping detection
  --json               Print the report as JSON
  --output string      Write the JSON report to a file (.zst compresses with zstd)
  --timeout int        Per-detector timeout in seconds (0 disables)
  --no-analyzer        Disable the script analyzer pass
  --log-level string   Log level: trace, debug, info, warn, error
  --no-color           Disable colored output
  --config string      Path to configuration file (default ~/.aiguard/config.yaml)

Environment Variables:
  AIGUARD_LOG_LEVEL       Log level override
  AIGUARD_NO_COLOR        Disable colored output
  AIGUARD_PATTERNS_DIR    User pattern overlay directory
  AIGUARD_DETECT_TIMEOUT  Per-detector timeout in seconds
  AIGUARD_NO_ANALYZER     Disable the script analyzer pass

Examples:
  aiguard scan                                Scan everything detected
  aiguard scan --ecosystem claude --json      One ecosystem, JSON report
  aiguard scan --path ~/.claude/hooks         Scan a directory directly
  aiguard scan --output report.json.zst       Export a compressed report
  aiguard serve --port 8787                   Run the HTTP API`)
}
