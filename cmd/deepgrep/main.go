package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/vivekkdagar/deepgrep/internal/engine"
	"github.com/vivekkdagar/deepgrep/internal/history"
	"github.com/vivekkdagar/deepgrep/internal/mcp"
	"github.com/vivekkdagar/deepgrep/internal/semantic"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// logger writes to stderr; stdout is reserved for results and, in serve
// mode, the MCP protocol.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
})

func main() {
	app := &cli.App{
		Name:    "deepgrep",
		Usage:   "Regex and semantic text search",
		Version: fmt.Sprintf("%s (built %s, sqlite driver %s)", version, buildTime, history.DriverName),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Path to the history database directory",
				EnvVars: []string{"DEEPGREP_DB_PATH"},
				Value:   mcp.DefaultDBPath,
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "serve",
				Usage:     "Start the MCP server on stdio",
				Action:    serveCommand,
				ArgsUsage: " ",
			},
			{
				Name:      "search",
				Usage:     "Find all matches of a regex pattern",
				Action:    searchCommand,
				ArgsUsage: "PATTERN [TEXT]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read the text to search from a file instead of an argument or stdin",
					},
					&cli.BoolFlag{
						Name:  "lines",
						Usage: "Search each line separately and print matching lines",
					},
				},
			},
			{
				Name:      "semantic",
				Usage:     "Rank the words of a text by similarity to a keyword",
				Action:    semanticCommand,
				ArgsUsage: "KEYWORD [TEXT]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read the text to search from a file instead of an argument or stdin",
					},
					&cli.IntFlag{
						Name:    "top",
						Aliases: []string{"n"},
						Usage:   "Maximum number of matches to return",
						Value:   semantic.DefaultTopN,
					},
				},
			},
			{
				Name:      "history",
				Usage:     "Show or transfer the search log",
				Action:    historyCommand,
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of recent entries to show",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "top",
						Usage: "Show the most frequently searched patterns instead of recent entries",
					},
					&cli.StringFlag{
						Name:  "export",
						Usage: "Export the full log to a JSON file",
					},
					&cli.StringFlag{
						Name:  "import",
						Usage: "Import entries from a JSON file",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	logger.Info("deepgrep MCP server starting",
		"version", version,
		"driver", history.DriverName,
		"build_mode", history.BuildMode,
		"provider", semantic.DetectProvider())

	server, err := mcp.NewServer(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("MCP server ready, listening on stdio")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig)
		cancel()
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("pattern argument is required")
	}
	pattern := c.Args().Get(0)

	text, err := readInput(c, 1)
	if err != nil {
		return err
	}

	eng, err := engine.New(engine.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	var results []string
	if c.Bool("lines") {
		results, err = eng.SearchLines(c.Context, pattern, text)
	} else {
		results, err = eng.Search(pattern, text)
	}
	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Println(r)
	}
	logger.Info("search complete", "pattern", pattern, "matches", len(results))

	logToHistory(c, pattern, history.ModeRegex, len(results))
	return nil
}

func semanticCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("keyword argument is required")
	}
	keyword := c.Args().Get(0)

	text, err := readInput(c, 1)
	if err != nil {
		return err
	}

	emb, err := semantic.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	matcher := semantic.NewMatcher(emb)
	defer func() { _ = matcher.Close() }()

	matches, err := matcher.FindMatches(c.Context, text, keyword, c.Int("top"))
	if err != nil {
		return err
	}

	for _, m := range matches {
		fmt.Printf("%s\t%.3f\n", m.Word, m.Similarity)
	}
	logger.Info("semantic search complete",
		"keyword", keyword,
		"provider", emb.Provider(),
		"matches", len(matches))

	logToHistory(c, keyword, history.ModeSemantic, len(matches))
	return nil
}

func historyCommand(c *cli.Context) error {
	store, err := openHistory(c)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := c.Context

	if path := c.String("export"); path != "" {
		n, err := store.ExportJSON(ctx, path)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		logger.Info("history exported", "path", path, "entries", n)
		return nil
	}

	if path := c.String("import"); path != "" {
		n, err := store.ImportJSON(ctx, path)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		logger.Info("history imported", "path", path, "entries", n)
		return nil
	}

	if c.Bool("top") {
		top, err := store.TopPatterns(ctx, c.Int("limit"))
		if err != nil {
			return err
		}
		for _, p := range top {
			fmt.Printf("%6d  %s\n", p.Count, p.Pattern)
		}
		return nil
	}

	entries, err := store.Recent(ctx, c.Int("limit"))
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%s  %-8s  %4d  %s\n",
			e.Timestamp.Format(time.RFC3339), e.Mode, e.MatchCount, e.Pattern)
	}
	return nil
}

// readInput returns the text to search: a positional argument, --file, or
// stdin, in that order of preference.
func readInput(c *cli.Context, argIndex int) (string, error) {
	if c.NArg() > argIndex {
		return strings.Join(c.Args().Slice()[argIndex:], " "), nil
	}

	if path := c.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// openHistory opens the history store under the configured db directory
func openHistory(c *cli.Context) (history.Store, error) {
	dir := c.String("db")
	if dir == "" || dir == mcp.DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".deepgrep")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return history.NewSQLiteStore(filepath.Join(dir, "deepgrep.db"))
}

// logToHistory records a completed CLI search. Failures are logged and
// otherwise ignored so a broken database never breaks search output.
func logToHistory(c *cli.Context, pattern string, mode history.Mode, matchCount int) {
	store, err := openHistory(c)
	if err != nil {
		logger.Debug("history unavailable", "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	err = store.Log(c.Context, &history.Entry{
		Pattern:    pattern,
		Mode:       mode,
		MatchCount: matchCount,
		Source:     "cli",
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		logger.Debug("failed to log search", "error", err)
	}
}

func setupLogger(c *cli.Context) error {
	switch strings.ToLower(c.String("log-level")) {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn", "warning":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.String("log-level"))
	}
	return nil
}
