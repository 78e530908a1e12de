package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"hetiostats/internal/config"
	"hetiostats/internal/database"
	"hetiostats/internal/database/graph"
	"hetiostats/internal/database/rag"
	"hetiostats/internal/mcpserver"
	"hetiostats/internal/output"
	"hetiostats/ui/console"
	"hetiostats/ui/tui"
)

// globalFlags are shared by every subcommand. Empty values keep the
// configured setting.
type globalFlags struct {
	configPath string
	nodesPath  string
	edgesPath  string
	engine     string
	logLevel   string
	topN       int
}

func rootCmd() *cobra.Command {
	var g globalFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Drug statistics over the Hetionet knowledge graph",
		Long: `Hetiostats reads the Hetionet nodes and edges tables and answers three
questions about drugs (Compound nodes):

- Q1: genes and diseases associated with each drug
- Q2: how many diseases are associated with exactly x drugs
- Q3: names of the drugs associated with the most genes

Without a subcommand it prints the report.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), g, asJSON)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&g.nodesPath, "nodes", "", "Nodes table (default nodes.tsv)")
	pf.StringVar(&g.edgesPath, "edges", "", "Edges table (default edges.tsv)")
	pf.StringVar(&g.engine, "engine", "", "Query engine (duckdb, memory, cypher)")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.IntVarP(&g.topN, "top", "n", 0, "Rows shown per question (default 5)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	cmd.AddCommand(
		reportCmd(&g),
		tuiCmd(&g),
		mcpCmd(&g),
		exportGraphCmd(&g),
		versionCmd(),
	)
	return cmd
}

func reportCmd(g *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the answers to the three questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), *g, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func tuiCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the answers interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, logger, err := setup(*g)
			if err != nil {
				return err
			}
			sess, err := database.OpenSession(ctx, cfg, database.WithLogger(logger))
			if err != nil {
				return err
			}
			defer sess.Close()

			e, err := sess.Engine()
			if err != nil {
				return err
			}
			return tui.Start(ctx, e, cfg.TopN)
		},
	}
}

func mcpCmd(g *globalFlags) *cobra.Command {
	var ingest bool
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the questions as MCP tools on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, logger, err := setup(*g)
			if err != nil {
				return err
			}
			logger = logger.With("run_id", uuid.NewString())

			sess, err := database.OpenSession(ctx, cfg,
				database.WithLogger(logger),
				database.WithGraphIngest(ingest))
			if err != nil {
				return err
			}
			defer sess.Close()

			e, err := sess.Engine()
			if err != nil {
				return err
			}

			var runner graph.CypherRunner
			if gc := sess.Graph(); gc != nil {
				runner = gc
			}

			var asker mcpserver.Asker
			if cfg.GeminiAPIKey != "" {
				gen, err := rag.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
				if err != nil {
					return err
				}
				defer gen.Close()
				logger.Info("question answering enabled", "model", rag.ResolveModel(cfg.GeminiModel).Name)
				asker = rag.NewEngine(gen, e, runner, logger)
			}

			srv := mcpserver.NewServer(mcpserver.Config{
				ServerName:    appName,
				ServerVersion: Version,
			}, e, runner, asker, logger)
			return srv.Start(ctx)
		},
	}
	cmd.Flags().BoolVar(&ingest, "ingest-graph", false, "Replace the Neo4j graph with the loaded tables and enable query_graph")
	return cmd
}

func exportGraphCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export-graph",
		Short: "Replace the Neo4j graph with the loaded tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, logger, err := setup(*g)
			if err != nil {
				return err
			}
			sess, err := database.OpenSession(ctx, cfg,
				database.WithLogger(logger),
				database.WithGraphIngest(true))
			if err != nil {
				return err
			}
			defer sess.Close()

			st := sess.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d nodes and %d edges to %s\n", st.Nodes, st.Edges, cfg.Neo4jURI)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	}
}

func runReport(ctx context.Context, out io.Writer, g globalFlags, asJSON bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := setup(g)
	if err != nil {
		return err
	}

	sess, err := database.OpenSession(ctx, cfg, database.WithLogger(logger))
	if err != nil {
		return err
	}
	defer sess.Close()

	e, err := sess.Engine()
	if err != nil {
		return err
	}

	report, err := output.RunReport(ctx, e, cfg.TopN)
	if err != nil {
		return fmt.Errorf("run report: %w", err)
	}
	logger.Info("report complete",
		"run_id", report.RunID,
		"engine", cfg.Engine,
		"q1_rows", len(report.Q1),
		"q2_rows", len(report.Q2),
		"q3_rows", len(report.Q3))

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	console.Print(out, output.BuildReportView(report))
	return nil
}

// setup loads the configuration, applies flag overrides and installs the
// default logger.
func setup(g globalFlags) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	cfg = cfg.WithInputs(g.nodesPath, g.edgesPath)
	if g.engine != "" {
		cfg = cfg.WithEngine(g.engine)
	}
	if g.logLevel != "" {
		cfg = cfg.WithLogLevel(g.logLevel)
	}
	if g.topN > 0 {
		cfg.TopN = g.topN
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
