package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"hetiostats/internal/database/graph"
	"hetiostats/internal/database/relational"
)

// maxLimit caps the rows any ranking tool returns.
const maxLimit = 100

var errNoGraph = errors.New("no graph database configured")

// Asker answers free-form questions. rag.Engine satisfies it.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Server wraps the MCP server with Hetionet query capabilities.
type Server struct {
	mcpServer *mcp.Server
	queries   relational.QueryEngine
	graph     graph.CypherRunner
	asker     Asker
	logger    *slog.Logger
}

// Config holds configuration for the MCP server.
type Config struct {
	ServerName    string
	ServerVersion string
}

// NewServer creates a new MCP server instance. runner and asker are
// optional; their tools are only registered when they are set.
func NewServer(cfg Config, queries relational.QueryEngine, runner graph.CypherRunner, asker Asker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = "hetiostats"
	}

	impl := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}

	s := &Server{
		mcpServer: mcp.NewServer(impl, nil),
		queries:   queries,
		graph:     runner,
		asker:     asker,
		logger:    logger,
	}
	s.registerTools()
	return s
}

// LimitArgs is the input of the ranking tools.
type LimitArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of rows to return (default 5, max 100)"`
}

// DrugGeneCountsResult wraps Q1 rows.
type DrugGeneCountsResult struct {
	Rows []relational.DrugGeneCount `json:"rows" jsonschema:"drugs ordered by number of associated genes"`
}

// DistributionResult wraps Q2 rows.
type DistributionResult struct {
	Rows []relational.DrugCountBucket `json:"rows" jsonschema:"drug-count groups ordered by number of diseases"`
}

// TopGeneDrugsResult wraps Q3 rows.
type TopGeneDrugsResult struct {
	Rows []relational.DrugGeneName `json:"rows" jsonschema:"drug names ordered by number of associated genes"`
}

// TargetsArgs defines the input for targets_with_drug_count tool.
type TargetsArgs struct {
	NumDrugs int64 `json:"num_drugs" jsonschema:"exact number of distinct drugs per target"`
}

// TargetsResult lists the targets of one distribution group.
type TargetsResult struct {
	Targets []relational.TargetDrugCount `json:"targets" jsonschema:"targets treated by exactly num_drugs drugs"`
}

// StatsArgs is empty; graph_stats takes no input.
type StatsArgs struct{}

// QueryGraphArgs defines the input for query_graph tool.
type QueryGraphArgs struct {
	Cypher string `json:"cypher" jsonschema:"read-only Cypher query to execute"`
}

// QueryGraphResult wraps graph query results.
type QueryGraphResult struct {
	Data []map[string]any `json:"data" jsonschema:"query results"`
}

// AskArgs defines the input for ask_hetionet tool.
type AskArgs struct {
	Question string `json:"question" jsonschema:"the question to ask about drugs, genes and diseases"`
}

// AskResult defines the output for ask_hetionet tool.
type AskResult struct {
	Answer string `json:"answer" jsonschema:"AI-generated answer"`
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "drug_gene_counts",
		Description: "Rank drugs (Compound nodes) by the number of genes they bind, upregulate or downregulate. Each row also carries the number of diseases the drug treats or palliates.",
	}, s.handleDrugGeneCounts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "disease_drug_distribution",
		Description: "Group treatment targets by how many distinct drugs reach them and count the targets per group, ordered by that count.",
	}, s.handleDistribution)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "top_gene_drugs",
		Description: "Names of the drugs associated with the most genes, with their gene counts.",
	}, s.handleTopGeneDrugs)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "targets_with_drug_count",
		Description: "List the targets behind one disease_drug_distribution group: every target reached by exactly num_drugs distinct drugs.",
	}, s.handleTargets)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "graph_stats",
		Description: "Size of the loaded Hetionet data: nodes, edges, compounds, diseases and qualifying relationship edges.",
	}, s.handleGraphStats)

	if s.graph != nil {
		mcp.AddTool(s.mcpServer, &mcp.Tool{
			Name:        "query_graph",
			Description: "Execute read-only Cypher on the Neo4j copy of the graph. Nodes are (:Entity {id, name, kind}) and edges are [:REL {metaedge}].",
		}, s.handleQueryGraph)
	}

	if s.asker != nil {
		mcp.AddTool(s.mcpServer, &mcp.Tool{
			Name:        "ask_hetionet",
			Description: "Ask a free-form question about drugs, genes and diseases. The answer is generated from the computed statistics and, when available, graph query results.",
		}, s.handleAsk)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return relational.DefaultTopN
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func (s *Server) handleDrugGeneCounts(ctx context.Context, _ *mcp.CallToolRequest, args LimitArgs) (*mcp.CallToolResult, DrugGeneCountsResult, error) {
	rows, err := s.queries.DrugGeneCounts(ctx, clampLimit(args.Limit))
	if err != nil {
		return nil, DrugGeneCountsResult{}, fmt.Errorf("drug gene counts: %w", err)
	}
	return nil, DrugGeneCountsResult{Rows: rows}, nil
}

func (s *Server) handleDistribution(ctx context.Context, _ *mcp.CallToolRequest, args LimitArgs) (*mcp.CallToolResult, DistributionResult, error) {
	rows, err := s.queries.DiseaseDrugDistribution(ctx, clampLimit(args.Limit))
	if err != nil {
		return nil, DistributionResult{}, fmt.Errorf("disease drug distribution: %w", err)
	}
	return nil, DistributionResult{Rows: rows}, nil
}

func (s *Server) handleTopGeneDrugs(ctx context.Context, _ *mcp.CallToolRequest, args LimitArgs) (*mcp.CallToolResult, TopGeneDrugsResult, error) {
	rows, err := s.queries.TopGeneDrugs(ctx, clampLimit(args.Limit))
	if err != nil {
		return nil, TopGeneDrugsResult{}, fmt.Errorf("top gene drugs: %w", err)
	}
	return nil, TopGeneDrugsResult{Rows: rows}, nil
}

func (s *Server) handleTargets(ctx context.Context, _ *mcp.CallToolRequest, args TargetsArgs) (*mcp.CallToolResult, TargetsResult, error) {
	if args.NumDrugs <= 0 {
		return nil, TargetsResult{}, fmt.Errorf("invalid num_drugs: %d (must be positive)", args.NumDrugs)
	}
	targets, err := s.queries.TargetsWithDrugCount(ctx, args.NumDrugs)
	if err != nil {
		return nil, TargetsResult{}, fmt.Errorf("targets with drug count: %w", err)
	}
	return nil, TargetsResult{Targets: targets}, nil
}

func (s *Server) handleGraphStats(ctx context.Context, _ *mcp.CallToolRequest, _ StatsArgs) (*mcp.CallToolResult, relational.GraphStats, error) {
	stats, err := s.queries.Stats(ctx)
	if err != nil {
		return nil, relational.GraphStats{}, fmt.Errorf("graph stats: %w", err)
	}
	return nil, stats, nil
}

// handleQueryGraph executes Cypher queries.
func (s *Server) handleQueryGraph(ctx context.Context, _ *mcp.CallToolRequest, args QueryGraphArgs) (*mcp.CallToolResult, QueryGraphResult, error) {
	if s.graph == nil {
		return nil, QueryGraphResult{}, errNoGraph
	}
	query := strings.TrimSpace(args.Cypher)
	if query == "" {
		return nil, QueryGraphResult{}, errors.New("cypher query is empty")
	}

	result, err := s.graph.ExecuteCypher(ctx, query, nil)
	if err != nil {
		return nil, QueryGraphResult{}, fmt.Errorf("cypher query failed: %w", err)
	}
	return nil, QueryGraphResult{Data: result}, nil
}

// handleAsk answers a question through the RAG engine.
func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, args AskArgs) (*mcp.CallToolResult, AskResult, error) {
	question := strings.TrimSpace(args.Question)
	if question == "" {
		return nil, AskResult{}, errors.New("question is empty")
	}

	answer, err := s.asker.Ask(ctx, question)
	if err != nil {
		return nil, AskResult{}, fmt.Errorf("RAG query failed: %w", err)
	}
	s.logger.Debug("answered question", "chars", len(answer))
	return nil, AskResult{Answer: answer}, nil
}

// Run serves MCP on the given transport until ctx ends or the peer leaves.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// Start starts the MCP server using stdio transport.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio",
		"graph", s.graph != nil,
		"rag", s.asker != nil,
	)
	return s.Run(ctx, &mcp.StdioTransport{})
}
