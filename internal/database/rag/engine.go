package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"hetiostats/internal/database/graph"
	"hetiostats/internal/database/relational"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ModelConfig defines configuration for a Gemini model.
type ModelConfig struct {
	Name        string
	Temperature float32
	TopP        float32
	TopK        int32
}

// AvailableModels defines the available Gemini models and their configurations.
var AvailableModels = map[string]ModelConfig{
	"flash": {
		Name:        "gemini-flash-latest",
		Temperature: 0.2,
		TopP:        0.95,
		TopK:        40,
	},
	"pro": {
		Name:        "gemini-pro-latest",
		Temperature: 0.2,
		TopP:        0.95,
		TopK:        40,
	},
	"flash-2": {
		Name:        "gemini-2.0-flash",
		Temperature: 0.2,
		TopP:        0.95,
		TopK:        40,
	},
}

// ErrEmptyResponse is returned when the model produces no candidates.
var ErrEmptyResponse = errors.New("no response from model")

// TextGenerator produces a completion for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator implements TextGenerator with the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	config ModelConfig
}

// NewGeminiGenerator creates a Gemini client for apiKey. Unknown model keys
// fall back to "flash".
func NewGeminiGenerator(ctx context.Context, apiKey, modelKey string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, config: ResolveModel(modelKey)}, nil
}

// ResolveModel returns the configuration for modelKey, or the flash model.
func ResolveModel(modelKey string) ModelConfig {
	if cfg, ok := AvailableModels[modelKey]; ok {
		return cfg
	}
	return AvailableModels["flash"]
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.config.Name)
	model.SetTemperature(g.config.Temperature)
	model.SetTopP(g.config.TopP)
	model.SetTopK(g.config.TopK)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// Engine answers free-form questions about the loaded graph. Its context is
// the computed statistics and, when a graph runner is set, the rows of a
// model-written Cypher query.
type Engine struct {
	gen     TextGenerator
	queries relational.QueryEngine
	graph   graph.CypherRunner
	logger  *slog.Logger
}

// NewEngine builds an Engine. runner may be nil, in which case only the
// computed statistics are used as context.
func NewEngine(gen TextGenerator, queries relational.QueryEngine, runner graph.CypherRunner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{gen: gen, queries: queries, graph: runner, logger: logger}
}

// Context is the retrieval payload handed to the model.
type Context struct {
	Stats          relational.GraphStats        `json:"stats"`
	DrugGeneCounts []relational.DrugGeneCount   `json:"drug_gene_counts"`
	Distribution   []relational.DrugCountBucket `json:"disease_drug_distribution"`
	TopGeneDrugs   []relational.DrugGeneName    `json:"top_gene_drugs"`
	Cypher         string                       `json:"cypher,omitempty"`
	GraphRows      []map[string]any             `json:"graph_rows,omitempty"`
}

// Ask answers question using the statistics and optional graph rows.
func (e *Engine) Ask(ctx context.Context, question string) (string, error) {
	rc, err := e.retrieve(ctx, question)
	if err != nil {
		return "", err
	}

	prompt, err := answerPrompt(question, rc)
	if err != nil {
		return "", err
	}
	answer, err := e.gen.Generate(ctx, prompt)
	if errors.Is(err, ErrEmptyResponse) {
		return "Unable to generate response from the available data.", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to synthesize answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

func (e *Engine) retrieve(ctx context.Context, question string) (Context, error) {
	var rc Context
	var err error

	if rc.Stats, err = e.queries.Stats(ctx); err != nil {
		return rc, fmt.Errorf("retrieve stats: %w", err)
	}
	if rc.DrugGeneCounts, err = e.queries.DrugGeneCounts(ctx, 20); err != nil {
		return rc, fmt.Errorf("retrieve drug gene counts: %w", err)
	}
	if rc.Distribution, err = e.queries.DiseaseDrugDistribution(ctx, 20); err != nil {
		return rc, fmt.Errorf("retrieve distribution: %w", err)
	}
	if rc.TopGeneDrugs, err = e.queries.TopGeneDrugs(ctx, relational.DefaultTopN); err != nil {
		return rc, fmt.Errorf("retrieve top gene drugs: %w", err)
	}

	if e.graph == nil {
		return rc, nil
	}

	// Graph rows are best effort; the statistics alone still make a context.
	cypher, err := e.gen.Generate(ctx, cypherPrompt(question))
	if err != nil {
		e.logger.Warn("cypher generation failed", "error", err)
		return rc, nil
	}
	rc.Cypher = cleanCypherQuery(cypher)
	rows, err := e.graph.ExecuteCypher(ctx, rc.Cypher, nil)
	if err != nil {
		e.logger.Warn("generated cypher failed", "cypher", rc.Cypher, "error", err)
		rc.Cypher = ""
		return rc, nil
	}
	rc.GraphRows = rows
	return rc, nil
}

func cypherPrompt(question string) string {
	return fmt.Sprintf(`You are a Neo4j Cypher query expert. Convert the following question into a read-only Cypher query for a Hetionet drug graph.

Graph Schema:
- Nodes: (:Entity {id, name, kind}) where kind is one of "Compound", "Disease", "Gene", and others
- Relationships: (:Entity)-[:REL {metaedge}]->(:Entity)
  - metaedge "CtD": compound treats disease
  - metaedge "CpD": compound palliates disease
  - metaedge "CbG": compound binds gene
  - metaedge "CuG": compound upregulates gene
  - metaedge "CdG": compound downregulates gene

Question: %s

Return ONLY the Cypher query, no explanation. Limit results to 25.`, question)
}

func answerPrompt(question string, rc Context) (string, error) {
	data, err := json.MarshalIndent(rc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode context: %w", err)
	}
	return fmt.Sprintf(`You are a biomedical data analyst. Answer the question using only the Hetionet statistics below.

Question: %s

Data:
%s

drug_gene_counts lists compounds by number of gene relationships (binds, upregulates, downregulates) and disease relationships (treats, palliates).
disease_drug_distribution lists how many targets are reached by exactly num_drugs distinct compounds.
If the data is insufficient, say so clearly.`, question, string(data)), nil
}

// cleanCypherQuery removes markdown code blocks from Cypher queries.
func cleanCypherQuery(query string) string {
	query = strings.TrimSpace(query)
	query = strings.TrimPrefix(query, "```cypher")
	query = strings.TrimPrefix(query, "```")
	query = strings.TrimSuffix(query, "```")
	return strings.TrimSpace(query)
}
