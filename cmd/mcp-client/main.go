package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	flag.Parse()
	args := flag.Args()

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: mcp-client <server-command> [<args>]")
		fmt.Fprintln(os.Stderr, "Example: mcp-client ./hetiostats mcp --nodes nodes.tsv --edges edges.tsv")
		os.Exit(2)
	}

	ctx := context.Background()

	// Start the server as a subprocess
	cmd := exec.Command(args[0], args[1:]...)
	transport := &mcp.CommandTransport{Command: cmd}

	// Create MCP client
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "hetiostats-client",
		Version: "1.0.0",
	}, nil)

	// Connect to the server
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer session.Close()

	fmt.Println("Connected to Hetiostats MCP Server!")
	fmt.Println("Available commands:")
	fmt.Println("  /tools           - List available tools")
	fmt.Println("  /q1 [limit]      - Drugs by number of associated genes")
	fmt.Println("  /q2 [limit]      - Diseases grouped by number of drugs")
	fmt.Println("  /q3 [limit]      - Drug names by number of associated genes")
	fmt.Println("  /targets <n>     - Targets treated by exactly n drugs")
	fmt.Println("  /stats           - Size of the loaded dataset")
	fmt.Println("  /graph <cypher>  - Execute Cypher query")
	fmt.Println("  /exit            - Exit the client")
	fmt.Println("  <question>       - Ask a question about the data")
	fmt.Println()

	// Interactive REPL
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		switch {
		case input == "/exit":
			fmt.Println("Goodbye!")
			return

		case input == "/tools":
			listTools(ctx, session)

		case parts[0] == "/q1":
			callTool(ctx, session, "drug_gene_counts", limitArgs(parts))

		case parts[0] == "/q2":
			callTool(ctx, session, "disease_drug_distribution", limitArgs(parts))

		case parts[0] == "/q3":
			callTool(ctx, session, "top_gene_drugs", limitArgs(parts))

		case parts[0] == "/targets":
			if len(parts) < 2 {
				fmt.Println("Usage: /targets <n>")
				continue
			}
			n, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				fmt.Printf("Invalid drug count %q\n", parts[1])
				continue
			}
			callTool(ctx, session, "targets_with_drug_count", map[string]any{
				"num_drugs": n,
			})

		case input == "/stats":
			callTool(ctx, session, "graph_stats", map[string]any{})

		case strings.HasPrefix(input, "/graph "):
			cypher := strings.TrimPrefix(input, "/graph ")
			callTool(ctx, session, "query_graph", map[string]any{
				"cypher": cypher,
			})

		default:
			callTool(ctx, session, "ask_hetionet", map[string]any{
				"question": input,
			})
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Scanner error: %v", err)
	}
}

func listTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("Available Tools:")
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			log.Printf("Error listing tools: %v", err)
			return
		}
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Println()
}

func callTool(ctx context.Context, session *mcp.ClientSession, toolName string, args map[string]any) {
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		log.Printf("Error calling tool: %v", err)
		return
	}

	printResult(result)
}

// limitArgs reads an optional row limit from "/qN [limit]".
func limitArgs(parts []string) map[string]any {
	args := map[string]any{}
	if len(parts) > 1 {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			args["limit"] = n
		}
	}
	return args
}

func printResult(result *mcp.CallToolResult) {
	if result.IsError {
		fmt.Printf("❌ Error: ")
	} else {
		fmt.Printf("✅ Result: ")
	}

	// Try to pretty-print the content
	for _, content := range result.Content {
		switch v := content.(type) {
		case *mcp.TextContent:
			fmt.Println(v.Text)
		default:
			// Try JSON marshaling for other types
			jsonData, err := json.MarshalIndent(content, "", "  ")
			if err != nil {
				fmt.Printf("%+v\n", content)
			} else {
				fmt.Println(string(jsonData))
			}
		}
	}
	fmt.Println()
}
