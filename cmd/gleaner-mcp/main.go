// Command gleaner-mcp serves the scrape pipeline as MCP tools over stdio.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/gleaner/app"
	"github.com/use-agent/gleaner/config"
	"github.com/use-agent/gleaner/scraper"
)

var version = "0.1.0"

// maxToolURLs caps scrape_urls so one call cannot run unbounded.
const maxToolURLs = 100

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// stdout carries the protocol.
	app.InitLogger(cfg.Log, os.Stderr)

	a, err := app.New(cfg, version)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer a.Close()

	if err := server.ServeStdio(newServer(a.Scraper)); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(sc *scraper.Scraper) *server.MCPServer {
	s := server.NewMCPServer(
		"gleaner",
		version,
		server.WithToolCapabilities(false),
	)

	scrapeURLsTool := mcp.NewTool("scrape_urls",
		mcp.WithDescription("Scrape a list of URLs in order. Returns summary statistics and one compact record per URL (status, title, word count, links, and a text preview). Failed URLs are reported as error records, never dropped."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("URLs to scrape, in the order results should be returned"),
		),
		mcp.WithNumber("workers",
			mcp.Description("Concurrent lanes (default: server setting, max: 32)"),
		),
		mcp.WithNumber("delay_ms",
			mcp.Description("Pause between two requests of one lane in milliseconds (default: server setting)"),
		),
	)
	s.AddTool(scrapeURLsTool, handleScrapeURLs(sc))

	scrapePageTool := mcp.NewTool("scrape_page",
		mcp.WithDescription("Scrape one URL and return the full normalized record as JSON: title, meta data, clean text, links, images and structured data."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to scrape"),
		),
	)
	s.AddTool(scrapePageTool, handleScrapePage(sc))

	return s
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
