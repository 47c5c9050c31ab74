// Package mcpserver exposes the tracker operations as MCP tools and
// prompts over the stdio transport.
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"crypto-watchlist/internal/tracker"
)

// serverName and serverVersion identify this server during the MCP
// initialize handshake.
const (
	serverName    = "crypto-watchlist"
	serverVersion = "1.0.0"
)

// NewMCPServer builds the MCP server around a tracker service. The
// caller serves it with server.ServeStdio.
func NewMCPServer(svc *tracker.Service) *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)

	registerTools(s, svc)
	registerPrompts(s)
	return s
}

func registerTools(s *server.MCPServer, svc *tracker.Service) {
	s.AddTool(
		mcp.NewTool("get_watchlist",
			mcp.WithDescription("List all cryptocurrencies in the watchlist with the date each was added."),
			mcp.WithTitleAnnotation("Get Watchlist"),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText(svc.Watchlist(ctx)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("add_to_watchlist",
			mcp.WithDescription("Add a cryptocurrency to the watchlist by its provider id or trading symbol."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Coin identifier, e.g. 'bitcoin' or 'BTC'."),
			),
			mcp.WithTitleAnnotation("Add to Watchlist"),
			mcp.WithIdempotentHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(svc.Add(ctx, id)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("remove_from_watchlist",
			mcp.WithDescription("Remove a cryptocurrency from the watchlist."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Coin identifier to remove, e.g. 'bitcoin'."),
			),
			mcp.WithTitleAnnotation("Remove from Watchlist"),
			mcp.WithIdempotentHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(svc.Remove(ctx, id)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("clear_watchlist",
			mcp.WithDescription("Remove every cryptocurrency from the watchlist."),
			mcp.WithTitleAnnotation("Clear Watchlist"),
			mcp.WithDestructiveHintAnnotation(true),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText(svc.Clear(ctx)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("import_watchlist",
			mcp.WithDescription("Add several cryptocurrencies to the watchlist in one call."),
			mcp.WithArray("ids",
				mcp.Required(),
				mcp.Description("Coin identifiers to add, e.g. ['bitcoin', 'ethereum']."),
			),
			mcp.WithTitleAnnotation("Import Watchlist"),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			ids, err := req.RequireStringSlice("ids")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(svc.Import(ctx, ids)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("fetch_prices",
			mcp.WithDescription("Fetch the current USD price and 24h change for every coin in the watchlist."),
			mcp.WithTitleAnnotation("Fetch Prices"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(true),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText(svc.FetchAllPrices(ctx)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("export_to_sheets",
			mcp.WithDescription("Export all tracked price data to a Google Sheet."),
			mcp.WithString("sheet_name",
				mcp.Required(),
				mcp.Description("The name of the sheet (and spreadsheet) to create/use."),
			),
			mcp.WithString("user_email",
				mcp.Description("Optional Google email address to share the spreadsheet with."),
			),
			mcp.WithTitleAnnotation("Export to Google Sheets"),
			mcp.WithOpenWorldHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			sheetName, err := req.RequireString("sheet_name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			userEmail := req.GetString("user_email", "")
			return mcp.NewToolResultText(svc.ExportToSheets(ctx, sheetName, userEmail)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("analyze_performance",
			mcp.WithDescription("Analyze an exported spreadsheet and report the highest 24h gain and biggest 24h loss."),
			mcp.WithString("sheet_name",
				mcp.Required(),
				mcp.Description("The name of the previously exported spreadsheet."),
			),
			mcp.WithTitleAnnotation("Analyze Performance"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			sheetName, err := req.RequireString("sheet_name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(svc.AnalyzePerformance(ctx, sheetName)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("get_price_history",
			mcp.WithDescription("Fetch a coin's historical USD prices for a timeframe."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Coin identifier, e.g. 'bitcoin'."),
			),
			mcp.WithString("timeframe",
				mcp.Description("History window: 24h, 7d, 30d, 90d or 1y. Defaults to 7d."),
			),
			mcp.WithTitleAnnotation("Get Price History"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			timeframe := req.GetString("timeframe", "7d")
			return mcp.NewToolResultText(svc.PriceHistory(ctx, id, timeframe)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("search_coins",
			mcp.WithDescription("Search the provider's coin catalog by id, symbol or name."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Search text, e.g. 'bit'."),
			),
			mcp.WithTitleAnnotation("Search Coins"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			query, err := req.RequireString("query")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(svc.SearchCoins(ctx, query)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("snapshot_log",
			mcp.WithDescription("List the most recently recorded price snapshots for a coin."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Coin identifier, e.g. 'bitcoin'."),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum snapshots to return. Defaults to 10."),
			),
			mcp.WithTitleAnnotation("Get Snapshot Log"),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			limit := req.GetInt("limit", 10)
			return mcp.NewToolResultText(svc.SnapshotLog(ctx, id, limit)), nil
		},
	)
}

func registerPrompts(s *server.MCPServer) {
	s.AddPrompt(
		mcp.NewPrompt("add_coin_prompt",
			mcp.WithPromptDescription("Generates a prompt to add a cryptocurrency to the watchlist and retrieve its current price."),
			mcp.WithArgument("coin_symbol",
				mcp.ArgumentDescription("The trading symbol of the cryptocurrency, e.g. 'BTC'."),
				mcp.RequiredArgument(),
			),
		),
		func(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			text, err := addCoinPromptText(req.Params.Arguments["coin_symbol"])
			if err != nil {
				return nil, err
			}
			return userPrompt(text), nil
		},
	)

	s.AddPrompt(
		mcp.NewPrompt("remove_coin_prompt",
			mcp.WithPromptDescription("Generates a prompt to remove a cryptocurrency from the watchlist."),
			mcp.WithArgument("coin_symbol",
				mcp.ArgumentDescription("The trading symbol of the cryptocurrency, e.g. 'BTC'."),
				mcp.RequiredArgument(),
			),
		),
		func(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			text, err := removeCoinPromptText(req.Params.Arguments["coin_symbol"])
			if err != nil {
				return nil, err
			}
			return userPrompt(text), nil
		},
	)

	s.AddPrompt(
		mcp.NewPrompt("get_prices_prompt",
			mcp.WithPromptDescription("Generates a prompt to fetch the latest prices for all watched cryptocurrencies."),
		),
		func(_ context.Context, _ mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			return userPrompt("Please fetch the latest prices for all cryptocurrencies in my watchlist."), nil
		},
	)

	s.AddPrompt(
		mcp.NewPrompt("export_prompt",
			mcp.WithPromptDescription("Generates a prompt to export tracked price data to a Google Sheet and share it."),
			mcp.WithArgument("sheet_name",
				mcp.ArgumentDescription("The desired name for the Google Sheet."),
				mcp.RequiredArgument(),
			),
			mcp.WithArgument("user_email",
				mcp.ArgumentDescription("The email address to share the sheet with."),
				mcp.RequiredArgument(),
			),
		),
		func(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			sheetName := strings.TrimSpace(req.Params.Arguments["sheet_name"])
			userEmail := strings.TrimSpace(req.Params.Arguments["user_email"])
			if sheetName == "" || userEmail == "" {
				return nil, fmt.Errorf("sheet_name and user_email are required")
			}
			return userPrompt(fmt.Sprintf(
				"Please export all tracked price data to my Google Sheet '%s' and share it with %s.",
				sheetName, userEmail)), nil
		},
	)
}

// addCoinPromptText renders the add-coin request; symbols display
// uppercase.
func addCoinPromptText(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", fmt.Errorf("coin_symbol cannot be empty")
	}
	return fmt.Sprintf("Please add %s to my watchlist and show me its current price.", symbol), nil
}

// removeCoinPromptText renders the remove-coin request; symbols are
// lowercased like stored watchlist ids.
func removeCoinPromptText(symbol string) (string, error) {
	symbol = strings.ToLower(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", fmt.Errorf("coin_symbol cannot be empty")
	}
	return fmt.Sprintf("Please remove %s from my watchlist.", symbol), nil
}

func userPrompt(text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult("", []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}
