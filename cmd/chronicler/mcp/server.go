package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/neilberkman/chronicler/internal/core/db"
	"github.com/neilberkman/chronicler/internal/core/filter"
	"github.com/neilberkman/chronicler/internal/core/kb"
	"github.com/neilberkman/chronicler/internal/core/models"
	"github.com/neilberkman/chronicler/internal/core/search"
	"github.com/neilberkman/chronicler/internal/pkg/logger"
)

// ListLocationsArgs defines arguments for the list_locations tool
type ListLocationsArgs struct {
	Region string `json:"region,omitempty" jsonschema:"description=Only locations in this region"`
	Limit  int    `json:"limit,omitempty" jsonschema:"description=Max locations to return (default: 50)"`
}

// ListPlotThreadsArgs defines arguments for the list_plot_threads tool
type ListPlotThreadsArgs struct {
	Status string `json:"status,omitempty" jsonschema:"description=Only threads with this status"`
	Limit  int    `json:"limit,omitempty" jsonschema:"description=Max threads to return (default: 50)"`
}

// GetEntityArgs defines arguments for the get_entity tool
type GetEntityArgs struct {
	Name string `json:"name" jsonschema:"description=Location or plot thread name (case-insensitive),required"`
}

// SearchEntitiesArgs defines arguments for the search_entities tool
type SearchEntitiesArgs struct {
	Query string `json:"query" jsonschema:"description=Search term,required"`
	Kind  string `json:"kind,omitempty" jsonschema:"description=location or plot-thread"`
	Limit int    `json:"limit,omitempty" jsonschema:"description=Max results (default: 10)"`
}

// ListSessionsArgs defines arguments for the list_sessions tool
type ListSessionsArgs struct {
	Query string `json:"query,omitempty" jsonschema:"description=Filter query, e.g. 'tag:npc status:complete after:2024-01-01'"`
	Limit int    `json:"limit,omitempty" jsonschema:"description=Max sessions to return (default: 20)"`
}

// LocationSummary represents a location in list results
type LocationSummary struct {
	Name     string   `json:"name"`
	Type     string   `json:"type,omitempty"`
	Region   string   `json:"region,omitempty"`
	Overview string   `json:"overview,omitempty"`
	Links    []string `json:"connections,omitempty"`
	Sessions int      `json:"session_count"`
}

// PlotThreadSummary represents a plot thread in list results
type PlotThreadSummary struct {
	Name      string   `json:"name"`
	Status    string   `json:"status,omitempty"`
	Priority  string   `json:"priority,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	Locations []string `json:"related_locations,omitempty"`
	Sessions  int      `json:"session_count"`
}

// EntityMatch represents a search hit
type EntityMatch struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Snippet string `json:"snippet,omitempty"`
	Exact   bool   `json:"exact_name_match,omitempty"`
}

// SessionSummary represents a processing session in list results
type SessionSummary struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Date     string   `json:"date,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Phase    int      `json:"current_phase"`
	Complete bool     `json:"complete"`
}

type handler = server.ToolHandlerFunc

// NewServer builds the MCP server and registers the knowledge base tools
func NewServer(database *db.DB, log logger.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"Chronicler",
		"1.0.0",
	)

	listLocationsTool := mcp.NewTool("list_locations",
		mcp.WithDescription("List campaign locations from the knowledge base, optionally filtered by region"),
		mcp.WithString("region",
			mcp.Description("Only locations in this region (case-insensitive)")),
		mcp.WithNumber("limit",
			mcp.Description("Max locations to return (default: 50)")),
	)
	s.AddTool(listLocationsTool, withLogging(log, "list_locations", makeListLocationsHandler(database)))

	listThreadsTool := mcp.NewTool("list_plot_threads",
		mcp.WithDescription("List campaign plot threads with status and priority, optionally filtered by status"),
		mcp.WithString("status",
			mcp.Description("Only threads with this status, e.g. Active or Resolved")),
		mcp.WithNumber("limit",
			mcp.Description("Max threads to return (default: 50)")),
	)
	s.AddTool(listThreadsTool, withLogging(log, "list_plot_threads", makeListPlotThreadsHandler(database)))

	getEntityTool := mcp.NewTool("get_entity",
		mcp.WithDescription("Retrieve one location or plot thread by name, with its links, contributing sessions and accumulated wiki pages"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Entity name (case-insensitive)")),
	)
	s.AddTool(getEntityTool, withLogging(log, "get_entity", makeGetEntityHandler(database)))

	searchTool := mcp.NewTool("search_entities",
		mcp.WithDescription("Full-text search across locations and plot threads"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search term")),
		mcp.WithString("kind",
			mcp.Description("Restrict to 'location' or 'plot-thread'")),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 10)")),
	)
	s.AddTool(searchTool, withLogging(log, "search_entities", makeSearchEntitiesHandler(database)))

	listSessionsTool := mcp.NewTool("list_sessions",
		mcp.WithDescription("List processing sessions, newest first. Supports tag:, status:, after: and before: filters."),
		mcp.WithString("query",
			mcp.Description("Filter query, e.g. 'tag:npc status:complete'")),
		mcp.WithNumber("limit",
			mcp.Description("Max sessions to return (default: 20)")),
	)
	s.AddTool(listSessionsTool, withLogging(log, "list_sessions", makeListSessionsHandler(database)))

	return s
}

// StartServer serves the knowledge base over stdio until the client disconnects
func StartServer(database *db.DB, log logger.Logger) error {
	log.Info("mcp", "server starting", nil)
	return server.ServeStdio(NewServer(database, log))
}

func withLogging(log logger.Logger, tool string, next handler) handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := next(ctx, request)
		details := map[string]interface{}{"tool": tool}
		if result != nil && result.IsError {
			details["failed"] = true
		}
		log.Debug("mcp", "tool called", details)
		return result, err
	}
}

func decodeArgs(request mcp.CallToolRequest, dest interface{}) error {
	argsBytes, _ := json.Marshal(request.Params.Arguments)
	return json.Unmarshal(argsBytes, dest)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	resultJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func makeListLocationsHandler(database *db.DB) handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListLocationsArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		limit := args.Limit
		if limit == 0 {
			limit = 50
		}

		locs, err := database.ListLocations()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}

		results := []LocationSummary{}
		for _, loc := range locs {
			if args.Region != "" && !strings.EqualFold(loc.Region, args.Region) {
				continue
			}
			results = append(results, LocationSummary{
				Name:     loc.Name,
				Type:     loc.Type,
				Region:   loc.Region,
				Overview: loc.Overview,
				Links:    loc.Connections,
				Sessions: len(loc.Sessions),
			})
			if len(results) >= limit {
				break
			}
		}
		return jsonResult(map[string]interface{}{"locations": results})
	}
}

func makeListPlotThreadsHandler(database *db.DB) handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListPlotThreadsArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		limit := args.Limit
		if limit == 0 {
			limit = 50
		}

		threads, err := database.ListPlotThreads()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}

		results := []PlotThreadSummary{}
		for _, th := range threads {
			if args.Status != "" && !strings.EqualFold(th.Status, args.Status) {
				continue
			}
			results = append(results, PlotThreadSummary{
				Name:      th.Name,
				Status:    th.Status,
				Priority:  th.Priority,
				Summary:   th.Summary,
				Locations: th.RelatedLocations,
				Sessions:  len(th.Sessions),
			})
			if len(results) >= limit {
				break
			}
		}
		return jsonResult(map[string]interface{}{"plot_threads": results})
	}
}

func makeGetEntityHandler(database *db.DB) handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args GetEntityArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if strings.TrimSpace(args.Name) == "" {
			return mcp.NewToolResultError("name is required"), nil
		}

		entry, err := kb.Lookup(database, args.Name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
		}
		if entry == nil {
			return mcp.NewToolResultError(fmt.Sprintf("no location or plot thread named %q", args.Name)), nil
		}

		text, err := kb.Describe(database, entry)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func makeSearchEntitiesHandler(database *db.DB) handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args SearchEntitiesArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		limit := args.Limit
		if limit == 0 {
			limit = 10
		}

		kind := models.EntityKind(args.Kind)
		if kind != "" && kind != models.KindLocation && kind != models.KindPlotThread {
			return mcp.NewToolResultError(fmt.Sprintf("unknown kind %q", args.Kind)), nil
		}

		hits, err := search.SearchKind(database, args.Query, kind, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}

		results := []EntityMatch{}
		for _, h := range hits {
			results = append(results, EntityMatch{
				Name:    h.Name,
				Kind:    string(h.Kind),
				Snippet: h.Snippet,
				Exact:   h.Exact,
			})
		}
		return jsonResult(map[string]interface{}{"results": results})
	}
}

func makeListSessionsHandler(database *db.DB) handler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListSessionsArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		limit := args.Limit
		if limit == 0 {
			limit = 20
		}

		sessions, err := database.ListSessions()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}
		sessions = filter.Apply(sessions, filter.ParseQuery(args.Query))
		if len(sessions) > limit {
			sessions = sessions[:limit]
		}

		results := []SessionSummary{}
		for _, s := range sessions {
			results = append(results, SessionSummary{
				ID:       s.ID,
				Title:    s.Title,
				Date:     s.Date,
				Tags:     s.Tags,
				Phase:    s.CurrentPhaseIndex,
				Complete: len(s.Phases) > 0 && s.CompletedCount() == len(s.Phases),
			})
		}
		return jsonResult(map[string]interface{}{"sessions": results})
	}
}
