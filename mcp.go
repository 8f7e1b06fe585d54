package redshiftmcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers ExecuteSQL and the catalog discovery tools
// on the given MCP server.
func RegisterMCPTools(mcpServer *server.MCPServer, rsMcp *RedshiftMcp) {
	// ExecuteSQL tool
	executeSQLTool := mcp.NewTool("execute_sql",
		mcp.WithDescription("Execute a read-only SQL statement (SELECT, DESCRIBE, SHOW, EXPLAIN) against the Redshift cluster. Returns results as JSON."),
		mcp.WithString("sql",
			mcp.Required(),
			mcp.Description("The SQL statement to execute. Must be a single read-only statement."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	mcpServer.AddTool(executeSQLTool, rsMcp.loggedToolHandler("execute_sql", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sql, err := req.RequireString("sql")
		if err != nil {
			return mcp.NewToolResultError("sql parameter is required"), nil
		}
		output := rsMcp.ExecuteSQL(ctx, ExecuteSQLInput{SQL: sql})
		if output.Error != "" {
			return mcp.NewToolResultError(output.Error), nil
		}
		jsonBytes, err := json.Marshal(output)
		if err != nil {
			return mcp.NewToolResultError("failed to marshal execute_sql result"), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}))

	// ListDatabases tool
	listDatabasesTool := mcp.NewTool("list_databases",
		mcp.WithDescription("List all databases in the Redshift cluster that are accessible to the current user."),
		mcp.WithBoolean("force_refresh",
			mcp.Description("Bypass the catalog cache and fetch fresh results"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	mcpServer.AddTool(listDatabasesTool, rsMcp.loggedToolHandler("list_databases", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		output, err := rsMcp.ListDatabases(ctx, ListDatabasesInput{
			ForceRefresh: req.GetBool("force_refresh", false),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		jsonBytes, err := json.Marshal(output)
		if err != nil {
			return mcp.NewToolResultError("failed to marshal list_databases result"), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}))

	// ListSchemas tool
	listSchemasTool := mcp.NewTool("list_schemas",
		mcp.WithDescription("List all schemas in a database. Use list_databases first to find valid database names."),
		mcp.WithString("database",
			mcp.Required(),
			mcp.Description("The database name to list schemas for"),
		),
		mcp.WithBoolean("force_refresh",
			mcp.Description("Bypass the catalog cache and fetch fresh results"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	mcpServer.AddTool(listSchemasTool, rsMcp.loggedToolHandler("list_schemas", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		database, err := req.RequireString("database")
		if err != nil {
			return mcp.NewToolResultError("database parameter is required"), nil
		}
		output, err := rsMcp.ListSchemas(ctx, ListSchemasInput{
			Database:     database,
			ForceRefresh: req.GetBool("force_refresh", false),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		jsonBytes, err := json.Marshal(output)
		if err != nil {
			return mcp.NewToolResultError("failed to marshal list_schemas result"), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}))

	// ListTables tool
	listTablesTool := mcp.NewTool("list_tables",
		mcp.WithDescription("List all tables, views, and external tables in a schema. Use list_schemas first to find valid schema names."),
		mcp.WithString("database",
			mcp.Required(),
			mcp.Description("The database name"),
		),
		mcp.WithString("schema",
			mcp.Required(),
			mcp.Description("The schema name to list tables for"),
		),
		mcp.WithBoolean("force_refresh",
			mcp.Description("Bypass the catalog cache and fetch fresh results"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	mcpServer.AddTool(listTablesTool, rsMcp.loggedToolHandler("list_tables", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		database, err := req.RequireString("database")
		if err != nil {
			return mcp.NewToolResultError("database parameter is required"), nil
		}
		schema, err := req.RequireString("schema")
		if err != nil {
			return mcp.NewToolResultError("schema parameter is required"), nil
		}
		output, err := rsMcp.ListTables(ctx, ListTablesInput{
			Database:     database,
			Schema:       schema,
			ForceRefresh: req.GetBool("force_refresh", false),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		jsonBytes, err := json.Marshal(output)
		if err != nil {
			return mcp.NewToolResultError("failed to marshal list_tables result"), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}))

	// ListColumns tool
	listColumnsTool := mcp.NewTool("list_columns",
		mcp.WithDescription("List all columns of a table including types, nullability, and defaults. Use list_tables first to find valid table names."),
		mcp.WithString("database",
			mcp.Required(),
			mcp.Description("The database name"),
		),
		mcp.WithString("schema",
			mcp.Required(),
			mcp.Description("The schema name"),
		),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("The table name to list columns for"),
		),
		mcp.WithBoolean("force_refresh",
			mcp.Description("Bypass the catalog cache and fetch fresh results"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	mcpServer.AddTool(listColumnsTool, rsMcp.loggedToolHandler("list_columns", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		database, err := req.RequireString("database")
		if err != nil {
			return mcp.NewToolResultError("database parameter is required"), nil
		}
		schema, err := req.RequireString("schema")
		if err != nil {
			return mcp.NewToolResultError("schema parameter is required"), nil
		}
		table, err := req.RequireString("table")
		if err != nil {
			return mcp.NewToolResultError("table parameter is required"), nil
		}
		output, err := rsMcp.ListColumns(ctx, ListColumnsInput{
			Database:     database,
			Schema:       schema,
			Table:        table,
			ForceRefresh: req.GetBool("force_refresh", false),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		jsonBytes, err := json.Marshal(output)
		if err != nil {
			return mcp.NewToolResultError("failed to marshal list_columns result"), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}))
}

// loggedToolHandler wraps a tool handler to log request and response lengths.
func (r *RedshiftMcp) loggedToolHandler(tool string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		reqLen := requestLength(req)
		result, err := handler(ctx, req)
		respLen := resultLength(result)
		r.logger.Info().
			Str("tool", tool).
			Int("request_bytes", reqLen).
			Int("response_bytes", respLen).
			Msg("tool call")
		return result, err
	}
}

// requestLength returns the JSON-encoded byte length of the request arguments.
func requestLength(req mcp.CallToolRequest) int {
	args := req.GetArguments()
	if len(args) == 0 {
		return 0
	}
	b, err := json.Marshal(args)
	if err != nil {
		return 0
	}
	return len(b)
}

// resultLength returns the total byte length of text content in a CallToolResult.
func resultLength(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	total := 0
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			total += len(tc.Text)
		}
	}
	return total
}
