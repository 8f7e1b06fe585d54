// Package redshiftmcp provides safe, read-only Amazon Redshift access for
// AI agents through the Model Context Protocol (MCP).
//
// It exposes five tools — ExecuteSQL plus the catalog discovery tools
// ListDatabases, ListSchemas, ListTables, and ListColumns — with a full
// execution pipeline: read-only statement classification, transaction-escape
// scanning, data sanitization, result truncation, and dynamic agent steering
// via error prompts.
//
// Every statement accepted by ExecuteSQL runs inside a READ ONLY transaction
// that is always rolled back. Two independent gates run before any statement
// reaches the connection pool: an AST-based classifier (backed by PostgreSQL's
// actual C parser via pg_query) that accepts only SELECT, DESCRIBE, SHOW, and
// EXPLAIN shapes, and a raw-text scan that rejects statements attempting to
// close the transaction wrapper early (END, COMMIT, ROLLBACK, ABORT hidden
// behind comments or semicolons). A rejection from either gate makes
// execution unreachable for that request.
//
// Catalog tools query the cluster-wide SVV system views and cache their
// results with a TTL; callers can force a refresh per call.
//
// # Library Usage
//
//	r, err := redshiftmcp.New(ctx, connString, redshiftmcp.Config{
//		Pool: redshiftmcp.PoolConfig{MaxConns: 5},
//		Query: redshiftmcp.QueryConfig{
//			DefaultTimeoutSeconds: 30,
//			CatalogTimeoutSeconds: 10,
//		},
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer r.Close(ctx)
//
//	// Use directly
//	output := r.ExecuteSQL(ctx, redshiftmcp.ExecuteSQLInput{SQL: "SELECT * FROM sales LIMIT 10"})
//
//	// Or register as MCP tools
//	redshiftmcp.RegisterMCPTools(mcpServer, r)
package redshiftmcp
