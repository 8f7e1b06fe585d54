package redshiftmcp

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/amitds1997/redshift-mcp-server/internal/quoting"
)

// Catalog queries run against the SVV system views, which span all
// databases in the cluster (including datashares) regardless of which
// database the pool is connected to. Identifier filters are rendered as
// literals via the quoting package because the simple protocol sends
// them inline.
const svvDatabasesSQL = `
SELECT
    database_name,
    database_owner,
    database_type,
    database_acl,
    database_options,
    database_isolation_level
FROM pg_catalog.svv_redshift_databases
ORDER BY database_name;
`

const svvSchemasSQL = `
SELECT
    database_name,
    schema_name,
    schema_owner,
    schema_type,
    schema_acl,
    source_database,
    schema_option
FROM pg_catalog.svv_all_schemas
WHERE database_name = %s
ORDER BY schema_name;
`

const svvTablesSQL = `
SELECT
    database_name,
    schema_name,
    table_name,
    table_acl,
    table_type,
    remarks
FROM pg_catalog.svv_all_tables
WHERE database_name = %s AND schema_name = %s
ORDER BY table_name;
`

const svvColumnsSQL = `
SELECT
    database_name,
    schema_name,
    table_name,
    column_name,
    ordinal_position,
    column_default,
    is_nullable,
    data_type,
    character_maximum_length,
    numeric_precision,
    numeric_scale,
    remarks
FROM pg_catalog.svv_all_columns
WHERE database_name = %s AND schema_name = %s AND table_name = %s
ORDER BY ordinal_position;
`

// ListDatabases returns all databases in the cluster visible to the
// connected user, from SVV_REDSHIFT_DATABASES. Results are cached;
// input.ForceRefresh bypasses the cache. Does NOT go through the
// validation/sanitization pipeline.
func (r *RedshiftMcp) ListDatabases(ctx context.Context, input ListDatabasesInput) (*ListDatabasesOutput, error) {
	databases, err := r.databases.GetOrFill("databases", input.ForceRefresh, func() ([]RedshiftDatabase, error) {
		return r.queryDatabases(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &ListDatabasesOutput{Databases: databases}, nil
}

func (r *RedshiftMcp) queryDatabases(ctx context.Context) ([]RedshiftDatabase, error) {
	startTime := time.Now()
	databases := []RedshiftDatabase{}
	err := r.catalogQuery(ctx, "ListDatabases", svvDatabasesSQL, func(rows pgx.Rows) error {
		var d RedshiftDatabase
		if err := rows.Scan(&d.DatabaseName, &d.DatabaseOwner, &d.DatabaseType,
			&d.DatabaseACL, &d.DatabaseOptions, &d.DatabaseIsolationLevel); err != nil {
			return err
		}
		databases = append(databases, d)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Dur("duration", time.Since(startTime)).
		Int("database_count", len(databases)).
		Msg("ListDatabases executed")

	return databases, nil
}

// ListSchemas returns all schemas of a database, from SVV_ALL_SCHEMAS.
// Results are cached per database; input.ForceRefresh bypasses the cache.
func (r *RedshiftMcp) ListSchemas(ctx context.Context, input ListSchemasInput) (*ListSchemasOutput, error) {
	if input.Database == "" {
		return nil, fmt.Errorf("ListSchemas: database must be non-empty")
	}
	schemas, err := r.schemas.GetOrFill(input.Database, input.ForceRefresh, func() ([]RedshiftSchema, error) {
		return r.querySchemas(ctx, input.Database)
	})
	if err != nil {
		return nil, err
	}
	return &ListSchemasOutput{Schemas: schemas}, nil
}

func (r *RedshiftMcp) querySchemas(ctx context.Context, database string) ([]RedshiftSchema, error) {
	startTime := time.Now()
	db, err := quoting.Quote(database)
	if err != nil {
		return nil, fmt.Errorf("ListSchemas: %w", err)
	}

	schemas := []RedshiftSchema{}
	sql := fmt.Sprintf(svvSchemasSQL, db)
	err = r.catalogQuery(ctx, "ListSchemas", sql, func(rows pgx.Rows) error {
		var s RedshiftSchema
		if err := rows.Scan(&s.DatabaseName, &s.SchemaName, &s.SchemaOwner,
			&s.SchemaType, &s.SchemaACL, &s.SourceDatabase, &s.SchemaOption); err != nil {
			return err
		}
		schemas = append(schemas, s)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Dur("duration", time.Since(startTime)).
		Str("database", database).
		Int("schema_count", len(schemas)).
		Msg("ListSchemas executed")

	return schemas, nil
}

// ListTables returns all tables of a schema, from SVV_ALL_TABLES.
// Results are cached per database/schema; input.ForceRefresh bypasses
// the cache.
func (r *RedshiftMcp) ListTables(ctx context.Context, input ListTablesInput) (*ListTablesOutput, error) {
	if input.Database == "" || input.Schema == "" {
		return nil, fmt.Errorf("ListTables: database and schema must be non-empty")
	}
	key := input.Database + "\x00" + input.Schema
	tables, err := r.tables.GetOrFill(key, input.ForceRefresh, func() ([]RedshiftTable, error) {
		return r.queryTables(ctx, input.Database, input.Schema)
	})
	if err != nil {
		return nil, err
	}
	return &ListTablesOutput{Tables: tables}, nil
}

func (r *RedshiftMcp) queryTables(ctx context.Context, database, schema string) ([]RedshiftTable, error) {
	startTime := time.Now()
	db, err := quoting.Quote(database)
	if err != nil {
		return nil, fmt.Errorf("ListTables: %w", err)
	}
	sch, err := quoting.Quote(schema)
	if err != nil {
		return nil, fmt.Errorf("ListTables: %w", err)
	}

	tables := []RedshiftTable{}
	sql := fmt.Sprintf(svvTablesSQL, db, sch)
	err = r.catalogQuery(ctx, "ListTables", sql, func(rows pgx.Rows) error {
		var t RedshiftTable
		if err := rows.Scan(&t.DatabaseName, &t.SchemaName, &t.TableName,
			&t.TableACL, &t.TableType, &t.Remarks); err != nil {
			return err
		}
		tables = append(tables, t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Dur("duration", time.Since(startTime)).
		Str("database", database).
		Str("schema", schema).
		Int("table_count", len(tables)).
		Msg("ListTables executed")

	return tables, nil
}

// ListColumns returns all columns of a table, from SVV_ALL_COLUMNS.
// Results are cached per database/schema/table; input.ForceRefresh
// bypasses the cache.
func (r *RedshiftMcp) ListColumns(ctx context.Context, input ListColumnsInput) (*ListColumnsOutput, error) {
	if input.Database == "" || input.Schema == "" || input.Table == "" {
		return nil, fmt.Errorf("ListColumns: database, schema, and table must be non-empty")
	}
	key := input.Database + "\x00" + input.Schema + "\x00" + input.Table
	columns, err := r.columns.GetOrFill(key, input.ForceRefresh, func() ([]RedshiftColumn, error) {
		return r.queryColumns(ctx, input.Database, input.Schema, input.Table)
	})
	if err != nil {
		return nil, err
	}
	return &ListColumnsOutput{Columns: columns}, nil
}

func (r *RedshiftMcp) queryColumns(ctx context.Context, database, schema, table string) ([]RedshiftColumn, error) {
	startTime := time.Now()
	db, err := quoting.Quote(database)
	if err != nil {
		return nil, fmt.Errorf("ListColumns: %w", err)
	}
	sch, err := quoting.Quote(schema)
	if err != nil {
		return nil, fmt.Errorf("ListColumns: %w", err)
	}
	tbl, err := quoting.Quote(table)
	if err != nil {
		return nil, fmt.Errorf("ListColumns: %w", err)
	}

	columns := []RedshiftColumn{}
	sql := fmt.Sprintf(svvColumnsSQL, db, sch, tbl)
	err = r.catalogQuery(ctx, "ListColumns", sql, func(rows pgx.Rows) error {
		var c RedshiftColumn
		if err := rows.Scan(&c.DatabaseName, &c.SchemaName, &c.TableName, &c.ColumnName,
			&c.OrdinalPosition, &c.ColumnDefault, &c.IsNullable, &c.DataType,
			&c.CharacterMaximumLength, &c.NumericPrecision, &c.NumericScale, &c.Remarks); err != nil {
			return err
		}
		columns = append(columns, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Dur("duration", time.Since(startTime)).
		Str("database", database).
		Str("schema", schema).
		Str("table", table).
		Int("column_count", len(columns)).
		Msg("ListColumns executed")

	return columns, nil
}

// catalogQuery runs one catalog query under the shared semaphore and the
// catalog timeout, invoking scan once per row.
func (r *RedshiftMcp) catalogQuery(ctx context.Context, op string, sql string, scan func(pgx.Rows) error) error {
	select {
	case r.semaphore <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("%s: failed to acquire query slot: all %d connection slots are in use, context cancelled while waiting: %w", op, cap(r.semaphore), ctx.Err())
	}
	defer func() { <-r.semaphore }()

	queryCtx, cancel := context.WithTimeout(ctx, time.Duration(r.config.Query.CatalogTimeoutSeconds)*time.Second)
	defer cancel()

	conn, err := r.pool.Acquire(queryCtx)
	if err != nil {
		return fmt.Errorf("%s: failed to acquire connection: %w", op, err)
	}
	defer conn.Release()

	rows, err := conn.Query(queryCtx, sql)
	if err != nil {
		return fmt.Errorf("%s query failed: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("%s scan failed: %w", op, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%s rows error: %w", op, err)
	}
	return nil
}
