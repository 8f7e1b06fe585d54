package redshiftmcp_test

import (
	"context"
	"strings"
	"testing"

	redshiftmcp "github.com/amitds1997/redshift-mcp-server"
)

// All tests in this file exercise requests that are rejected before any pool
// contact, so they run against dummyConnString without a live cluster.

func execRejected(t *testing.T, r *redshiftmcp.RedshiftMcp, sql string) string {
	t.Helper()
	output := r.ExecuteSQL(context.Background(), redshiftmcp.ExecuteSQLInput{SQL: sql})
	if output.Error == "" {
		t.Fatalf("expected rejection for SQL %q, got success", sql)
	}
	return output.Error
}

func TestExecuteSQL_EmptyStatementRejected(t *testing.T) {
	t.Parallel()
	r := newLazyInstance(t, validConfig())
	got := execRejected(t, r, "")
	if got != "SQL statement cannot be empty or whitespace." {
		t.Fatalf("unexpected error: %q", got)
	}
}

func TestExecuteSQL_WhitespaceStatementRejected(t *testing.T) {
	t.Parallel()
	r := newLazyInstance(t, validConfig())
	got := execRejected(t, r, "   \n\t ")
	if got != "SQL statement cannot be empty or whitespace." {
		t.Fatalf("unexpected error: %q", got)
	}
}

func TestExecuteSQL_MultiStatementRejected(t *testing.T) {
	t.Parallel()
	r := newLazyInstance(t, validConfig())
	got := execRejected(t, r, "SELECT 1; SELECT 2")
	if got != "Only one SQL statement is allowed at a time." {
		t.Fatalf("unexpected error: %q", got)
	}
}

func TestExecuteSQL_MutationRejected(t *testing.T) {
	t.Parallel()
	r := newLazyInstance(t, validConfig())
	sql := "DELETE FROM users WHERE id = 1"
	got := execRejected(t, r, sql)
	want := "Not a valid SQL statement. Only SELECT, DESCRIBE, SHOW and EXPLAIN statements are allowed.\nInvalid SQL statement: " + sql
	if got != want {
		t.Fatalf("unexpected error:\n got: %q\nwant: %q", got, want)
	}
}

func TestExecuteSQL_GarbageRejected(t *testing.T) {
	t.Parallel()
	r := newLazyInstance(t, validConfig())
	got := execRejected(t, r, "hello world")
	if !strings.HasPrefix(got, "Not a valid SQL statement.") {
		t.Fatalf("unexpected error: %q", got)
	}
}

func TestExecuteSQL_SuspiciousPatternRejected(t *testing.T) {
	t.Parallel()
	r := newLazyInstance(t, validConfig())
	sql := "END; DROP TABLE users;"
	got := execRejected(t, r, sql)
	want := "SQL contains suspicious patterns, execution rejected: " + sql
	if got != want {
		t.Fatalf("unexpected error:\n got: %q\nwant: %q", got, want)
	}
}

func TestExecuteSQL_SuspiciousSurfacesBeforeMultiStatement(t *testing.T) {
	t.Parallel()
	// This is both a multi-statement and a transaction escape. The escape
	// signal wins: the caller sees the hostile nature of the text, not the
	// blander statement-count rejection.
	r := newLazyInstance(t, validConfig())
	sql := "SELECT 1; END; DROP TABLE x;"
	got := execRejected(t, r, sql)
	if !strings.HasPrefix(got, "SQL contains suspicious patterns, execution rejected:") {
		t.Fatalf("expected suspicious-pattern rejection, got: %q", got)
	}
}

func TestExecuteSQL_CommitRejected(t *testing.T) {
	t.Parallel()
	r := newLazyInstance(t, validConfig())
	got := execRejected(t, r, "COMMIT;")
	if !strings.HasPrefix(got, "SQL contains suspicious patterns, execution rejected:") {
		t.Fatalf("expected suspicious-pattern rejection, got: %q", got)
	}
}

func TestExecuteSQL_TooLongRejected(t *testing.T) {
	t.Parallel()
	config := validConfig()
	config.Query.MaxSQLLength = 50
	r := newLazyInstance(t, config)
	sql := "SELECT '" + strings.Repeat("a", 100) + "'"
	got := execRejected(t, r, sql)
	if !strings.Contains(got, "SQL query too long") {
		t.Fatalf("unexpected error: %q", got)
	}
}

func TestExecuteSQL_ErrorPromptAppendedToRejection(t *testing.T) {
	t.Parallel()
	config := validConfig()
	config.ErrorPrompts = []redshiftmcp.ErrorPromptRule{
		{
			Pattern: "(?i)suspicious patterns",
			Message: "Run the statement outside a transaction wrapper.",
		},
	}
	r := newLazyInstance(t, config)
	got := execRejected(t, r, "ROLLBACK;")
	if !strings.Contains(got, "SQL contains suspicious patterns") {
		t.Fatalf("expected suspicious-pattern rejection, got: %q", got)
	}
	if !strings.Contains(got, "\n\nRun the statement outside a transaction wrapper.") {
		t.Fatalf("expected error prompt appended, got: %q", got)
	}
}

func TestExecuteSQL_ReadOnlySelectNotRejectedByGates(t *testing.T) {
	t.Parallel()
	// A clean SELECT passes both gates and proceeds to pool contact, which
	// fails against the dummy endpoint. The error must be a connection
	// error, not a validation message.
	config := validConfig()
	config.Query.DefaultTimeoutSeconds = 1
	r := newLazyInstance(t, config)
	output := r.ExecuteSQL(context.Background(), redshiftmcp.ExecuteSQLInput{SQL: "SELECT 1"})
	if output.Error == "" {
		t.Fatalf("expected connection error against dummy endpoint")
	}
	if strings.Contains(output.Error, "Not a valid SQL statement") ||
		strings.Contains(output.Error, "suspicious patterns") {
		t.Fatalf("clean SELECT must not be rejected by validation gates: %q", output.Error)
	}
}

func TestListSchemas_EmptyDatabaseRejected(t *testing.T) {
	t.Parallel()
	r := newLazyInstance(t, validConfig())
	_, err := r.ListSchemas(context.Background(), redshiftmcp.ListSchemasInput{Database: ""})
	if err == nil {
		t.Fatalf("expected error for empty database name")
	}
}

func TestListTables_EmptyInputsRejected(t *testing.T) {
	t.Parallel()
	r := newLazyInstance(t, validConfig())
	_, err := r.ListTables(context.Background(), redshiftmcp.ListTablesInput{Database: "dev", Schema: ""})
	if err == nil {
		t.Fatalf("expected error for empty schema name")
	}
	_, err = r.ListTables(context.Background(), redshiftmcp.ListTablesInput{Database: "", Schema: "public"})
	if err == nil {
		t.Fatalf("expected error for empty database name")
	}
}

func TestListColumns_EmptyTableRejected(t *testing.T) {
	t.Parallel()
	r := newLazyInstance(t, validConfig())
	_, err := r.ListColumns(context.Background(), redshiftmcp.ListColumnsInput{Database: "dev", Schema: "public", Table: ""})
	if err == nil {
		t.Fatalf("expected error for empty table name")
	}
}
