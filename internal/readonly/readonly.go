// Package readonly classifies SQL statements as read-only or not.
//
// A statement is accepted only when its top-level construct is SELECT,
// DESCRIBE, SHOW, or EXPLAIN, and every CTE and subquery anywhere in its
// tree is itself a SELECT or VALUES construct. Statements that fail to
// parse are rejected — there is no safe interpretation of unparseable SQL.
package readonly

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Rejection and acceptance messages. The wording is a stable contract:
// callers log these verbatim and agents are steered by them.
const (
	emptyMessage    = "SQL statement cannot be empty or whitespace."
	multiMessage    = "Only one SQL statement is allowed at a time."
	invalidMessage  = "Not a valid SQL statement. Only SELECT, DESCRIBE, SHOW and EXPLAIN statements are allowed."
	readOnlyMessage = "This is a read-only SQL statement."
)

// Verdict is the result of classifying a single SQL string.
type Verdict struct {
	ReadOnly bool
	Message  string
}

// Validate classifies sql and returns a Verdict. It is a pure function:
// no I/O, no shared state, safe for concurrent use.
func Validate(sql string) Verdict {
	if strings.TrimSpace(sql) == "" {
		return Verdict{Message: emptyMessage}
	}

	// Statement counting is lexical rather than parser-based: command
	// statements such as DESCRIBE are opaque to the Postgres grammar but
	// still count toward the single-statement limit.
	stmts := splitStatements(sql)
	if len(stmts) > 1 {
		return Verdict{Message: multiMessage}
	}

	reject := Verdict{Message: invalidMessage + "\nInvalid SQL statement: " + sql}
	if len(stmts) == 0 {
		// Comments or separators only.
		return reject
	}
	stmt := stmts[0]

	// Redshift treats DESCRIBE, SHOW, and EXPLAIN as commands whose body
	// is opaque text; classify them by their leading keyword.
	switch firstKeyword(stmt) {
	case "DESCRIBE", "DESC", "SHOW", "EXPLAIN":
		return Verdict{ReadOnly: true, Message: readOnlyMessage}
	}

	result, err := pg_query.Parse(rewriteQualify(stmt))
	if err != nil || len(result.Stmts) != 1 || result.Stmts[0].Stmt == nil {
		return reject
	}

	node := result.Stmts[0].Stmt
	sel, ok := node.Node.(*pg_query.Node_SelectStmt)
	if !ok {
		return reject
	}
	if !walkSelect(sel.SelectStmt) {
		return reject
	}
	return Verdict{ReadOnly: true, Message: readOnlyMessage}
}

// rewriteQualify maps Redshift's QUALIFY clause, which the Postgres grammar
// does not know, to HAVING so that the statement still parses. The rewrite
// is for classification only — the rewritten text is never executed.
func rewriteQualify(sql string) string {
	lex := newLexer(sql)
	var out strings.Builder
	rewrote := false
	for {
		tok, kind := lex.next()
		if kind == tokenEOF {
			break
		}
		if kind == tokenWord && strings.EqualFold(tok, "QUALIFY") {
			out.WriteString("HAVING")
			rewrote = true
			continue
		}
		out.WriteString(tok)
	}
	if !rewrote {
		return sql
	}
	return out.String()
}
