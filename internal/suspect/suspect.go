// Package suspect scans raw SQL text for transaction-escape sequences.
//
// Statements handed to the executor run inside a BEGIN READ ONLY wrapper.
// Crafted text containing END, COMMIT, ROLLBACK, or ABORT at a statement
// boundary could close that wrapper early and let whatever follows run
// outside the read-only transaction. The scan is an independent gate in
// front of execution: it runs alongside the read-only classifier and a
// match from it always denies execution.
//
// The scan is text-only and deliberately does not exempt keyword
// occurrences inside string or identifier literals: a false positive
// refuses a legitimate query, a false negative breaks the read-only
// contract, so the scan fails closed.
package suspect

import "strings"

// Signal is the outcome of scanning one SQL string. Match holds the
// offending substring, from the escape keyword through its terminating
// semicolon, for diagnostics.
type Signal struct {
	Suspicious bool
	Match      string
}

// Scan reports whether sql contains a transaction-escape sequence:
// at a statement boundary (start of input, start of a line, or right
// after a semicolon), an optional run of separators — whitespace, line
// comments, balanced block comments (nesting counted), semicolons —
// then END, COMMIT, ROLLBACK, or ABORT, an optional WORK or TRANSACTION,
// more separators, and a terminating semicolon. Pure function, safe for
// concurrent use.
func Scan(sql string) Signal {
	for i := 0; i < len(sql); i++ {
		if !boundaryAt(sql, i) {
			continue
		}
		if match, ok := matchEscape(sql, i); ok {
			return Signal{Suspicious: true, Match: match}
		}
	}
	return Signal{}
}

func boundaryAt(sql string, i int) bool {
	if i == 0 {
		return true
	}
	prev := sql[i-1]
	return prev == ';' || prev == '\n'
}

// matchEscape attempts to match the escape sequence starting at a
// statement boundary. It returns the matched keyword-to-semicolon
// substring on success.
func matchEscape(sql string, start int) (string, bool) {
	pos, _, _ := skipSeparators(sql, start)
	kwStart := pos
	word, pos := readWord(sql, pos)
	switch strings.ToUpper(word) {
	case "END", "COMMIT", "ROLLBACK", "ABORT":
	default:
		return "", false
	}

	// Longer form first: keyword, separators, WORK or TRANSACTION, then
	// a semicolon-terminated separator run.
	if p, _, moved := skipSeparators(sql, pos); moved {
		if w, p2 := readWord(sql, p); isModifier(w) {
			if end, ok := terminated(sql, p2); ok {
				return sql[kwStart:end], true
			}
		}
	}
	// Short form: keyword straight to the terminating semicolon.
	if end, ok := terminated(sql, pos); ok {
		return sql[kwStart:end], true
	}
	return "", false
}

func isModifier(word string) bool {
	up := strings.ToUpper(word)
	return up == "WORK" || up == "TRANSACTION"
}

// terminated skips separators from pos and reports whether the run
// contains a semicolon. On success it returns the position just past the
// last semicolon in the run, which is where the matched escape ends.
func terminated(sql string, pos int) (int, bool) {
	_, lastSemi, _ := skipSeparators(sql, pos)
	if lastSemi >= 0 {
		return lastSemi, true
	}
	return 0, false
}

// skipSeparators advances past whitespace, comments, and semicolons.
// It returns the position after the run, the position just past the last
// semicolon seen (-1 if none), and whether anything was consumed.
// An unbalanced block comment is not a separator; the run stops in front
// of it.
func skipSeparators(sql string, pos int) (end int, lastSemiEnd int, moved bool) {
	lastSemiEnd = -1
	start := pos
	for pos < len(sql) {
		c := sql[pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f':
			pos++
		case c == ';':
			pos++
			lastSemiEnd = pos
		case c == '-' && pos+1 < len(sql) && sql[pos+1] == '-':
			for pos < len(sql) && sql[pos] != '\n' {
				pos++
			}
		case c == '/' && pos+1 < len(sql) && sql[pos+1] == '*':
			next, ok := skipBalancedComment(sql, pos)
			if !ok {
				return pos, lastSemiEnd, pos > start
			}
			pos = next
		default:
			return pos, lastSemiEnd, pos > start
		}
	}
	return pos, lastSemiEnd, pos > start
}

// skipBalancedComment advances past a block comment, counting depth so
// that nested comments must balance before the comment is considered
// closed. Returns ok=false for an unterminated comment.
func skipBalancedComment(sql string, pos int) (int, bool) {
	depth := 0
	for pos < len(sql) {
		if pos+1 < len(sql) && sql[pos] == '/' && sql[pos+1] == '*' {
			depth++
			pos += 2
			continue
		}
		if pos+1 < len(sql) && sql[pos] == '*' && sql[pos+1] == '/' {
			depth--
			pos += 2
			if depth == 0 {
				return pos, true
			}
			continue
		}
		pos++
	}
	return 0, false
}

// readWord reads a run of keyword characters starting at pos.
func readWord(sql string, pos int) (string, int) {
	start := pos
	for pos < len(sql) {
		c := sql[pos]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			pos++
			continue
		}
		break
	}
	return sql[start:pos], pos
}
