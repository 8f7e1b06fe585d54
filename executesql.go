package redshiftmcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/amitds1997/redshift-mcp-server/internal/readonly"
	"github.com/amitds1997/redshift-mcp-server/internal/suspect"
)

// ExecuteSQL executes the full read-only query pipeline and returns only
// ExecuteSQLOutput. All errors (validation rejections, suspicious-pattern
// rejections, Redshift errors, Go errors) are converted to output.Error.
// The error message is then evaluated against error_prompts patterns — any
// matching prompt messages are appended. Callers only need to check
// output.Error, never a Go error.
//
// The statement runs inside a READ ONLY transaction that is always rolled
// back. Both validation gates run to completion before any pool contact:
// the read-only classifier and the transaction-escape scan. A rejection
// from either makes execution unreachable for that request.
func (r *RedshiftMcp) ExecuteSQL(ctx context.Context, input ExecuteSQLInput) *ExecuteSQLOutput {
	startTime := time.Now()
	sql := input.SQL

	// 1. Check SQL length (before any processing)
	if len(sql) > r.config.Query.MaxSQLLength {
		return r.handleError(fmt.Errorf("SQL query too long: %d bytes exceeds maximum of %d bytes", len(sql), r.config.Query.MaxSQLLength))
	}

	// 2. Both gates are evaluated unconditionally; neither short-circuits
	// the other. The escape scan surfaces first because it flags hostile
	// text that the classifier may also reject for a blander reason.
	verdict := readonly.Validate(sql)
	signal := suspect.Scan(sql)
	if signal.Suspicious {
		r.logger.Warn().
			Str("sql", truncateForLog(sql, 200)).
			Str("match", signal.Match).
			Msg("suspicious pattern rejected")
		return r.handleError(fmt.Errorf("SQL contains suspicious patterns, execution rejected: %s", sql))
	}
	if !verdict.ReadOnly {
		r.logger.Warn().
			Str("sql", truncateForLog(sql, 200)).
			Str("reason", truncateForLog(verdict.Message, 200)).
			Msg("statement rejected")
		return r.handleError(fmt.Errorf("%s", verdict.Message))
	}

	// 3. Acquire semaphore (respects context cancellation to prevent deadlock)
	select {
	case r.semaphore <- struct{}{}:
	case <-ctx.Done():
		return r.handleError(fmt.Errorf("failed to acquire query slot: all %d connection slots are in use, context cancelled while waiting: %w", cap(r.semaphore), ctx.Err()))
	}
	defer func() { <-r.semaphore }()

	// 4. Determine timeout
	timeout, timeoutRule := r.timeoutMgr.GetTimeoutWithPattern(sql)
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// 5. Acquire connection and execute inside a READ ONLY transaction.
	// BeginTx issues BEGIN READ ONLY, which is the wrapper the escape
	// scan protects.
	conn, err := r.pool.Acquire(queryCtx)
	if err != nil {
		return r.handleError(err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(queryCtx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return r.handleError(err)
	}
	// Always rollback, never commit — read-only statements have nothing
	// to persist. Uses parent ctx, not queryCtx: if the query timed out,
	// queryCtx is cancelled and rollback would fail.
	defer tx.Rollback(ctx)

	rows, err := tx.Query(queryCtx, sql)
	if err != nil {
		return r.handleError(err)
	}

	// 6. Collect results
	result, err := r.collectRows(rows)
	if err != nil {
		return r.handleError(err)
	}
	result.ExecutionTimeMs = time.Since(startTime).Milliseconds()

	// 7. Apply sanitization (per-field, recursive into SUPER/arrays)
	sanitized := r.sanitizer.HasRules()
	result.Rows = r.sanitizer.SanitizeRows(result.Rows)

	// 8. Apply max result length truncation
	r.truncateIfNeeded(result)

	// 9. Log successful execution with pipeline details
	logEvent := r.logger.Info().
		Str("sql", truncateForLog(sql, 200)).
		Dur("duration", time.Since(startTime)).
		Int("row_count", len(result.Rows))
	if timeoutRule != "" {
		logEvent = logEvent.Str("timeout_rule", timeoutRule)
	}
	if sanitized {
		logEvent = logEvent.Bool("sanitized", true)
	}
	logEvent.Msg("sql executed")

	return result
}

// collectRows reads all rows from pgx.Rows and returns an ExecuteSQLOutput.
func (r *RedshiftMcp) collectRows(rows pgx.Rows) (*ExecuteSQLOutput, error) {
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = fd.Name
	}

	resultRows := make([]map[string]interface{}, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = convertValue(values[i])
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ExecuteSQLOutput{Columns: columns, Rows: resultRows}, nil
}

// convertValue converts a pgx-returned value to a JSON-friendly Go type.
// The cases cover the Redshift type surface: numerics, character types,
// date/time, intervals, BOOLEAN, VARBYTE, and SUPER (which arrives as
// decoded JSON).
func convertValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case float32:
		if math.IsNaN(float64(val)) {
			return "NaN"
		}
		if math.IsInf(float64(val), 1) {
			return "Infinity"
		}
		if math.IsInf(float64(val), -1) {
			return "-Infinity"
		}
		return val
	case float64:
		if math.IsNaN(val) {
			return "NaN"
		}
		if math.IsInf(val, 1) {
			return "Infinity"
		}
		if math.IsInf(val, -1) {
			return "-Infinity"
		}
		return val
	case pgtype.Time:
		if !val.Valid {
			return nil
		}
		us := val.Microseconds
		hours := us / 3_600_000_000
		us -= hours * 3_600_000_000
		minutes := us / 60_000_000
		us -= minutes * 60_000_000
		seconds := us / 1_000_000
		us -= seconds * 1_000_000
		if us > 0 {
			return fmt.Sprintf("%02d:%02d:%02d.%06d", hours, minutes, seconds, us)
		}
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	case pgtype.Interval:
		if !val.Valid {
			return nil
		}
		parts := []string{}
		if val.Months != 0 {
			years := val.Months / 12
			months := val.Months % 12
			if years != 0 {
				parts = append(parts, fmt.Sprintf("%d year(s)", years))
			}
			if months != 0 {
				parts = append(parts, fmt.Sprintf("%d mon(s)", months))
			}
		}
		if val.Days != 0 {
			parts = append(parts, fmt.Sprintf("%d day(s)", val.Days))
		}
		if val.Microseconds != 0 {
			dur := time.Duration(val.Microseconds) * time.Microsecond
			parts = append(parts, dur.String())
		}
		if len(parts) == 0 {
			return "0"
		}
		return strings.Join(parts, " ")
	case pgtype.Numeric:
		if !val.Valid {
			return nil
		}
		if val.NaN {
			return "NaN"
		}
		if val.InfinityModifier == pgtype.Infinity {
			return "Infinity"
		}
		if val.InfinityModifier == pgtype.NegativeInfinity {
			return "-Infinity"
		}
		b, err := val.MarshalJSON()
		if err != nil {
			return nil
		}
		return string(b)
	case []byte:
		// VARBYTE — base64 encode
		return base64.StdEncoding.EncodeToString(val)
	case string:
		return val
	case map[string]interface{}:
		result := make(map[string]interface{}, len(val))
		for k, v := range val {
			result[k] = convertValue(v)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(val))
		for i, v := range val {
			result[i] = convertValue(v)
		}
		return result
	default:
		return val
	}
}

// handleError converts any error into an ExecuteSQLOutput with error message.
// The error message is evaluated against error_prompts — matching prompt messages are appended.
func (r *RedshiftMcp) handleError(err error) *ExecuteSQLOutput {
	errMsg := err.Error()
	prompt := r.errPrompts.Match(errMsg)
	patterns := r.errPrompts.MatchedPatterns(errMsg)

	logEvent := r.logger.Error().Err(err)
	if len(patterns) > 0 {
		logEvent = logEvent.Strs("error_prompts", patterns)
	}
	logEvent.Msg("sql error")

	if prompt != "" {
		errMsg = errMsg + "\n\n" + prompt
	}
	return &ExecuteSQLOutput{Error: errMsg}
}

// truncateIfNeeded truncates output rows if they exceed MaxResultLength (in characters).
func (r *RedshiftMcp) truncateIfNeeded(output *ExecuteSQLOutput) {
	jsonBytes, _ := json.Marshal(output.Rows)
	jsonStr := string(jsonBytes)
	if utf8.RuneCountInString(jsonStr) <= r.config.Query.MaxResultLength {
		return
	}
	// Truncate to MaxResultLength characters (runes)
	runes := []rune(jsonStr)
	truncated := string(runes[:r.config.Query.MaxResultLength])
	output.Rows = nil
	output.Error = truncated + "...[truncated] Result is too long! Add limits in your query!"
}

// truncateForLog truncates a string for log output to avoid oversized log entries.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	truncateAt := maxLen
	for truncateAt > 0 && !utf8.RuneStart(s[truncateAt]) {
		truncateAt--
	}
	return s[:truncateAt] + "...[truncated]"
}
