package redshiftmcp

import (
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/amitds1997/redshift-mcp-server/internal/errprompt"
)

func TestConvertValue_Nil(t *testing.T) {
	t.Parallel()
	if got := convertValue(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestConvertValue_Time(t *testing.T) {
	t.Parallel()
	ts := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	got := convertValue(ts)
	if got != "2025-06-15T10:30:00Z" {
		t.Fatalf("expected RFC3339 timestamp, got %v", got)
	}
}

func TestConvertValue_NonFiniteFloats(t *testing.T) {
	t.Parallel()
	if got := convertValue(math.NaN()); got != "NaN" {
		t.Fatalf("expected \"NaN\", got %v", got)
	}
	if got := convertValue(math.Inf(1)); got != "Infinity" {
		t.Fatalf("expected \"Infinity\", got %v", got)
	}
	if got := convertValue(math.Inf(-1)); got != "-Infinity" {
		t.Fatalf("expected \"-Infinity\", got %v", got)
	}
	if got := convertValue(float32(1.5)); got != float32(1.5) {
		t.Fatalf("expected 1.5, got %v", got)
	}
}

func TestConvertValue_PgTime(t *testing.T) {
	t.Parallel()
	// 10:30:00
	v := pgtype.Time{Microseconds: (10*3600 + 30*60) * 1_000_000, Valid: true}
	if got := convertValue(v); got != "10:30:00" {
		t.Fatalf("expected \"10:30:00\", got %v", got)
	}
	// 01:02:03.000500
	v = pgtype.Time{Microseconds: (1*3600+2*60+3)*1_000_000 + 500, Valid: true}
	if got := convertValue(v); got != "01:02:03.000500" {
		t.Fatalf("expected \"01:02:03.000500\", got %v", got)
	}
	if got := convertValue(pgtype.Time{}); got != nil {
		t.Fatalf("expected nil for invalid time, got %v", got)
	}
}

func TestConvertValue_Interval(t *testing.T) {
	t.Parallel()
	v := pgtype.Interval{Months: 14, Days: 3, Microseconds: 90 * 1_000_000, Valid: true}
	got := convertValue(v)
	s, ok := got.(string)
	if !ok {
		t.Fatalf("expected string, got %T", got)
	}
	for _, part := range []string{"1 year(s)", "2 mon(s)", "3 day(s)", "1m30s"} {
		if !strings.Contains(s, part) {
			t.Fatalf("expected interval to contain %q, got %q", part, s)
		}
	}
	if got := convertValue(pgtype.Interval{Valid: true}); got != "0" {
		t.Fatalf("expected \"0\" for zero interval, got %v", got)
	}
}

func TestConvertValue_Varbyte(t *testing.T) {
	t.Parallel()
	got := convertValue([]byte{0xDE, 0xAD})
	if got != "3q0=" {
		t.Fatalf("expected base64 \"3q0=\", got %v", got)
	}
}

func TestConvertValue_SuperRecursion(t *testing.T) {
	t.Parallel()
	// SUPER values arrive as decoded JSON; nested non-finite floats must be
	// converted so the result marshals cleanly.
	v := map[string]interface{}{
		"metrics": []interface{}{math.Inf(1), 1.0},
	}
	got := convertValue(v).(map[string]interface{})
	arr := got["metrics"].([]interface{})
	if arr[0] != "Infinity" {
		t.Fatalf("expected nested Infinity converted, got %v", arr[0])
	}
	if arr[1] != 1.0 {
		t.Fatalf("expected nested 1.0 preserved, got %v", arr[1])
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()
	if got := truncateForLog("short", 10); got != "short" {
		t.Fatalf("expected unchanged string, got %q", got)
	}
	got := truncateForLog(strings.Repeat("x", 20), 10)
	if got != strings.Repeat("x", 10)+"...[truncated]" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	// Never split a multibyte rune.
	got = truncateForLog("ααααα", 5) // 10 bytes, cut lands mid-rune
	if !strings.HasSuffix(got, "...[truncated]") {
		t.Fatalf("expected truncation suffix, got %q", got)
	}
	prefix := strings.TrimSuffix(got, "...[truncated]")
	if len(prefix)%2 != 0 {
		t.Fatalf("truncation split a rune: %q", got)
	}
}

// newGateOnlyInstance builds a RedshiftMcp sufficient for code paths that
// never touch the pool.
func newGateOnlyInstance(config Config, prompts []ErrorPromptRule) *RedshiftMcp {
	return &RedshiftMcp{
		config:     config,
		errPrompts: errprompt.NewMatcher(mapErrorPromptRules(prompts)),
		logger:     zerolog.New(os.Stderr).Level(zerolog.Disabled),
	}
}

func TestTruncateIfNeeded_UnderLimit(t *testing.T) {
	t.Parallel()
	config := Config{Query: QueryConfig{MaxResultLength: 1000}}
	r := newGateOnlyInstance(config, nil)
	output := &ExecuteSQLOutput{
		Rows: []map[string]interface{}{{"id": 1}},
	}
	r.truncateIfNeeded(output)
	if output.Error != "" {
		t.Fatalf("expected no truncation, got error %q", output.Error)
	}
	if output.Rows == nil {
		t.Fatalf("expected rows preserved")
	}
}

func TestTruncateIfNeeded_OverLimit(t *testing.T) {
	t.Parallel()
	config := Config{Query: QueryConfig{MaxResultLength: 20}}
	r := newGateOnlyInstance(config, nil)
	output := &ExecuteSQLOutput{
		Rows: []map[string]interface{}{{"name": strings.Repeat("a", 100)}},
	}
	r.truncateIfNeeded(output)
	if output.Rows != nil {
		t.Fatalf("expected rows cleared after truncation")
	}
	if !strings.HasSuffix(output.Error, "...[truncated] Result is too long! Add limits in your query!") {
		t.Fatalf("unexpected truncation error: %q", output.Error)
	}
}

func TestHandleError_AppendsMatchingPrompts(t *testing.T) {
	t.Parallel()
	r := newGateOnlyInstance(Config{}, []ErrorPromptRule{
		{Pattern: "(?i)serializable", Message: "Retry the transaction."},
		{Pattern: "never matches", Message: "unused"},
	})
	output := r.handleError(errSerializable{})
	if !strings.Contains(output.Error, "could not serialize") {
		t.Fatalf("expected original message preserved: %q", output.Error)
	}
	if !strings.Contains(output.Error, "\n\nRetry the transaction.") {
		t.Fatalf("expected prompt appended: %q", output.Error)
	}
	if strings.Contains(output.Error, "unused") {
		t.Fatalf("non-matching prompt must not be appended: %q", output.Error)
	}
}

type errSerializable struct{}

func (errSerializable) Error() string {
	return "ERROR: could not serialize access due to serializable isolation level (SQLSTATE 40001)"
}
