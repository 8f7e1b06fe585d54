package errprompt

import (
	"fmt"
	"strings"
	"testing"
)

func TestMatchPermissionDenied(t *testing.T) {
	t.Parallel()
	m := NewMatcher([]Rule{
		{Pattern: `(?i)permission denied`, Message: "You do not have sufficient privileges. Ask the user to check table permissions."},
	})
	got := m.Match("permission denied for relation users")
	if got == "" {
		t.Fatal("expected a match for permission denied error, got empty string")
	}
	if got != "You do not have sufficient privileges. Ask the user to check table permissions." {
		t.Fatalf("unexpected message: %s", got)
	}
}

func TestMatchRelationNotExist(t *testing.T) {
	t.Parallel()
	m := NewMatcher([]Rule{
		{Pattern: `(?i)relation.*does not exist`, Message: "The table does not exist. Use list_tables to see available tables."},
	})
	got := m.Match(`relation "foo" does not exist`)
	if got == "" {
		t.Fatal("expected a match for relation does not exist error, got empty string")
	}
	if got != "The table does not exist. Use list_tables to see available tables." {
		t.Fatalf("unexpected message: %s", got)
	}
}

func TestMatchSerializationFailure(t *testing.T) {
	t.Parallel()
	m := NewMatcher([]Rule{
		{Pattern: `(?i)serializable isolation violation`, Message: "A concurrent write invalidated this query. Retry it."},
	})
	got := m.Match("ERROR: 1023: Serializable isolation violation on table - 12345")
	if got != "A concurrent write invalidated this query. Retry it." {
		t.Fatalf("unexpected message: %s", got)
	}
}

func TestNoMatch(t *testing.T) {
	t.Parallel()
	m := NewMatcher([]Rule{
		{Pattern: `(?i)permission denied`, Message: "You do not have sufficient privileges."},
		{Pattern: `(?i)relation.*does not exist`, Message: "The table does not exist."},
	})
	got := m.Match("some other error")
	if got != "" {
		t.Fatalf("expected empty string for non-matching error, got: %s", got)
	}
}

func TestMultipleMatches(t *testing.T) {
	t.Parallel()
	m := NewMatcher([]Rule{
		{Pattern: `(?i)permission denied`, Message: "Check your privileges."},
		{Pattern: `(?i)denied.*relation`, Message: "Verify table access grants."},
	})
	got := m.Match("permission denied for relation users")
	expected := "Check your privileges.\nVerify table access grants."
	if got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestEmptyRules(t *testing.T) {
	t.Parallel()
	m := NewMatcher([]Rule{})
	got := m.Match("any error at all")
	if got != "" {
		t.Fatalf("expected empty string with no rules, got: %s", got)
	}
}

func TestMatchedPatterns(t *testing.T) {
	t.Parallel()
	m := NewMatcher([]Rule{
		{Pattern: `(?i)permission denied`, Message: "a"},
		{Pattern: `(?i)timeout`, Message: "b"},
	})
	got := m.MatchedPatterns("permission denied after timeout")
	if len(got) != 2 {
		t.Fatalf("expected 2 matched patterns, got %v", got)
	}
	if got := m.MatchedPatterns("clean"); got != nil {
		t.Fatalf("expected nil for non-matching error, got %v", got)
	}
}

func TestNewMatcherPanicsOnInvalidRegex(t *testing.T) {
	t.Parallel()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for invalid regex pattern")
		}
		msg := fmt.Sprint(r)
		if !strings.Contains(msg, "invalid regex pattern") {
			t.Fatalf("expected panic to mention 'invalid regex pattern', got: %s", msg)
		}
		if !strings.Contains(msg, "[invalid") {
			t.Fatalf("expected panic to contain the invalid pattern, got: %s", msg)
		}
	}()
	NewMatcher([]Rule{
		{Pattern: `[invalid`, Message: "should not compile"},
	})
}
