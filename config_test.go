package redshiftmcp_test

import (
	"context"
	"strings"
	"testing"

	redshiftmcp "github.com/amitds1997/redshift-mcp-server"
)

// expectPanic calls f and asserts that it panics with a message containing substr.
func expectPanic(t *testing.T, substr string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q, but no panic occurred", substr)
		}
		msg := ""
		switch v := r.(type) {
		case string:
			msg = v
		case error:
			msg = v.Error()
		default:
			t.Fatalf("expected panic string/error containing %q, got %T: %v", substr, r, r)
		}
		if !strings.Contains(msg, substr) {
			t.Fatalf("expected panic containing %q, got %q", substr, msg)
		}
	}()
	f()
}

func TestNew_EmptyConnStringPanics(t *testing.T) {
	t.Parallel()
	expectPanic(t, "connString must be non-empty", func() {
		redshiftmcp.New(context.Background(), "", validConfig(), testLogger())
	})
}

func TestNew_ZeroMaxConnsPanics(t *testing.T) {
	t.Parallel()
	config := validConfig()
	config.Pool.MaxConns = 0
	expectPanic(t, "pool.max_conns must be > 0", func() {
		redshiftmcp.New(context.Background(), dummyConnString, config, testLogger())
	})
}

func TestNew_NegativeMaxConnsPanics(t *testing.T) {
	t.Parallel()
	config := validConfig()
	config.Pool.MaxConns = -1
	expectPanic(t, "pool.max_conns must be > 0", func() {
		redshiftmcp.New(context.Background(), dummyConnString, config, testLogger())
	})
}

func TestNew_ZeroDefaultTimeoutPanics(t *testing.T) {
	t.Parallel()
	config := validConfig()
	config.Query.DefaultTimeoutSeconds = 0
	expectPanic(t, "query.default_timeout_seconds must be > 0", func() {
		redshiftmcp.New(context.Background(), dummyConnString, config, testLogger())
	})
}

func TestNew_ZeroCatalogTimeoutPanics(t *testing.T) {
	t.Parallel()
	config := validConfig()
	config.Query.CatalogTimeoutSeconds = 0
	expectPanic(t, "query.catalog_timeout_seconds must be > 0", func() {
		redshiftmcp.New(context.Background(), dummyConnString, config, testLogger())
	})
}

func TestNew_NegativeMaxSQLLengthPanics(t *testing.T) {
	t.Parallel()
	config := validConfig()
	config.Query.MaxSQLLength = -1
	expectPanic(t, "query.max_sql_length must be > 0", func() {
		redshiftmcp.New(context.Background(), dummyConnString, config, testLogger())
	})
}

func TestNew_NegativeMaxResultLengthPanics(t *testing.T) {
	t.Parallel()
	config := validConfig()
	config.Query.MaxResultLength = -1
	expectPanic(t, "query.max_result_length must be > 0", func() {
		redshiftmcp.New(context.Background(), dummyConnString, config, testLogger())
	})
}

func TestNew_NegativeCacheTTLPanics(t *testing.T) {
	t.Parallel()
	config := validConfig()
	config.Catalog.CacheTTLSeconds = -1
	expectPanic(t, "catalog.cache_ttl_seconds must be > 0", func() {
		redshiftmcp.New(context.Background(), dummyConnString, config, testLogger())
	})
}

func TestNew_NegativeCacheSizePanics(t *testing.T) {
	t.Parallel()
	config := validConfig()
	config.Catalog.CacheSize = -1
	expectPanic(t, "catalog.cache_size must be > 0", func() {
		redshiftmcp.New(context.Background(), dummyConnString, config, testLogger())
	})
}

func TestNew_InvalidTimeoutRulePanics(t *testing.T) {
	t.Parallel()
	config := validConfig()
	config.Query.TimeoutRules = []redshiftmcp.TimeoutRule{
		{Pattern: "(?i)svv_all_columns", TimeoutSeconds: 0},
	}
	expectPanic(t, "timeout_seconds <= 0", func() {
		redshiftmcp.New(context.Background(), dummyConnString, config, testLogger())
	})
}

func TestNew_InvalidPoolDurationPanics(t *testing.T) {
	t.Parallel()
	config := validConfig()
	config.Pool.MaxConnLifetime = "one hour"
	expectPanic(t, "invalid pool.max_conn_lifetime", func() {
		redshiftmcp.New(context.Background(), dummyConnString, config, testLogger())
	})
}

func TestNew_InvalidConnStringReturnsError(t *testing.T) {
	t.Parallel()
	_, err := redshiftmcp.New(context.Background(), "://not-a-connstring", validConfig(), testLogger())
	if err == nil {
		t.Fatalf("expected error for malformed connString, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse connection string") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_ValidConfigSucceeds(t *testing.T) {
	t.Parallel()
	r := newLazyInstance(t, validConfig())
	if r == nil {
		t.Fatalf("expected non-nil instance")
	}
}

func TestNew_ZeroOptionalFieldsGetDefaults(t *testing.T) {
	t.Parallel()
	// Lengths and cache settings default when left zero; New must not panic.
	config := redshiftmcp.Config{
		Pool: redshiftmcp.PoolConfig{MaxConns: 2},
		Query: redshiftmcp.QueryConfig{
			DefaultTimeoutSeconds: 30,
			CatalogTimeoutSeconds: 10,
		},
	}
	newLazyInstance(t, config)
}

func TestNew_PoolDurationsAccepted(t *testing.T) {
	t.Parallel()
	config := validConfig()
	config.Pool.MaxConnLifetime = "1h"
	config.Pool.MaxConnIdleTime = "30m"
	config.Pool.HealthCheckPeriod = "1m"
	newLazyInstance(t, config)
}
