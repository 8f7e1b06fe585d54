package redshiftmcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/amitds1997/redshift-mcp-server/internal/catcache"
	"github.com/amitds1997/redshift-mcp-server/internal/errprompt"
	"github.com/amitds1997/redshift-mcp-server/internal/sanitize"
	"github.com/amitds1997/redshift-mcp-server/internal/timeout"
)

// RedshiftMcp is the core engine that provides the ExecuteSQL and catalog
// discovery tools. All exported methods are safe for concurrent use from
// multiple goroutines.
type RedshiftMcp struct {
	config     Config
	pool       *pgxpool.Pool
	semaphore  chan struct{}
	sanitizer  *sanitize.Sanitizer
	errPrompts *errprompt.Matcher
	timeoutMgr *timeout.Manager
	databases  *catcache.Cache[[]RedshiftDatabase]
	schemas    *catcache.Cache[[]RedshiftSchema]
	tables     *catcache.Cache[[]RedshiftTable]
	columns    *catcache.Cache[[]RedshiftColumn]
	logger     zerolog.Logger
}

// New creates a new RedshiftMcp instance.
// connString is the Redshift connection string (must include credentials).
// In library mode, connString is required — Config has no connection fields
// (the CLI is responsible for building connString from ServerConfig.Connection
// plus prompted credentials).
// Panics on invalid config. Returns error only for runtime failures (e.g., pool creation).
func New(ctx context.Context, connString string, config Config, logger zerolog.Logger) (*RedshiftMcp, error) {
	// --- Config validation (panics on invalid config) ---

	if connString == "" {
		panic("redshiftmcp: connString must be non-empty")
	}
	if config.Pool.MaxConns <= 0 {
		panic("redshiftmcp: pool.max_conns must be > 0")
	}
	if config.Query.DefaultTimeoutSeconds <= 0 {
		panic("redshiftmcp: query.default_timeout_seconds must be > 0")
	}
	if config.Query.CatalogTimeoutSeconds <= 0 {
		panic("redshiftmcp: query.catalog_timeout_seconds must be > 0")
	}

	// Apply defaults for zero values
	if config.Query.MaxSQLLength == 0 {
		config.Query.MaxSQLLength = 100000
	}
	if config.Query.MaxResultLength == 0 {
		config.Query.MaxResultLength = 100000
	}
	if config.Catalog.CacheTTLSeconds == 0 {
		config.Catalog.CacheTTLSeconds = 300
	}
	if config.Catalog.CacheSize == 0 {
		config.Catalog.CacheSize = 128
	}
	if config.Query.MaxSQLLength < 0 {
		panic("redshiftmcp: query.max_sql_length must be > 0")
	}
	if config.Query.MaxResultLength < 0 {
		panic("redshiftmcp: query.max_result_length must be > 0")
	}
	if config.Catalog.CacheTTLSeconds < 0 {
		panic("redshiftmcp: catalog.cache_ttl_seconds must be > 0")
	}
	if config.Catalog.CacheSize < 0 {
		panic("redshiftmcp: catalog.cache_size must be > 0")
	}

	// Validate timeout rules
	for _, rule := range config.Query.TimeoutRules {
		if rule.TimeoutSeconds <= 0 {
			panic(fmt.Sprintf("redshiftmcp: timeout_rule with pattern %q has timeout_seconds <= 0", rule.Pattern))
		}
	}

	// --- Configure pgxpool ---

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(config.Pool.MaxConns)
	poolConfig.MinConns = int32(config.Pool.MinConns)
	// Redshift's support for the extended query protocol is incomplete
	// (no server-side prepared statement deallocation semantics pgx
	// expects), so all queries go through the simple protocol.
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	// Parse pool duration strings
	if config.Pool.MaxConnLifetime != "" {
		d, err := time.ParseDuration(config.Pool.MaxConnLifetime)
		if err != nil {
			panic(fmt.Sprintf("redshiftmcp: invalid pool.max_conn_lifetime %q: %v", config.Pool.MaxConnLifetime, err))
		}
		poolConfig.MaxConnLifetime = d
	}
	if config.Pool.MaxConnIdleTime != "" {
		d, err := time.ParseDuration(config.Pool.MaxConnIdleTime)
		if err != nil {
			panic(fmt.Sprintf("redshiftmcp: invalid pool.max_conn_idle_time %q: %v", config.Pool.MaxConnIdleTime, err))
		}
		poolConfig.MaxConnIdleTime = d
	}
	if config.Pool.HealthCheckPeriod != "" {
		d, err := time.ParseDuration(config.Pool.HealthCheckPeriod)
		if err != nil {
			panic(fmt.Sprintf("redshiftmcp: invalid pool.health_check_period %q: %v", config.Pool.HealthCheckPeriod, err))
		}
		poolConfig.HealthCheckPeriod = d
	}

	// Set AfterConnect hook for session-level settings
	if config.Timezone != "" {
		poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			escaped := strings.ReplaceAll(config.Timezone, "'", "''")
			if _, err := conn.Exec(ctx, fmt.Sprintf("SET timezone = '%s'", escaped)); err != nil {
				return fmt.Errorf("failed to SET timezone: %w", err)
			}
			return nil
		}
	}

	// --- Create pool ---

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// --- Initialize internal components ---

	san := sanitize.NewSanitizer(mapSanitizationRules(config.Sanitization))
	matcher := errprompt.NewMatcher(mapErrorPromptRules(config.ErrorPrompts))
	timeoutRules := make([]timeout.Rule, len(config.Query.TimeoutRules))
	for i, r := range config.Query.TimeoutRules {
		timeoutRules[i] = timeout.Rule{
			Pattern: r.Pattern,
			Timeout: time.Duration(r.TimeoutSeconds) * time.Second,
		}
	}
	tmgr := timeout.NewManager(timeout.Config{
		DefaultTimeout: time.Duration(config.Query.DefaultTimeoutSeconds) * time.Second,
		Rules:          timeoutRules,
	})

	cacheTTL := time.Duration(config.Catalog.CacheTTLSeconds) * time.Second
	cacheSize := config.Catalog.CacheSize

	return &RedshiftMcp{
		config:     config,
		pool:       pool,
		semaphore:  make(chan struct{}, config.Pool.MaxConns),
		sanitizer:  san,
		errPrompts: matcher,
		timeoutMgr: tmgr,
		databases:  catcache.New[[]RedshiftDatabase](cacheSize, cacheTTL),
		schemas:    catcache.New[[]RedshiftSchema](cacheSize, cacheTTL),
		tables:     catcache.New[[]RedshiftTable](cacheSize, cacheTTL),
		columns:    catcache.New[[]RedshiftColumn](cacheSize, cacheTTL),
		logger:     logger,
	}, nil
}

// Ping verifies connectivity to the cluster.
func (r *RedshiftMcp) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the connection pool. Accepts context for API forward-compatibility,
// but does not currently use it — pgxpool.Pool.Close() does not support context-based shutdown.
func (r *RedshiftMcp) Close(ctx context.Context) {
	r.pool.Close()
}

// mapSanitizationRules converts redshiftmcp SanitizationRules to internal sanitize.Rules.
func mapSanitizationRules(rules []SanitizationRule) []sanitize.Rule {
	result := make([]sanitize.Rule, len(rules))
	for i, r := range rules {
		result[i] = sanitize.Rule{
			Pattern:     r.Pattern,
			Replacement: r.Replacement,
		}
	}
	return result
}

// mapErrorPromptRules converts redshiftmcp ErrorPromptRules to internal errprompt.Rules.
func mapErrorPromptRules(rules []ErrorPromptRule) []errprompt.Rule {
	result := make([]errprompt.Rule, len(rules))
	for i, r := range rules {
		result[i] = errprompt.Rule{
			Pattern: r.Pattern,
			Message: r.Message,
		}
	}
	return result
}
