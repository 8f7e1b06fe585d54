package redshiftmcp_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	redshiftmcp "github.com/amitds1997/redshift-mcp-server"
)

// The validation gates and error-prompt matching must be safe under
// concurrent use. All statements here are rejected before pool contact,
// so a dummy endpoint suffices. Run with -race.
func TestExecuteSQL_ConcurrentRejections(t *testing.T) {
	t.Parallel()

	config := validConfig()
	config.ErrorPrompts = []redshiftmcp.ErrorPromptRule{
		{Pattern: "(?i)suspicious", Message: "Check for transaction wrappers."},
	}
	r := newLazyInstance(t, config)

	statements := []struct {
		sql  string
		want string
	}{
		{"", "SQL statement cannot be empty or whitespace."},
		{"SELECT 1; SELECT 2", "Only one SQL statement is allowed at a time."},
		{"DROP TABLE users", "Not a valid SQL statement."},
		{"COMMIT;", "SQL contains suspicious patterns"},
		{"END; DROP TABLE x;", "SQL contains suspicious patterns"},
	}

	const workers = 8
	const iterations = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				tc := statements[(offset+i)%len(statements)]
				output := r.ExecuteSQL(context.Background(), redshiftmcp.ExecuteSQLInput{SQL: tc.sql})
				if !strings.Contains(output.Error, tc.want) {
					t.Errorf("SQL %q: expected error containing %q, got %q", tc.sql, tc.want, output.Error)
					return
				}
			}
		}(w)
	}
	wg.Wait()
}
