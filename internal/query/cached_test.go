package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingClient struct {
	calls int
	rows  Rows
	err   error
}

func (c *countingClient) Query(ctx context.Context, question string) (Rows, error) {
	c.calls++
	return c.rows, c.err
}

func TestCached_NormalizesQuestionKey(t *testing.T) {
	inner := &countingClient{rows: Rows{{"revenue": 100}}}
	c, err := NewCached(inner, 8)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := c.Query(ctx, "Revenue by Quarter")
	require.NoError(t, err)
	second, err := c.Query(ctx, "  revenue by quarter ")
	require.NoError(t, err)

	require.Equal(t, 1, inner.calls, "case and whitespace variants share one entry")
	require.Equal(t, first, second)
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	inner := &countingClient{err: errors.New("warehouse down")}
	c, err := NewCached(inner, 8)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = c.Query(ctx, "top products")
	require.Error(t, err)
	_, err = c.Query(ctx, "top products")
	require.Error(t, err)
	require.Equal(t, 2, inner.calls, "a failure must be retried, not replayed")
}

func TestRowsJSON(t *testing.T) {
	require.Equal(t, "[]", Rows{}.JSON())
	require.Equal(t, "[]", Rows(nil).JSON())
	require.Equal(t, `[{"a":1}]`, Rows{{"a": 1}}.JSON())
}

func TestReadOnlyGuard(t *testing.T) {
	require.True(t, readOnly("SELECT 1"))
	require.True(t, readOnly("  with t as (select 1) select * from t"))
	require.False(t, readOnly("DROP TABLE users"))
	require.False(t, readOnly("insert into t values (1)"))
}
