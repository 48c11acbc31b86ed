package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"jobboard/internal/logging"
)

const slowQuery = 500 * time.Millisecond

type traceKey struct{}

type traceStart struct {
	sql   string
	start time.Time
}

type queryTracer struct {
	logger logging.Logger
	slow   time.Duration
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, traceStart{sql: data.SQL, start: time.Now()})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	st, ok := ctx.Value(traceKey{}).(traceStart)
	if !ok {
		return
	}
	elapsed := time.Since(st.start)
	if data.Err != nil && !strings.Contains(data.Err.Error(), "no rows") {
		t.logger.Debug(ctx, "query failed", "sql", compact(st.sql), "error", data.Err, "elapsed", elapsed)
		return
	}
	if elapsed >= t.slow {
		t.logger.Warn(ctx, "slow query", "sql", compact(st.sql), "elapsed", elapsed)
	}
}

func compact(sql string) string {
	sql = strings.Join(strings.Fields(sql), " ")
	if len(sql) > 200 {
		return sql[:200] + "..."
	}
	return sql
}
