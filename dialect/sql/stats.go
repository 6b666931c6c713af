package sql

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syssam/crudgen/internal/logger"
)

// QueryStats holds query execution statistics.
type QueryStats struct {
	// TotalQueries is the number of queries run.
	TotalQueries atomic.Int64
	// TotalExecs is the number of statements executed.
	TotalExecs atomic.Int64
	// TotalDuration is the time spent in both, in nanoseconds.
	TotalDuration atomic.Int64
	// SlowQueries is the count of calls exceeding the slow threshold.
	SlowQueries atomic.Int64
	// Errors is the count of failed calls.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalExecs.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of query statistics.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgDuration returns the average duration of a call.
func (s StatsSnapshot) AvgDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgDuration(),
		s.SlowQueries, s.Errors,
	)
}

// SlowQueryHook is called for every call exceeding the slow threshold.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// StatsDriver wraps a Querier with statistics collection. Transactions it
// begins are counted too.
type StatsDriver struct {
	Querier
	stats *QueryStats

	mu            sync.RWMutex
	slowThreshold time.Duration
	slowHook      SlowQueryHook
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the threshold for slow query detection. Default
// is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.slowThreshold = d
	}
}

// WithSlowQueryHook sets a callback for slow queries.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.slowHook = hook
	}
}

// WithSlowQueryLog logs slow queries at warn level to the logger of the
// query context.
func WithSlowQueryLog() StatsOption {
	return WithSlowQueryHook(func(ctx context.Context, query string, args []any, duration time.Duration) {
		logger.FromContext(ctx).Warn("slow query detected", "duration", duration, "query", query, "args", args)
	})
}

// NewStatsDriver wraps db with statistics collection.
//
//	drv, _ := sql.Open("pgx", dsn)
//	db := sql.NewStatsDriver(drv,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(),
//	)
//	page, err := AuthorService{}.List(ctx, db, q)
//	fmt.Println(db.QueryStats().Stats())
func NewStatsDriver(db Querier, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Querier:       db,
		stats:         &QueryStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the collected statistics.
func (d *StatsDriver) QueryStats() *QueryStats {
	return d.stats
}

// SlowThreshold returns the current slow query threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.slowThreshold
}

// SetSlowThreshold updates the slow query threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slowThreshold = threshold
}

// QueryContext runs a query and records statistics.
func (d *StatsDriver) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.Querier.QueryContext(ctx, query, args...)
	d.record(ctx, query, args, start, err, true)
	return rows, err
}

// ExecContext executes a statement and records statistics.
func (d *StatsDriver) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := d.Querier.ExecContext(ctx, query, args...)
	d.record(ctx, query, args, start, err, false)
	return res, err
}

// Begin starts a transaction whose statements are also recorded. The
// wrapped Querier must be a Beginner.
func (d *StatsDriver) Begin(ctx context.Context) (TxQuerier, error) {
	b, ok := d.Querier.(Beginner)
	if !ok {
		return nil, fmt.Errorf("dialect/sql: %T cannot begin a transaction", d.Querier)
	}
	tx, err := b.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsTx{TxQuerier: tx, driver: d}, nil
}

func (d *StatsDriver) record(ctx context.Context, query string, args []any, start time.Time, err error, isQuery bool) {
	duration := time.Since(start)
	if isQuery {
		d.stats.TotalQueries.Add(1)
	} else {
		d.stats.TotalExecs.Add(1)
	}
	d.stats.TotalDuration.Add(int64(duration))
	if err != nil {
		d.stats.Errors.Add(1)
	}

	d.mu.RLock()
	threshold, hook := d.slowThreshold, d.slowHook
	d.mu.RUnlock()
	if duration > threshold {
		d.stats.SlowQueries.Add(1)
		if hook != nil {
			hook(ctx, query, args, duration)
		}
	}
}

// StatsTx wraps a transaction with statistics collection.
type StatsTx struct {
	TxQuerier
	driver *StatsDriver
}

// QueryContext runs a query within the transaction and records statistics.
func (tx *StatsTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := tx.TxQuerier.QueryContext(ctx, query, args...)
	tx.driver.record(ctx, query, args, start, err, true)
	return rows, err
}

// ExecContext executes a statement within the transaction and records
// statistics.
func (tx *StatsTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := tx.TxQuerier.ExecContext(ctx, query, args...)
	tx.driver.record(ctx, query, args, start, err, false)
	return res, err
}

// DebugDriver logs every statement at debug level before running it.
type DebugDriver struct {
	Querier
	log logger.Logger
}

// NewDebugDriver wraps db with debug logging. A nil log uses the logger of
// each statement's context.
func NewDebugDriver(db Querier, log logger.Logger) *DebugDriver {
	return &DebugDriver{Querier: db, log: log}
}

func (d *DebugDriver) loggerFor(ctx context.Context) logger.Logger {
	if d.log != nil {
		return d.log
	}
	return logger.FromContext(ctx)
}

// QueryContext logs and runs a query.
func (d *DebugDriver) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	d.loggerFor(ctx).Debug("query", "sql", query, "args", args)
	return d.Querier.QueryContext(ctx, query, args...)
}

// ExecContext logs and executes a statement.
func (d *DebugDriver) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	d.loggerFor(ctx).Debug("exec", "sql", query, "args", args)
	return d.Querier.ExecContext(ctx, query, args...)
}

// Begin starts a transaction on the wrapped Querier. Statements of the
// transaction are not logged.
func (d *DebugDriver) Begin(ctx context.Context) (TxQuerier, error) {
	d.loggerFor(ctx).Debug("begin transaction")
	b, ok := d.Querier.(Beginner)
	if !ok {
		return nil, fmt.Errorf("dialect/sql: %T cannot begin a transaction", d.Querier)
	}
	return b.Begin(ctx)
}

// OpenWithStats opens a database and wraps it with statistics collection.
func OpenWithStats(driverName, source string, opts ...StatsOption) (*StatsDriver, error) {
	drv, err := Open(driverName, source)
	if err != nil {
		return nil, err
	}
	return NewStatsDriver(drv, opts...), nil
}

var (
	_ Querier   = (*StatsDriver)(nil)
	_ Beginner  = (*StatsDriver)(nil)
	_ TxQuerier = (*StatsTx)(nil)
	_ Querier   = (*DebugDriver)(nil)
)
