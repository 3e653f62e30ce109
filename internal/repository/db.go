package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Querier is satisfied by both the pool and an open transaction.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

type DBConn interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Migrate applies the embedded *.sql files in lexicographic order, each in
// its own transaction. The files use IF NOT EXISTS so reruns are harmless.
func Migrate(ctx context.Context, db DBConn) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		sqlb, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return err
		}
		tx, err := db.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx for %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, string(sqlb)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("migration %s failed: %w", name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit %s failed: %w", name, err)
		}
	}
	return nil
}

const (
	bookingPrefix = "BOOK"
	driverPrefix  = "DRV"

	// attempts at inserting with a freshly read sequential id; the last one
	// switches to a timestamp id
	maxIDAttempts = 3

	uniqueViolation = "23505"
)

// nextSequentialID reads the numerically highest "<prefix>-<n>" value in
// table.column and returns "<prefix>-<n+1>". The read is not locked, so the
// unique constraint on the column decides between concurrent writers.
func nextSequentialID(ctx context.Context, q Querier, table, column, prefix string) string {
	query := fmt.Sprintf(
		`SELECT %[1]s FROM %[2]s WHERE %[1]s ~ $1 ORDER BY CAST(substring(%[1]s FROM '[0-9]+$') AS BIGINT) DESC LIMIT 1`,
		column, table,
	)

	var last string
	err := q.QueryRow(ctx, query, "^"+prefix+"-[0-9]+$").Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return formatSequentialID(prefix, 1)
	}
	if err != nil {
		return timestampID(prefix)
	}

	n, err := strconv.ParseInt(strings.TrimPrefix(last, prefix+"-"), 10, 64)
	if err != nil {
		return timestampID(prefix)
	}
	return formatSequentialID(prefix, n+1)
}

func formatSequentialID(prefix string, n int64) string {
	return fmt.Sprintf("%s-%03d", prefix, n)
}

func timestampID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano()/int64(time.Millisecond))
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}

func placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = "$" + strconv.Itoa(from+i)
	}
	return strings.Join(ps, ", ")
}

func prefixed(alias string, cols []string) string {
	if alias == "" {
		return strings.Join(cols, ", ")
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return strings.Join(out, ", ")
}
