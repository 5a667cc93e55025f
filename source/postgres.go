package source

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spektr-org/chartkit/engine"
)

// Querier is the read side of a pgx connection.
// Satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
type Querier interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
}

// OpenPool connects to Postgres and verifies the connection.
func OpenPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("%w: parse database URL: %v", engine.ErrAcquisition, err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: connect to database: %v", engine.ErrAcquisition, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping database: %v", engine.ErrAcquisition, err)
	}
	return pool, nil
}

// QueryRecords runs a query and converts each result row into a RawRecord
// keyed by normalized column name. SQL NULL leaves the field absent.
func QueryRecords(ctx context.Context, q Querier, sql string, args ...any) ([]engine.RawRecord, []string, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: query: %v", engine.ErrAcquisition, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, fd := range fields {
		names[i] = fd.Name
	}
	keys, err := fieldKeys(names)
	if err != nil {
		return nil, nil, err
	}

	var records []engine.RawRecord
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: read row values: %v", engine.ErrAcquisition, err)
		}

		rec := make(engine.RawRecord, len(keys))
		for i, v := range values {
			if i >= len(keys) || v == nil {
				continue
			}
			if text, ok := cellText(v); ok {
				rec[keys[i]] = text
			}
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: rows error: %v", engine.ErrAcquisition, err)
	}
	return records, keys, nil
}

// cellText renders a decoded pgx value as sanitizer input. ok is false for
// values that are SQL NULL in disguise (invalid pgtype wrappers).
func cellText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int16:
		return strconv.FormatInt(int64(x), 10), true
	case int:
		return strconv.Itoa(x), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		return x.Format("2006-01-02"), true
	case [16]byte:
		return uuid.UUID(x).String(), true
	case pgtype.Numeric:
		if !x.Valid {
			return "", false
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return "", false
		}
		return strconv.FormatFloat(f.Float64, 'g', -1, 64), true
	default:
		return fmt.Sprint(x), true
	}
}
