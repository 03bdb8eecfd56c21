package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

// Dialect selects placeholder syntax and paging quirks.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const sqlTimeout = 5 * time.Second

const createTable = `CREATE TABLE IF NOT EXISTS audit_events (
	id          TEXT PRIMARY KEY,
	ts          BIGINT NOT NULL,
	user_name   TEXT NOT NULL,
	user_id     TEXT NOT NULL DEFAULT '',
	guild_id    TEXT NOT NULL DEFAULT '',
	device      TEXT NOT NULL,
	operation   TEXT NOT NULL,
	interface   TEXT NOT NULL DEFAULT '',
	args        TEXT NOT NULL DEFAULT '',
	success     BOOLEAN NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL
)`

const createIndex = `CREATE INDEX IF NOT EXISTS idx_audit_events_ts ON audit_events (ts)`

const selectColumns = `SELECT id, ts, user_name, user_id, guild_id, device, operation, interface, args, success, error, duration_ms FROM audit_events`

// SQLLogger stores audit events in a relational database.
type SQLLogger struct {
	db      *sql.DB
	dialect Dialect
}

// ParseDSN maps an AUDIT_DSN value to a driver name and data source.
//
//	sqlite:/var/lib/routerbot/audit.db
//	postgres://bot:secret@db:5432/routerbot?sslmode=disable
func ParseDSN(dsn string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite:"):
		return DialectSQLite, strings.TrimPrefix(dsn, "sqlite:"), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DialectPostgres, dsn, nil
	}
	return "", "", fmt.Errorf("unsupported audit DSN %q: want sqlite:<path> or postgres://...", dsn)
}

// OpenSQL opens the database named by dsn and bootstraps the schema.
func OpenSQL(dsn string) (*SQLLogger, error) {
	dialect, source, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(string(dialect), source)
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}
	l, err := NewSQLLogger(db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// NewSQLLogger wraps an open database and creates the table if needed.
func NewSQLLogger(db *sql.DB, dialect Dialect) (*SQLLogger, error) {
	ctx, cancel := context.WithTimeout(context.Background(), sqlTimeout)
	defer cancel()

	for _, stmt := range []string{createTable, createIndex} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("creating audit schema: %w", err)
		}
	}
	return &SQLLogger{db: db, dialect: dialect}, nil
}

// placeholder returns the n-th (1-based) bind marker.
func (l *SQLLogger) placeholder(n int) string {
	if l.dialect == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Log inserts one event.
func (l *SQLLogger) Log(event *Event) error {
	args := ""
	if len(event.Args) > 0 {
		data, err := json.Marshal(event.Args)
		if err != nil {
			return fmt.Errorf("encoding audit args: %w", err)
		}
		args = string(data)
	}

	marks := make([]string, 12)
	for i := range marks {
		marks[i] = l.placeholder(i + 1)
	}
	query := `INSERT INTO audit_events (id, ts, user_name, user_id, guild_id, device, operation, interface, args, success, error, duration_ms) VALUES (` +
		strings.Join(marks, ", ") + `)`

	ctx, cancel := context.WithTimeout(context.Background(), sqlTimeout)
	defer cancel()
	_, err := l.db.ExecContext(ctx, query,
		event.ID, event.Timestamp.UnixNano(), event.User, event.UserID, event.GuildID,
		event.Device, event.Operation, event.Interface, args, event.Success, event.Error,
		event.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("writing audit event: %w", err)
	}
	return nil
}

// Query selects events matching filter.
func (l *SQLLogger) Query(filter Filter) ([]*Event, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, l.placeholder(len(args))))
	}
	if filter.Device != "" {
		add("device = %s", filter.Device)
	}
	if filter.User != "" {
		args = append(args, filter.User, filter.User)
		where = append(where, fmt.Sprintf("(user_name = %s OR user_id = %s)",
			l.placeholder(len(args)-1), l.placeholder(len(args))))
	}
	if filter.GuildID != "" {
		add("guild_id = %s", filter.GuildID)
	}
	if filter.Operation != "" {
		add("operation = %s", filter.Operation)
	}
	if filter.Interface != "" {
		add("interface = %s", filter.Interface)
	}
	if !filter.StartTime.IsZero() {
		add("ts >= %s", filter.StartTime.UnixNano())
	}
	if !filter.EndTime.IsZero() {
		add("ts <= %s", filter.EndTime.UnixNano())
	}
	if filter.SuccessOnly {
		add("success = %s", true)
	}
	if filter.FailureOnly {
		add("success = %s", false)
	}

	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.NewestFirst {
		query += " ORDER BY ts DESC, id DESC"
	} else {
		query += " ORDER BY ts ASC, id ASC"
	}
	switch {
	case filter.Limit > 0:
		query += " LIMIT " + strconv.Itoa(filter.Limit)
	case filter.Offset > 0 && l.dialect == DialectSQLite:
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += " OFFSET " + strconv.Itoa(filter.Offset)
	}

	ctx, cancel := context.WithTimeout(context.Background(), sqlTimeout)
	defer cancel()
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit events: %w", err)
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		var (
			e          Event
			ts, durMS  int64
			argsColumn string
		)
		if err := rows.Scan(&e.ID, &ts, &e.User, &e.UserID, &e.GuildID, &e.Device, &e.Operation,
			&e.Interface, &argsColumn, &e.Success, &e.Error, &durMS); err != nil {
			return nil, fmt.Errorf("scanning audit event: %w", err)
		}
		e.Timestamp = time.Unix(0, ts)
		e.Duration = time.Duration(durMS) * time.Millisecond
		if argsColumn != "" {
			if err := json.Unmarshal([]byte(argsColumn), &e.Args); err != nil {
				return nil, fmt.Errorf("decoding args of audit event %s: %w", e.ID, err)
			}
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// Close closes the database.
func (l *SQLLogger) Close() error {
	return l.db.Close()
}
