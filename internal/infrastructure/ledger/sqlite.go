package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"keeper-server/internal/engine"
	"keeper-server/pkg/logger"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// QueueSize - сколько событий ждёт записи, прежде чем новые начнут отбрасываться.
const QueueSize = 4096

var ErrClosed = errors.New("ledger: closed")

var _ engine.EventSink = (*SQLite)(nil)

// SQLite - журнал событий партий. Пишет одна фоновая горутина,
// Record только кладёт событие в очередь и никогда не ждёт диска.
type SQLite struct {
	db *sql.DB

	mu     sync.RWMutex // закрытие канала против отправки в него
	ch     chan request
	wg     sync.WaitGroup
	once   sync.Once
	closed atomic.Bool

	dropped atomic.Int64
}

type request struct {
	ev    engine.MatchEvent
	flush chan struct{} // не nil - маркер Flush, события нет
}

func Open(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty ledger path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	l := &SQLite{
		db: db,
		ch: make(chan request, QueueSize),
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.loop()
	}()

	logger.Log.WithFields(logrus.Fields{"component": "ledger", "path": path}).Info("Match ledger opened")
	return l, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS match_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			kind TEXT NOT NULL,
			seat INTEGER NOT NULL,
			detail TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS match_events_by_match ON match_events(match_id, id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Record ставит событие в очередь записи. Переполненная очередь
// теряет событие, симуляция не ждёт журнала.
func (l *SQLite) Record(_ context.Context, ev engine.MatchEvent) error {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed.Load() {
		return ErrClosed
	}
	select {
	case l.ch <- request{ev: ev}:
	default:
		l.dropped.Add(1)
	}
	return nil
}

// Flush ждёт, пока всё поставленное ранее будет записано.
func (l *SQLite) Flush(ctx context.Context) error {
	done := make(chan struct{})

	l.mu.RLock()
	if l.closed.Load() {
		l.mu.RUnlock()
		return ErrClosed
	}
	select {
	case l.ch <- request{flush: done}:
		l.mu.RUnlock()
	case <-ctx.Done():
		l.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dropped - сколько событий потеряно из-за переполнения очереди.
func (l *SQLite) Dropped() int64 {
	return l.dropped.Load()
}

func (l *SQLite) Close() error {
	var err error
	l.once.Do(func() {
		l.mu.Lock()
		l.closed.Store(true)
		close(l.ch)
		l.mu.Unlock()

		l.wg.Wait()
		err = l.db.Close()
	})
	return err
}

func (l *SQLite) loop() {
	insert, err := l.db.Prepare(`INSERT INTO match_events(match_id,tick,kind,seat,detail,recorded_at) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		logger.Log.WithError(err).Error("ledger: prepare insert failed")
	}
	defer func() {
		if insert != nil {
			_ = insert.Close()
		}
	}()

	for r := range l.ch {
		if r.flush != nil {
			close(r.flush)
			continue
		}
		if insert == nil {
			continue
		}
		ev := r.ev
		if _, err := insert.Exec(ev.MatchID, ev.Tick, string(ev.Kind), ev.Seat, ev.Detail, ev.RecordedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			logger.Log.WithError(err).WithField("kind", string(ev.Kind)).Warn("ledger: insert failed")
		}
	}
}

// Events читает журнал партии в порядке записи.
func (l *SQLite) Events(ctx context.Context, matchID string) ([]engine.MatchEvent, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT match_id,tick,kind,seat,detail,recorded_at FROM match_events WHERE match_id=? ORDER BY id`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.MatchEvent
	for rows.Next() {
		var (
			ev         engine.MatchEvent
			kind, when string
		)
		if err := rows.Scan(&ev.MatchID, &ev.Tick, &kind, &ev.Seat, &ev.Detail, &when); err != nil {
			return nil, err
		}
		ev.Kind = engine.EventKind(kind)
		if ev.RecordedAt, err = time.Parse(time.RFC3339Nano, when); err != nil {
			return nil, fmt.Errorf("event %s at tick %d: %w", kind, ev.Tick, err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Matches - идентификаторы всех партий в журнале.
func (l *SQLite) Matches(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT match_id FROM match_events GROUP BY match_id ORDER BY MIN(id)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
