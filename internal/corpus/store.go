// Package corpus persists scored pet-adoption posts in SQLite: the raw
// texts ingested from the collection pipeline's CSV exports, their
// extracted feature vectors, engagement labels, ingestion cursors, and a
// small audit trail of generation calls.
package corpus

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite corpus store.
type DB struct{ sql *sql.DB }

// Open opens (creating if needed) the store at path and applies migrations.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS posts (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  source TEXT NOT NULL,
	  source_id TEXT NOT NULL,
	  kind TEXT NOT NULL,
	  title TEXT NOT NULL DEFAULT '',
	  body TEXT NOT NULL,
	  score REAL NOT NULL,
	  num_comments INTEGER NOT NULL,
	  engagement REAL NOT NULL,
	  label TEXT,
	  features BLOB,
	  created_at INTEGER,
	  ingested_at INTEGER NOT NULL,
	  UNIQUE(source, source_id)
	);
	CREATE INDEX IF NOT EXISTS idx_posts_kind ON posts(kind);
	CREATE INDEX IF NOT EXISTS idx_posts_label ON posts(label);
	CREATE TABLE IF NOT EXISTS cursors (
	  key TEXT PRIMARY KEY,
	  value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS calibration (
	  kind TEXT PRIMARY KEY,
	  high_cut REAL,
	  low_cut REAL
	);
	CREATE TABLE IF NOT EXISTS actions (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  ts INTEGER NOT NULL,
	  kind TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_actions_ts ON actions(ts);
	CREATE TABLE IF NOT EXISTS snapshots (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  taken_at INTEGER NOT NULL,
	  name TEXT NOT NULL,
	  payload TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_name ON snapshots(name, taken_at);
	`)
	return err
}

// Post is one stored adoption post. Engagement is the composite measure
// score + 0.5*num_comments computed at ingest. Label is "" until quantile
// labeling assigns HIGH or LOW; middle-band posts stay unlabeled. Features
// is nil until the extraction pass fills it.
type Post struct {
	ID          int64
	Source      string
	SourceID    string
	Kind        string
	Title       string
	Body        string
	Score       float64
	NumComments int
	Engagement  float64
	Label       string
	Features    []float64
	CreatedAt   time.Time
	IngestedAt  time.Time
}

// UpsertPost inserts p or, when (source, source_id) already exists, updates
// the mutable columns. Labels and features are reset on update since the
// underlying text may have changed.
func (d *DB) UpsertPost(ctx context.Context, p Post) error {
	var created any
	if !p.CreatedAt.IsZero() {
		created = p.CreatedAt.Unix()
	}
	ingested := p.IngestedAt
	if ingested.IsZero() {
		ingested = time.Now().UTC()
	}
	_, err := d.sql.ExecContext(ctx, `
	INSERT INTO posts(source, source_id, kind, title, body, score, num_comments, engagement, created_at, ingested_at)
	VALUES(?,?,?,?,?,?,?,?,?,?)
	ON CONFLICT(source, source_id) DO UPDATE SET
	  kind=excluded.kind, title=excluded.title, body=excluded.body,
	  score=excluded.score, num_comments=excluded.num_comments,
	  engagement=excluded.engagement, created_at=excluded.created_at,
	  ingested_at=excluded.ingested_at, label=NULL, features=NULL`,
		p.Source, p.SourceID, p.Kind, p.Title, p.Body, p.Score, p.NumComments,
		p.Engagement, created, ingested.Unix())
	return err
}

// CountPosts reports the number of stored posts, all kinds.
func (d *DB) CountPosts(ctx context.Context) (int, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// LoadPosts returns posts of the given kind ordered by id. An empty kind
// selects all kinds. labeledOnly restricts to posts carrying a label.
func (d *DB) LoadPosts(ctx context.Context, kind string, labeledOnly bool) ([]Post, error) {
	q := `SELECT id, source, source_id, kind, title, body, score, num_comments,
	  engagement, COALESCE(label,''), features, COALESCE(created_at,0), ingested_at
	  FROM posts`
	var where []string
	var args []any
	if kind != "" {
		where = append(where, `kind=?`)
		args = append(args, kind)
	}
	if labeledOnly {
		where = append(where, `label IS NOT NULL`)
	}
	for i, w := range where {
		if i == 0 {
			q += ` WHERE ` + w
		} else {
			q += ` AND ` + w
		}
	}
	q += ` ORDER BY id`

	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Post
	for rows.Next() {
		var p Post
		var features []byte
		var created, ingested int64
		if err := rows.Scan(&p.ID, &p.Source, &p.SourceID, &p.Kind, &p.Title, &p.Body,
			&p.Score, &p.NumComments, &p.Engagement, &p.Label, &features, &created, &ingested); err != nil {
			return nil, err
		}
		if len(features) > 0 {
			p.Features = decodeF64(features)
		}
		if created != 0 {
			p.CreatedAt = time.Unix(created, 0).UTC()
		}
		p.IngestedAt = time.Unix(ingested, 0).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateFeatures stores the extracted feature vector for post id.
func (d *DB) UpdateFeatures(ctx context.Context, id int64, vec []float64) error {
	res, err := d.sql.ExecContext(ctx, `UPDATE posts SET features=? WHERE id=?`, encodeF64(vec), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("no such post")
	}
	return nil
}

// SaveCursor records an ingestion checkpoint under key.
func (d *DB) SaveCursor(ctx context.Context, key, value string) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO cursors(key, value) VALUES(?,?)
	  ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	return err
}

// LoadCursor returns the checkpoint for key, "" when none exists.
func (d *DB) LoadCursor(ctx context.Context, key string) (string, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT value FROM cursors WHERE key=?`, key)
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return v, nil
}

// PutAction records one audited action, e.g. a generation call.
func (d *DB) PutAction(ctx context.Context, ts time.Time, kind string) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO actions(ts, kind) VALUES(?,?)`, ts.Unix(), kind)
	return err
}

// CountActionsWithin counts actions of kind with ts in [start, end).
func (d *DB) CountActionsWithin(ctx context.Context, start, end time.Time, kind string) (int, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM actions WHERE ts>=? AND ts<? AND kind=?`,
		start.Unix(), end.Unix(), kind)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (d *DB) saveCuts(ctx context.Context, kind string, high, low float64) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO calibration(kind, high_cut, low_cut) VALUES(?,?,?)
	  ON CONFLICT(kind) DO UPDATE SET high_cut=excluded.high_cut, low_cut=excluded.low_cut`,
		kind, high, low)
	return err
}

// LoadCuts returns the persisted engagement cut points for a kind.
func (d *DB) LoadCuts(ctx context.Context, kind string) (high, low float64, err error) {
	row := d.sql.QueryRowContext(ctx, `SELECT high_cut, low_cut FROM calibration WHERE kind=?`, kind)
	var h, l sql.NullFloat64
	if err := row.Scan(&h, &l); err != nil {
		return 0, 0, err
	}
	if !h.Valid || !l.Valid {
		return 0, 0, errors.New("no cuts")
	}
	return h.Float64, l.Float64, nil
}

// Snapshot is one stored periodic result, payload as JSON.
type Snapshot struct {
	TakenAt time.Time
	Name    string
	Payload string
}

// PutSnapshot stores a named snapshot with a JSON-marshaled payload.
func (d *DB) PutSnapshot(ctx context.Context, ts time.Time, name string, payload any) error {
	pb, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx, `INSERT INTO snapshots(taken_at, name, payload) VALUES(?,?,?)`,
		ts.Unix(), name, string(pb))
	return err
}

// LoadLatestSnapshot returns the most recent snapshot under name.
func (d *DB) LoadLatestSnapshot(ctx context.Context, name string) (Snapshot, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT taken_at, name, payload FROM snapshots WHERE name=? ORDER BY taken_at DESC, id DESC LIMIT 1`, name)
	var s Snapshot
	var ts int64
	if err := row.Scan(&ts, &s.Name, &s.Payload); err != nil {
		return Snapshot{}, err
	}
	s.TakenAt = time.Unix(ts, 0).UTC()
	return s, nil
}

func encodeF64(v []float64) []byte {
	b := make([]byte, 8*len(v))
	for i := range v {
		binary.LittleEndian.PutUint64(b[8*i:], math.Float64bits(v[i]))
	}
	return b
}

func decodeF64(b []byte) []float64 {
	n := len(b) / 8
	v := make([]float64, n)
	for i := 0; i < n; i++ {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return v
}
