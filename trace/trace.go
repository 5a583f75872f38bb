// Records the semantic event stream into a sqlite database, one session
// per run.
package trace

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jmigpin/xevents/event"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

func Migrate(path string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+path)
	if err != nil {
		return errors.Wrap(err, "migrate")
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migrate up")
	}
	return nil
}

//----------

type Recorder struct {
	db      *sql.DB
	insert  *sql.Stmt
	session string
	seq     int64
	now     func() time.Time
}

func Open(path, display string) (*Recorder, error) {
	if err := Migrate(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", path))
	if err != nil {
		return nil, err
	}
	r := &Recorder{db: db, session: uuid.NewString(), now: time.Now}
	if err := r.init(display); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Recorder) init(display string) error {
	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at, display) VALUES (?, ?, ?)`,
		r.session, r.now().UnixNano(), display)
	if err != nil {
		return errors.Wrap(err, "insert session")
	}
	r.insert, err = r.db.Prepare(
		`INSERT INTO events (session_id, seq, at_ns, target, target_id, kind, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	return err
}

func (r *Recorder) Session() string {
	return r.session
}

func (r *Recorder) Record(ev event.Event) error {
	target, id, inner := "", uint32(0), interface{}(ev)
	switch t := ev.(type) {
	case *event.WindowEvent:
		target, id, inner = "window", uint32(t.WindowId), t.Event
	case *event.DeviceEvent:
		target, id, inner = "device", uint32(t.DeviceId), t.Event
	}
	payload, err := json.Marshal(inner)
	if err != nil {
		return errors.Wrapf(err, "encode %T", inner)
	}
	r.seq++
	_, err = r.insert.Exec(r.session, r.seq, r.now().UnixNano(), target, id, KindOf(inner), string(payload))
	return err
}

func (r *Recorder) Close() error {
	if r.insert != nil {
		_ = r.insert.Close()
	}
	return r.db.Close()
}

// Type name without the package and pointer (ex: "CursorMoved").
func KindOf(v interface{}) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "nil"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

//----------

type Row struct {
	Seq      int64
	Target   string
	TargetId uint32
	Kind     string
	Payload  string
}

// Recorded events of a session, in order.
func (r *Recorder) Rows(session string) ([]Row, error) {
	rows, err := r.db.Query(
		`SELECT seq, target, target_id, kind, payload FROM events
		WHERE session_id = ? ORDER BY seq`, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var u []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.Seq, &row.Target, &row.TargetId, &row.Kind, &row.Payload); err != nil {
			return nil, err
		}
		u = append(u, row)
	}
	return u, rows.Err()
}

// Event counts by kind.
func (r *Recorder) Counts(session string) (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT kind, COUNT(*) FROM events WHERE session_id = ? GROUP BY kind`, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	m := map[string]int{}
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return nil, err
		}
		m[k] = n
	}
	return m, rows.Err()
}
