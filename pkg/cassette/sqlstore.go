package cassette

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SQLStore keeps any number of named cassettes in one SQLite database.
type SQLStore struct {
	db *sql.DB
}

// OpenSQL opens (creating if needed) the cassette database at path.
func OpenSQL(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening db %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "creating schema in %s", path)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Create stores a blank cassette under name. It fails if name is taken.
func (s *SQLStore) Create(ctx context.Context, name string, sections int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cassettes (name, data, updated_at) VALUES ($1, $2, $3)`,
		name, New(sections), time.Now().Unix())
	return errors.Wrapf(err, "creating cassette %s", name)
}

// Names lists the stored cassettes in name order.
func (s *SQLStore) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM cassettes ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "listing cassettes")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "scanning cassette name")
		}
		names = append(names, name)
	}
	return names, errors.Wrap(rows.Err(), "listing cassettes")
}

// Cassette returns the named cassette as a Blob bound to ctx.
func (s *SQLStore) Cassette(ctx context.Context, name string) Blob {
	return &sqlCassette{ctx: ctx, db: s.db, name: name}
}

type sqlCassette struct {
	ctx  context.Context
	db   *sql.DB
	name string
}

func (c *sqlCassette) ReadBlob() ([]byte, error) {
	var data []byte
	err := c.db.QueryRowContext(c.ctx, `SELECT data FROM cassettes WHERE name = $1`, c.name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrNotFound, "%s", c.name)
	}
	return data, errors.Wrapf(err, "reading cassette %s", c.name)
}

func (c *sqlCassette) WriteBlob(data []byte) error {
	res, err := c.db.ExecContext(c.ctx,
		`UPDATE cassettes SET data = $1, updated_at = $2 WHERE name = $3`,
		data, time.Now().Unix(), c.name)
	if err != nil {
		return errors.Wrapf(err, "writing cassette %s", c.name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "writing cassette %s", c.name)
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "%s", c.name)
	}
	return nil
}
