package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/vfile/backend"
)

func (sb *SQLiteBackend) ReadFile(ctx context.Context, name string, flag int) ([]byte, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	tx, err := sb.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	id, existing, exists, err := sb.load(ctx, tx, name)
	if err != nil {
		return nil, err
	}

	content, persist, err := backend.PrepareRead(name, existing, exists, flag)
	if err != nil {
		return nil, err
	}

	if persist {
		if err := sb.store(ctx, tx, id, name, content, 0o666); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return content, nil
}

func (sb *SQLiteBackend) WriteFile(ctx context.Context, name string, data []byte, flag int, perm fs.FileMode) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	tx, err := sb.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id, existing, exists, err := sb.load(ctx, tx, name)
	if err != nil {
		return err
	}

	content, err := backend.PrepareWrite(name, existing, exists, data, flag)
	if err != nil {
		return err
	}

	if err := sb.store(ctx, tx, id, name, content, perm); err != nil {
		return err
	}

	return tx.Commit()
}

// load returns the id and content stored for name. The B-tree answers
// for every path seen since Open; other paths fall back to the table.
func (sb *SQLiteBackend) load(ctx context.Context, tx *sql.Tx, name string) (string, []byte, bool, error) {
	var content []byte

	id, cached := sb.keys.Get(name)
	var err error
	if cached {
		err = tx.QueryRowContext(ctx, "SELECT content FROM vfile_objects WHERE id = ?", id).Scan(&content)
	} else {
		err = tx.QueryRowContext(ctx, "SELECT id, content FROM vfile_objects WHERE path = ?", name).Scan(&id, &content)
	}

	if errors.Is(err, sql.ErrNoRows) {
		sb.keys.Delete(name)
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, err
	}

	sb.keys.Set(name, id)
	return id, content, true, nil
}

// store updates the object with id, or inserts a new one when id is empty.
func (sb *SQLiteBackend) store(ctx context.Context, tx *sql.Tx, id, name string, content []byte, perm fs.FileMode) error {
	now := time.Now().Unix()
	if content == nil {
		content = []byte{}
	}

	if id != "" {
		_, err := tx.ExecContext(ctx, `
			UPDATE vfile_objects SET content = ?, size = ?, modify_time = ? WHERE id = ?
		`, content, len(content), now, id)
		return err
	}

	id = uuid.Must(uuid.NewV7()).String()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO vfile_objects (id, path, mode, size, modify_time, create_time, content)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, name, uint32(perm.Perm()), len(content), now, now, content); err != nil {
		return err
	}

	sb.keys.Set(name, id)
	return nil
}
