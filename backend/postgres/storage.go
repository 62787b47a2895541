package postgres

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mwantia/vfile/backend"
)

func (pb *PostgresBackend) ReadFile(ctx context.Context, name string, flag int) ([]byte, error) {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	tx, err := pb.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	id, existing, exists, err := pb.load(ctx, tx, name)
	if err != nil {
		return nil, err
	}

	content, persist, err := backend.PrepareRead(name, existing, exists, flag)
	if err != nil {
		return nil, err
	}

	if persist {
		if err := pb.store(ctx, tx, id, name, content, 0o666); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return content, nil
}

func (pb *PostgresBackend) WriteFile(ctx context.Context, name string, data []byte, flag int, perm fs.FileMode) error {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	tx, err := pb.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	id, existing, exists, err := pb.load(ctx, tx, name)
	if err != nil {
		return err
	}

	content, err := backend.PrepareWrite(name, existing, exists, data, flag)
	if err != nil {
		return err
	}

	if err := pb.store(ctx, tx, id, name, content, perm); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// load returns the id and content stored for name, locking the row for
// the rest of the transaction.
func (pb *PostgresBackend) load(ctx context.Context, tx pgx.Tx, name string) (string, []byte, bool, error) {
	var content []byte

	id, cached := pb.keys.Get(name)
	var err error
	if cached {
		err = tx.QueryRow(ctx, "SELECT content FROM vfile_objects WHERE id = $1 FOR UPDATE", id).Scan(&content)
	} else {
		err = tx.QueryRow(ctx, "SELECT id, content FROM vfile_objects WHERE path = $1 FOR UPDATE", name).Scan(&id, &content)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		pb.keys.Delete(name)
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, err
	}

	pb.keys.Set(name, id)
	return id, content, true, nil
}

// store updates the object with id, or inserts a new one when id is empty.
func (pb *PostgresBackend) store(ctx context.Context, tx pgx.Tx, id, name string, content []byte, perm fs.FileMode) error {
	now := time.Now().Unix()
	if content == nil {
		content = []byte{}
	}

	if id != "" {
		_, err := tx.Exec(ctx, `
			UPDATE vfile_objects SET content = $1, size = $2, modify_time = $3 WHERE id = $4
		`, content, len(content), now, id)
		return err
	}

	id = uuid.Must(uuid.NewV7()).String()
	if _, err := tx.Exec(ctx, `
		INSERT INTO vfile_objects (id, path, mode, size, modify_time, create_time, content)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, name, int64(perm.Perm()), len(content), now, now, content); err != nil {
		return err
	}

	pb.keys.Set(name, id)
	return nil
}
