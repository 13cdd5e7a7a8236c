package sqlite

import (
	"context"
	"database/sql"
	"sync"

	kdb "github.com/opst/contactbook/pkg/db"
	xe "github.com/opst/contactbook/pkg/errors"
)

// keychain serializes Lock with a mutex.
//
// An SQLite file is owned by one server process, so a process-local lock
// is enough to keep key issuers from racing.
type keychain struct {
	db *sql.DB
	mu sync.Mutex
}

var _ kdb.KeychainInterface = &keychain{}

func (kc *keychain) Lock(ctx context.Context, name string, criticalSection func(context.Context) error) error {
	kc.mu.Lock()
	defer kc.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := kc.db.ExecContext(
		ctx, `INSERT INTO keychain (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name,
	); err != nil {
		return xe.Wrap(err)
	}
	return criticalSection(ctx)
}

func (kc *keychain) GetKeys(ctx context.Context, name string) ([]kdb.SigningKey, error) {
	rows, err := kc.db.QueryContext(
		ctx,
		`SELECT key_id, alg, exp, to_sign, to_verify
		 FROM signing_key
		 WHERE name = ?
		 ORDER BY exp, key_id`,
		name,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	keys := []kdb.SigningKey{}
	for rows.Next() {
		k := kdb.SigningKey{}
		var exp int64
		if err := rows.Scan(&k.KeyId, &k.Alg, &exp, &k.ToSign, &k.ToVerify); err != nil {
			return nil, xe.Wrap(err)
		}
		k.Exp = fromMillis(exp)
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return keys, nil
}

func (kc *keychain) SetKeys(ctx context.Context, name string, keys []kdb.SigningKey) error {
	tx, err := kc.db.BeginTx(ctx, nil)
	if err != nil {
		return xe.Wrap(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(
		ctx, `INSERT INTO keychain (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name,
	); err != nil {
		return xe.Wrap(err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM signing_key WHERE name = ?`, name); err != nil {
		return xe.Wrap(err)
	}
	for _, k := range keys {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO signing_key (name, key_id, alg, exp, to_sign, to_verify) VALUES (?, ?, ?, ?, ?, ?)`,
			name, k.KeyId, k.Alg, toMillis(k.Exp), k.ToSign, k.ToVerify,
		); err != nil {
			return xe.Wrap(err)
		}
	}
	return xe.Wrap(tx.Commit())
}
