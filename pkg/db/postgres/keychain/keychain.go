package keychain

import (
	"context"

	kdb "github.com/opst/contactbook/pkg/db"
	kpool "github.com/opst/contactbook/pkg/db/postgres/pool"
	xe "github.com/opst/contactbook/pkg/errors"
)

type pgKeychain struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.KeychainInterface {
	return &pgKeychain{pool: pool}
}

// lockedTx is the context key for the transaction holding the keychain lock.
type lockedTx struct{}

// Lock runs criticalSection while holding the row lock of the keychain name.
//
// GetKeys and SetKeys called with the context passed to criticalSection run
// in the locking transaction, so they need no other connection.
func (kc *pgKeychain) Lock(ctx context.Context, name string, criticalSection func(context.Context) error) error {
	// the keychain row is committed before locking,
	// so concurrent callers wait on the row lock rather than on the insert.
	if err := kc.ensure(ctx, name); err != nil {
		return err
	}

	tx, err := kc.pool.Begin(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	// "no key update" lets signing_key rows referring this keychain be written,
	// while other Lock callers wait.
	var locked string
	if err := tx.QueryRow(
		ctx,
		`select "name" from "keychain" where "name" = $1 for no key update`,
		name,
	).Scan(&locked); err != nil {
		return xe.Wrap(err)
	}

	if err := criticalSection(context.WithValue(ctx, lockedTx{}, tx)); err != nil {
		return err
	}
	return xe.Wrap(tx.Commit(ctx))
}

func (kc *pgKeychain) ensure(ctx context.Context, name string) error {
	conn, err := kc.pool.Acquire(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer conn.Release()

	if _, err := conn.Exec(
		ctx,
		`insert into "keychain" ("name") values ($1) on conflict ("name") do nothing`,
		name,
	); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

func (kc *pgKeychain) GetKeys(ctx context.Context, name string) ([]kdb.SigningKey, error) {
	if tx, ok := ctx.Value(lockedTx{}).(kpool.Tx); ok {
		return getKeys(ctx, tx, name)
	}

	conn, err := kc.pool.Acquire(ctx)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer conn.Release()
	return getKeys(ctx, conn, name)
}

func getKeys(ctx context.Context, q kpool.Queryer, name string) ([]kdb.SigningKey, error) {
	rows, err := q.Query(
		ctx,
		`
		select "key_id", "alg", "exp", "to_sign", "to_verify"
		from "signing_key"
		where "name" = $1
		order by "exp", "key_id"
		`,
		name,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	keys := []kdb.SigningKey{}
	for rows.Next() {
		k := kdb.SigningKey{}
		if err := rows.Scan(&k.KeyId, &k.Alg, &k.Exp, &k.ToSign, &k.ToVerify); err != nil {
			return nil, xe.Wrap(err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return keys, nil
}

func (kc *pgKeychain) SetKeys(ctx context.Context, name string, keys []kdb.SigningKey) error {
	if tx, ok := ctx.Value(lockedTx{}).(kpool.Tx); ok {
		// committed together with the lock.
		return setKeys(ctx, tx, name, keys)
	}

	if err := kc.ensure(ctx, name); err != nil {
		return err
	}
	tx, err := kc.pool.Begin(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	if err := setKeys(ctx, tx, name, keys); err != nil {
		return err
	}
	return xe.Wrap(tx.Commit(ctx))
}

func setKeys(ctx context.Context, q kpool.Queryer, name string, keys []kdb.SigningKey) error {
	if _, err := q.Exec(ctx, `delete from "signing_key" where "name" = $1`, name); err != nil {
		return xe.Wrap(err)
	}
	for _, k := range keys {
		if _, err := q.Exec(
			ctx,
			`
			insert into "signing_key" ("name", "key_id", "alg", "exp", "to_sign", "to_verify")
			values ($1, $2, $3, $4, $5, $6)
			`,
			name, k.KeyId, k.Alg, k.Exp, k.ToSign, k.ToVerify,
		); err != nil {
			return xe.Wrap(err)
		}
	}
	return nil
}
