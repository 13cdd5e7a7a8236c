// Package pool narrows pgx connection pools to what the postgres backend uses,
// so tests can hand out pools of their own.
package pool

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Queryer sends SQL. *pgxpool.Conn and pgx.Tx are Queryer.
type Queryer interface {
	// Exec sends SQL without result rows.
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)

	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)

	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tx is a transaction. pgx.Tx implements this.
type Tx interface {
	Queryer

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Conn is a connection borrowed from Pool. *pgxpool.Conn implements this.
type Conn interface {
	Queryer

	// Release returns the connection to the pool.
	Release()
}

type Pool interface {
	Begin(ctx context.Context) (Tx, error)
	Acquire(ctx context.Context) (Conn, error)
	Ping(ctx context.Context) error
}

type pgxPool struct {
	base *pgxpool.Pool
}

var _ Pool = &pgxPool{}
var _ Tx = pgx.Tx(nil)
var _ Conn = (*pgxpool.Conn)(nil)

// Wrap turns *pgxpool.Pool into Pool.
func Wrap(p *pgxpool.Pool) Pool {
	return &pgxPool{base: p}
}

func (p *pgxPool) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.base.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (p *pgxPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.base.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (p *pgxPool) Ping(ctx context.Context) error {
	return p.base.Ping(ctx)
}
