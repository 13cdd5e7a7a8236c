package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	kdb "github.com/opst/contactbook/pkg/db"
	kerr "github.com/opst/contactbook/pkg/db/errors"
	kpgerr "github.com/opst/contactbook/pkg/db/postgres/errors"
	kpool "github.com/opst/contactbook/pkg/db/postgres/pool"
	xe "github.com/opst/contactbook/pkg/errors"
)

type pgProfile struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.ProfileInterface {
	return &pgProfile{pool: pool}
}

func (p *pgProfile) Find(ctx context.Context, userId int64) ([]kdb.Profile, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer conn.Release()

	rows, err := conn.Query(
		ctx,
		`
		select "profile_id", "user_id", "full_name", "email", "phone", "comment"
		from "profile"
		where "user_id" = $1
		order by "profile_id"
		`,
		userId,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	profiles := []kdb.Profile{}
	for rows.Next() {
		p := kdb.Profile{}
		if err := rows.Scan(
			&p.Id, &p.UserId, &p.FullName, &p.Email, &p.Phone, &p.Comment,
		); err != nil {
			return nil, xe.Wrap(err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return profiles, nil
}

func (p *pgProfile) Add(ctx context.Context, userId int64, body kdb.ProfileBody) (kdb.Profile, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return kdb.Profile{}, xe.Wrap(err)
	}
	defer conn.Release()

	profile := kdb.Profile{UserId: userId, ProfileBody: body}
	if err := conn.QueryRow(
		ctx,
		`
		insert into "profile" ("user_id", "full_name", "email", "phone", "comment")
		values ($1, $2, $3, $4, $5)
		returning "profile_id"
		`,
		userId, body.FullName, body.Email, body.Phone, body.Comment,
	).Scan(&profile.Id); err != nil {
		if kpgerr.IsForeignKeyViolation(err) {
			return kdb.Profile{}, kerr.Missing{Table: "user", Identity: fmt.Sprintf("user_id=%d", userId)}
		}
		return kdb.Profile{}, xe.Wrap(err)
	}
	return profile, nil
}

func (p *pgProfile) Update(ctx context.Context, userId int64, id int64, body kdb.ProfileBody) (kdb.Profile, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return kdb.Profile{}, xe.Wrap(err)
	}
	defer conn.Release()

	profile := kdb.Profile{}
	if err := conn.QueryRow(
		ctx,
		`
		update "profile"
		set "full_name" = $3, "email" = $4, "phone" = $5, "comment" = $6
		where "profile_id" = $1 and "user_id" = $2
		returning "profile_id", "user_id", "full_name", "email", "phone", "comment"
		`,
		id, userId, body.FullName, body.Email, body.Phone, body.Comment,
	).Scan(
		&profile.Id, &profile.UserId,
		&profile.FullName, &profile.Email, &profile.Phone, &profile.Comment,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kdb.Profile{}, missing(userId, id)
		}
		return kdb.Profile{}, xe.Wrap(err)
	}
	return profile, nil
}

func (p *pgProfile) Delete(ctx context.Context, userId int64, id int64) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer conn.Release()

	ctag, err := conn.Exec(
		ctx,
		`delete from "profile" where "profile_id" = $1 and "user_id" = $2`,
		id, userId,
	)
	if err != nil {
		return xe.Wrap(err)
	}
	if ctag.RowsAffected() == 0 {
		return missing(userId, id)
	}
	return nil
}

func missing(userId int64, id int64) error {
	return kerr.Missing{
		Table:    "profile",
		Identity: fmt.Sprintf("profile_id=%d (user_id=%d)", id, userId),
	}
}
