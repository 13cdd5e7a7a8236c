package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	kdb "github.com/opst/contactbook/pkg/db"
	kerr "github.com/opst/contactbook/pkg/db/errors"
	xe "github.com/opst/contactbook/pkg/errors"
)

type profiles struct {
	db *sql.DB
}

var _ kdb.ProfileInterface = &profiles{}

func (p *profiles) Find(ctx context.Context, userId int64) ([]kdb.Profile, error) {
	rows, err := p.db.QueryContext(
		ctx,
		`SELECT profile_id, user_id, full_name, email, phone, comment
		 FROM profile
		 WHERE user_id = ?
		 ORDER BY profile_id`,
		userId,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	found := []kdb.Profile{}
	for rows.Next() {
		pr := kdb.Profile{}
		if err := rows.Scan(
			&pr.Id, &pr.UserId, &pr.FullName, &pr.Email, &pr.Phone, &pr.Comment,
		); err != nil {
			return nil, xe.Wrap(err)
		}
		found = append(found, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return found, nil
}

func (p *profiles) Add(ctx context.Context, userId int64, body kdb.ProfileBody) (kdb.Profile, error) {
	res, err := p.db.ExecContext(
		ctx,
		`INSERT INTO profile (user_id, full_name, email, phone, comment) VALUES (?, ?, ?, ?, ?)`,
		userId, body.FullName, body.Email, body.Phone, body.Comment,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return kdb.Profile{}, kerr.Missing{Table: "user", Identity: identity("user_id", userId)}
		}
		return kdb.Profile{}, xe.Wrap(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return kdb.Profile{}, xe.Wrap(err)
	}
	return kdb.Profile{Id: id, UserId: userId, ProfileBody: body}, nil
}

func (p *profiles) Update(ctx context.Context, userId int64, id int64, body kdb.ProfileBody) (kdb.Profile, error) {
	res, err := p.db.ExecContext(
		ctx,
		`UPDATE profile
		 SET full_name = ?, email = ?, phone = ?, comment = ?
		 WHERE profile_id = ? AND user_id = ?`,
		body.FullName, body.Email, body.Phone, body.Comment, id, userId,
	)
	if err != nil {
		return kdb.Profile{}, xe.Wrap(err)
	}
	if err := requireAffected(res, userId, id); err != nil {
		return kdb.Profile{}, err
	}
	return kdb.Profile{Id: id, UserId: userId, ProfileBody: body}, nil
}

func (p *profiles) Delete(ctx context.Context, userId int64, id int64) error {
	res, err := p.db.ExecContext(
		ctx, `DELETE FROM profile WHERE profile_id = ? AND user_id = ?`, id, userId,
	)
	if err != nil {
		return xe.Wrap(err)
	}
	return requireAffected(res, userId, id)
}

func requireAffected(res sql.Result, userId int64, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return xe.Wrap(err)
	}
	if n == 0 {
		return kerr.Missing{
			Table:    "profile",
			Identity: fmt.Sprintf("profile_id=%d, user_id=%d", id, userId),
		}
	}
	return nil
}
