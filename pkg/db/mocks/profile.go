package mocks

import (
	"context"
	"errors"

	kdb "github.com/opst/contactbook/pkg/db"
)

type ProfileInterface struct {
	Impl struct {
		Find   func(ctx context.Context, userId int64) ([]kdb.Profile, error)
		Add    func(ctx context.Context, userId int64, body kdb.ProfileBody) (kdb.Profile, error)
		Update func(ctx context.Context, userId int64, id int64, body kdb.ProfileBody) (kdb.Profile, error)
		Delete func(ctx context.Context, userId int64, id int64) error
	}
	Calls struct {
		Find CallLog[struct{ UserId int64 }]
		Add  CallLog[struct {
			UserId int64
			Body   kdb.ProfileBody
		}]
		Update CallLog[struct {
			UserId int64
			Id     int64
			Body   kdb.ProfileBody
		}]
		Delete CallLog[struct {
			UserId int64
			Id     int64
		}]
	}
}

func NewProfileInterface() *ProfileInterface {
	return &ProfileInterface{}
}

var _ kdb.ProfileInterface = &ProfileInterface{}

func (m *ProfileInterface) Find(ctx context.Context, userId int64) ([]kdb.Profile, error) {
	m.Calls.Find = append(m.Calls.Find, struct{ UserId int64 }{UserId: userId})
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, userId)
	}
	panic(errors.New("it should no be called"))
}

func (m *ProfileInterface) Add(ctx context.Context, userId int64, body kdb.ProfileBody) (kdb.Profile, error) {
	m.Calls.Add = append(m.Calls.Add, struct {
		UserId int64
		Body   kdb.ProfileBody
	}{UserId: userId, Body: body})
	if m.Impl.Add != nil {
		return m.Impl.Add(ctx, userId, body)
	}
	panic(errors.New("it should no be called"))
}

func (m *ProfileInterface) Update(ctx context.Context, userId int64, id int64, body kdb.ProfileBody) (kdb.Profile, error) {
	m.Calls.Update = append(m.Calls.Update, struct {
		UserId int64
		Id     int64
		Body   kdb.ProfileBody
	}{UserId: userId, Id: id, Body: body})
	if m.Impl.Update != nil {
		return m.Impl.Update(ctx, userId, id, body)
	}
	panic(errors.New("it should no be called"))
}

func (m *ProfileInterface) Delete(ctx context.Context, userId int64, id int64) error {
	m.Calls.Delete = append(m.Calls.Delete, struct {
		UserId int64
		Id     int64
	}{UserId: userId, Id: id})
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, userId, id)
	}
	panic(errors.New("it should no be called"))
}
