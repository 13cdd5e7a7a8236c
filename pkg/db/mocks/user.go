package mocks

import (
	"context"
	"errors"

	kdb "github.com/opst/contactbook/pkg/db"
)

type UserInterface struct {
	Impl struct {
		Register  func(ctx context.Context, username string, passwordHash string) (kdb.User, error)
		Get       func(ctx context.Context, id int64) (kdb.User, error)
		GetByName func(ctx context.Context, username string) (kdb.User, error)
	}
	Calls struct {
		Register CallLog[struct {
			Username     string
			PasswordHash string
		}]
		Get       CallLog[struct{ Id int64 }]
		GetByName CallLog[struct{ Username string }]
	}
}

func NewUserInterface() *UserInterface {
	return &UserInterface{}
}

var _ kdb.UserInterface = &UserInterface{}

func (m *UserInterface) Register(ctx context.Context, username string, passwordHash string) (kdb.User, error) {
	m.Calls.Register = append(m.Calls.Register, struct {
		Username     string
		PasswordHash string
	}{Username: username, PasswordHash: passwordHash})
	if m.Impl.Register != nil {
		return m.Impl.Register(ctx, username, passwordHash)
	}
	panic(errors.New("it should no be called"))
}

func (m *UserInterface) Get(ctx context.Context, id int64) (kdb.User, error) {
	m.Calls.Get = append(m.Calls.Get, struct{ Id int64 }{Id: id})
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, id)
	}
	panic(errors.New("it should no be called"))
}

func (m *UserInterface) GetByName(ctx context.Context, username string) (kdb.User, error) {
	m.Calls.GetByName = append(m.Calls.GetByName, struct{ Username string }{Username: username})
	if m.Impl.GetByName != nil {
		return m.Impl.GetByName(ctx, username)
	}
	panic(errors.New("it should no be called"))
}
