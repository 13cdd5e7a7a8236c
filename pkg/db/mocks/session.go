package mocks

import (
	"context"
	"errors"
	"time"

	kdb "github.com/opst/contactbook/pkg/db"
)

type SessionInterface struct {
	Impl struct {
		Add    func(ctx context.Context, session kdb.Session) error
		Get    func(ctx context.Context, id string) (kdb.Session, error)
		Remove func(ctx context.Context, id string) error
		Purge  func(ctx context.Context, now time.Time) (int, error)
	}
	Calls struct {
		Add    CallLog[struct{ Session kdb.Session }]
		Get    CallLog[struct{ Id string }]
		Remove CallLog[struct{ Id string }]
		Purge  CallLog[struct{ Now time.Time }]
	}
}

func NewSessionInterface() *SessionInterface {
	return &SessionInterface{}
}

var _ kdb.SessionInterface = &SessionInterface{}

func (m *SessionInterface) Add(ctx context.Context, session kdb.Session) error {
	m.Calls.Add = append(m.Calls.Add, struct{ Session kdb.Session }{Session: session})
	if m.Impl.Add != nil {
		return m.Impl.Add(ctx, session)
	}
	panic(errors.New("it should no be called"))
}

func (m *SessionInterface) Get(ctx context.Context, id string) (kdb.Session, error) {
	m.Calls.Get = append(m.Calls.Get, struct{ Id string }{Id: id})
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, id)
	}
	panic(errors.New("it should no be called"))
}

func (m *SessionInterface) Remove(ctx context.Context, id string) error {
	m.Calls.Remove = append(m.Calls.Remove, struct{ Id string }{Id: id})
	if m.Impl.Remove != nil {
		return m.Impl.Remove(ctx, id)
	}
	panic(errors.New("it should no be called"))
}

func (m *SessionInterface) Purge(ctx context.Context, now time.Time) (int, error) {
	m.Calls.Purge = append(m.Calls.Purge, struct{ Now time.Time }{Now: now})
	if m.Impl.Purge != nil {
		return m.Impl.Purge(ctx, now)
	}
	panic(errors.New("it should no be called"))
}
