package mocks

import (
	"context"
	"errors"

	kdb "github.com/opst/contactbook/pkg/db"
)

type MockKeychainInterface struct {
	Impl struct {
		Lock    func(context.Context, string, func(context.Context) error) error
		GetKeys func(context.Context, string) ([]kdb.SigningKey, error)
		SetKeys func(context.Context, string, []kdb.SigningKey) error
	}
}

func NewMockKeychainInterface() *MockKeychainInterface {
	return &MockKeychainInterface{}
}

var _ kdb.KeychainInterface = &MockKeychainInterface{}

func (m *MockKeychainInterface) Lock(ctx context.Context, name string, criticalSection func(context.Context) error) error {
	if m.Impl.Lock == nil {
		return errors.New("[MOCK] not implemented")
	}
	return m.Impl.Lock(ctx, name, criticalSection)
}

func (m *MockKeychainInterface) GetKeys(ctx context.Context, name string) ([]kdb.SigningKey, error) {
	if m.Impl.GetKeys == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.GetKeys(ctx, name)
}

func (m *MockKeychainInterface) SetKeys(ctx context.Context, name string, keys []kdb.SigningKey) error {
	if m.Impl.SetKeys == nil {
		return errors.New("[MOCK] not implemented")
	}
	return m.Impl.SetKeys(ctx, name, keys)
}
