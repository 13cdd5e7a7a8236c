package try_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/opst/contactbook/pkg/utils/try"
)

type fataler struct {
	called []any
	helped bool
}

func (f *fataler) Fatal(v ...any) {
	f.called = append(f.called, v...)
}

func (f *fataler) Helper() {
	f.helped = true
}

func TestTo(t *testing.T) {
	t.Run("ok value is returned by OrFatal", func(t *testing.T) {
		f := &fataler{}
		got := try.To(42, nil).OrFatal(f)
		if got != 42 {
			t.Errorf("got %d", got)
		}
		if len(f.called) != 0 {
			t.Errorf("Fatal is called: %v", f.called)
		}
	})

	t.Run("error causes Fatal", func(t *testing.T) {
		f := &fataler{}
		expected := errors.New("fake")
		got := try.To(42, expected).OrFatal(f)
		if got != 0 {
			t.Errorf("got %d", got)
		}
		if len(f.called) != 1 || f.called[0] != expected {
			t.Errorf("Fatal is not called with error: %v", f.called)
		}
		if !f.helped {
			t.Errorf("Helper is not called")
		}
	})

	t.Run("OrDefault", func(t *testing.T) {
		if got := try.To(1, nil).OrDefault(2); got != 1 {
			t.Errorf("got %d", got)
		}
		if got := try.To(1, errors.New("fake")).OrDefault(2); got != 2 {
			t.Errorf("got %d", got)
		}
	})

	t.Run("Map converts only ok value", func(t *testing.T) {
		got, err := try.Map(try.To(3, nil), func(i int) string { return fmt.Sprint(i) }).Get()
		if err != nil || got != "3" {
			t.Errorf("got (%s, %v)", got, err)
		}

		expected := errors.New("fake")
		_, err = try.Map(try.To(3, expected), func(i int) string { return fmt.Sprint(i) }).Get()
		if !errors.Is(err, expected) {
			t.Errorf("error is lost: %v", err)
		}
	})
}
