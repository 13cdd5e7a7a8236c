package keychain_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	testctx "github.com/opst/contactbook/internal/testutils/context"
	authkc "github.com/opst/contactbook/pkg/auth/keychain"
	"github.com/opst/contactbook/pkg/auth/keychain/key"
	kdb "github.com/opst/contactbook/pkg/db"
	kpgkc "github.com/opst/contactbook/pkg/db/postgres/keychain"
	"github.com/opst/contactbook/pkg/db/postgres/pool/testenv"
	"github.com/opst/contactbook/pkg/utils/cmp"
	"github.com/opst/contactbook/pkg/utils/try"
)

func keyEq(a, b kdb.SigningKey) bool {
	return a.KeyId == b.KeyId && a.Alg == b.Alg && a.Exp.Equal(b.Exp) &&
		string(a.ToSign) == string(b.ToSign) && string(a.ToVerify) == string(b.ToVerify)
}

func TestKeychain_Lock(t *testing.T) {
	poolBroaker := testenv.NewPoolBroaker(context.Background(), t)

	t.Run("When there are no records, Lock creates new record and take lock", func(t *testing.T) {
		ctx, cancel := testctx.WithTest(context.Background(), t)
		defer cancel()
		pgpool := poolBroaker.GetPool(ctx, t)

		keychainName := "key-1"

		testee := kpgkc.New(pgpool)
		if err := testee.Lock(ctx, keychainName, func(ctx context.Context) error {
			conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
			defer conn.Release()

			// keychainName is locked in the critical section.
			rows := try.To(conn.Query(
				ctx, `select "name" from "keychain" for update skip locked`,
			)).OrFatal(t)
			defer rows.Close()
			for rows.Next() {
				var name string
				if err := rows.Scan(&name); err != nil {
					t.Fatal(err)
				}
				if name == keychainName {
					t.Errorf("keychain is not locked: %s", name)
				}
			}
			return nil
		}); err != nil {
			t.Fatal(err)
		}

		conn := try.To(pgpool.Acquire(ctx)).OrFatal(t)
		defer conn.Release()
		var name string
		if err := conn.QueryRow(
			ctx, `select "name" from "keychain" for update skip locked`,
		).Scan(&name); err != nil {
			t.Fatal(err)
		}
		if name != keychainName {
			t.Errorf("unexpected name: %s", name)
		}
	})

	t.Run("When the critical section returns error, Lock returns it", func(t *testing.T) {
		ctx, cancel := testctx.WithTest(context.Background(), t)
		defer cancel()
		pgpool := poolBroaker.GetPool(ctx, t)

		testee := kpgkc.New(pgpool)
		expectedError := errors.New("fake")
		err := testee.Lock(ctx, "key-1", func(ctx context.Context) error {
			return expectedError
		})
		if !errors.Is(err, expectedError) {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("keys can be replaced in the critical section", func(t *testing.T) {
		ctx, cancel := testctx.WithTest(context.Background(), t)
		defer cancel()
		pgpool := poolBroaker.GetPool(ctx, t)

		testee := kpgkc.New(pgpool)
		key := kdb.SigningKey{
			KeyId: "kid-1", Alg: "HS256",
			Exp:    time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
			ToSign: []byte("secret"), ToVerify: []byte("secret"),
		}
		if err := testee.Lock(ctx, "key-1", func(ctx context.Context) error {
			return testee.SetKeys(ctx, "key-1", []kdb.SigningKey{key})
		}); err != nil {
			t.Fatal(err)
		}

		got := try.To(testee.GetKeys(ctx, "key-1")).OrFatal(t)
		if !cmp.SliceContentEqWith(got, []kdb.SigningKey{key}, keyEq) {
			t.Errorf("unexpected keys: %v", got)
		}
	})

	t.Run("Lock serializes critical sections", func(t *testing.T) {
		ctx, cancel := testctx.WithTest(context.Background(), t)
		defer cancel()
		pgpool := poolBroaker.GetPool(ctx, t)

		testee := kpgkc.New(pgpool)

		mu := sync.Mutex{}
		inSection := 0
		maxInSection := 0

		wg := sync.WaitGroup{}
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := testee.Lock(ctx, "key-1", func(ctx context.Context) error {
					mu.Lock()
					inSection += 1
					maxInSection = max(maxInSection, inSection)
					mu.Unlock()

					time.Sleep(50 * time.Millisecond)

					mu.Lock()
					inSection -= 1
					mu.Unlock()
					return nil
				}); err != nil {
					t.Error(err)
				}
			}()
		}
		wg.Wait()

		if maxInSection != 1 {
			t.Errorf("critical sections overlap: %d", maxInSection)
		}
	})
}

func TestKeychain_Keys(t *testing.T) {
	poolBroaker := testenv.NewPoolBroaker(context.Background(), t)

	ctx, cancel := testctx.WithTest(context.Background(), t)
	defer cancel()
	pgpool := poolBroaker.GetPool(ctx, t)

	testee := kpgkc.New(pgpool)

	if got := try.To(testee.GetKeys(ctx, "sessions")).OrFatal(t); len(got) != 0 {
		t.Errorf("unknown keychain has keys: %v", got)
	}

	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	first := []kdb.SigningKey{
		{KeyId: "kid-1", Alg: "HS256", Exp: exp, ToSign: []byte("sign-1"), ToVerify: []byte("sign-1")},
		{KeyId: "kid-2", Alg: "HS256", Exp: exp.Add(time.Hour), ToSign: []byte("sign-2"), ToVerify: []byte("sign-2")},
	}
	if err := testee.SetKeys(ctx, "sessions", first); err != nil {
		t.Fatal(err)
	}
	if got := try.To(testee.GetKeys(ctx, "sessions")).OrFatal(t); !cmp.SliceContentEqWith(got, first, keyEq) {
		t.Errorf("unexpected keys\n- got: %v\n- want: %v", got, first)
	}

	second := first[1:]
	if err := testee.SetKeys(ctx, "sessions", second); err != nil {
		t.Fatal(err)
	}
	if got := try.To(testee.GetKeys(ctx, "sessions")).OrFatal(t); !cmp.SliceContentEqWith(got, second, keyEq) {
		t.Errorf("keys are not replaced\n- got: %v\n- want: %v", got, second)
	}

	if got := try.To(testee.GetKeys(ctx, "others")).OrFatal(t); len(got) != 0 {
		t.Errorf("other keychain has keys: %v", got)
	}
}

func TestKeychain_Provide(t *testing.T) {
	poolBroaker := testenv.NewPoolBroaker(context.Background(), t)

	t.Run("When the keychain is fresh, Provide issues a key and stores it", func(t *testing.T) {
		ctx, cancel := testctx.WithTest(context.Background(), t)
		defer cancel()
		pgpool := poolBroaker.GetPool(ctx, t)

		ctx, cancelDeadline := context.WithTimeout(ctx, 10*time.Second)
		defer cancelDeadline()

		store := kpgkc.New(pgpool)
		testee := authkc.NewProvider(
			"sessions", store, authkc.WithPolicy(key.HS256(time.Hour, 2048/8)),
		)

		kid, k, err := testee.Provide(ctx, authkc.WithExpAfter(time.Now()))
		if err != nil {
			t.Fatal(err)
		}
		if ctx.Err() != nil {
			t.Fatalf("Provide does not return in time: %v", ctx.Err())
		}

		stored := try.To(store.GetKeys(ctx, "sessions")).OrFatal(t)
		if len(stored) != 1 || stored[0].KeyId != kid {
			t.Fatalf("unexpected keys: %v (kid = %s)", stored, kid)
		}

		// second call finds the stored key, without issuing another.
		kid2, k2, err := testee.Provide(ctx, authkc.WithExpAfter(time.Now()))
		if err != nil {
			t.Fatal(err)
		}
		if kid2 != kid || !k2.Equal(k) {
			t.Errorf("another key is issued: %s (want %s)", kid2, kid)
		}
	})

	t.Run("Concurrent providers on a fresh keychain agree on one key", func(t *testing.T) {
		ctx, cancel := testctx.WithTest(context.Background(), t)
		defer cancel()
		pgpool := poolBroaker.GetPool(ctx, t)

		ctx, cancelDeadline := context.WithTimeout(ctx, 10*time.Second)
		defer cancelDeadline()

		mu := sync.Mutex{}
		kids := map[string]struct{}{}
		wg := sync.WaitGroup{}
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				testee := authkc.NewProvider("sessions", kpgkc.New(pgpool))
				kid, _, err := testee.Provide(ctx, authkc.WithExpAfter(time.Now()))
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				defer mu.Unlock()
				kids[kid] = struct{}{}
			}()
		}
		wg.Wait()

		if len(kids) != 1 {
			t.Errorf("providers issue different keys: %v", kids)
		}
	})
}
