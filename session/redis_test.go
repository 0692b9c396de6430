package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStorePutGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	s := storeSession("ada@example.org", "tok-1", time.Now().Add(time.Hour))
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.GetByToken(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got == nil || got.Email != s.Email || got.Token != s.Token || len(got.Roles) != 1 {
		t.Errorf("GetByToken = %+v, want round-tripped session", got)
	}

	got, err = store.GetByToken(ctx, "tok-missing")
	if err != nil || got != nil {
		t.Errorf("GetByToken(missing) = %v, %v, want nil, nil", got, err)
	}
}

func TestRedisStoreExpiryViaTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	s := storeSession("ada@example.org", "tok-1", time.Now().Add(time.Minute))
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("Put: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	got, err := store.GetByToken(ctx, "tok-1")
	if err != nil || got != nil {
		t.Errorf("GetByToken after TTL = %v, %v, want nil, nil", got, err)
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Errorf("Count after TTL = %d, want 0", n)
	}
}

func TestRedisStoreAlreadyExpiredNotStored(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	s := storeSession("ada@example.org", "tok-1", time.Now().Add(-time.Minute))
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if got, _ := store.GetByToken(ctx, "tok-1"); got != nil {
		t.Errorf("expired session was stored: %+v", got)
	}
}

func TestRedisStoreGetByEmail(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	now := time.Now()

	older := storeSession("ada@example.org", "tok-old", now.Add(time.Minute))
	newer := storeSession("ada@example.org", "tok-new", now.Add(time.Hour))
	for _, s := range []*Session{older, newer} {
		if err := store.Put(ctx, s); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	got, err := store.GetByEmail(ctx, "ada@example.org")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got == nil || got.Token != "tok-new" {
		t.Errorf("GetByEmail = %+v, want tok-new", got)
	}

	// After the older key expires the index member dangles; GetByEmail
	// must skip it and still find the live session.
	mr.FastForward(2 * time.Minute)
	got, err = store.GetByEmail(ctx, "ada@example.org")
	if err != nil {
		t.Fatalf("GetByEmail after expiry: %v", err)
	}
	if got == nil || got.Token != "tok-new" {
		t.Errorf("GetByEmail after expiry = %+v, want tok-new", got)
	}
}

func TestRedisStoreDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)

	s := storeSession("ada@example.org", "tok-1", time.Now().Add(time.Hour))
	if err := store.Put(ctx, s); err != nil {
		t.Fatalf("Put: %v", err)
	}

	ok, err := store.Delete(ctx, "tok-1")
	if err != nil || !ok {
		t.Fatalf("Delete = %v, %v, want true, nil", ok, err)
	}
	ok, err = store.Delete(ctx, "tok-1")
	if err != nil || ok {
		t.Errorf("second Delete = %v, %v, want false, nil", ok, err)
	}
	if got, _ := store.GetByEmail(ctx, "ada@example.org"); got != nil {
		t.Errorf("GetByEmail after delete = %+v, want nil", got)
	}
}

func TestRedisStoreCount(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)
	now := time.Now()

	for _, s := range []*Session{
		storeSession("ada@example.org", "tok-1", now.Add(time.Hour)),
		storeSession("bob@example.org", "tok-2", now.Add(time.Hour)),
		storeSession("cyd@example.org", "tok-3", now.Add(time.Hour)),
	} {
		if err := store.Put(ctx, s); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
}
