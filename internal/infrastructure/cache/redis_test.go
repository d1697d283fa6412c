package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestOpenRedis_Success(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	c, err := OpenRedis(context.Background(), Options{Addr: s.Addr(), DB: 2, PoolSize: 4})
	if err != nil {
		t.Fatalf("OpenRedis returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if got := c.Options().DB; got != 2 {
		t.Fatalf("client DB = %d, want 2", got)
	}
	if got := c.Options().PoolSize; got != 4 {
		t.Fatalf("pool size = %d, want 4", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := c.Set(ctx, "idemp:k", "v", 0).Err(); err != nil {
		t.Fatalf("SET err: %v", err)
	}
	if !s.DB(2).Exists("idemp:k") {
		t.Fatalf("key not written to db 2")
	}
}

func TestOpenRedis_Password(t *testing.T) {
	s := miniredis.RunT(t)
	s.RequireAuth("secret")

	if _, err := OpenRedis(context.Background(), Options{Addr: s.Addr()}); err == nil {
		t.Fatal("expected auth error, got nil")
	}
	c, err := OpenRedis(context.Background(), Options{Addr: s.Addr(), Password: "secret"})
	if err != nil {
		t.Fatalf("OpenRedis with password: %v", err)
	}
	_ = c.Close()
}

func TestOpenRedis_Failure(t *testing.T) {
	_, err := OpenRedis(context.Background(), Options{Addr: "not-a-real-host:6379"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "not-a-real-host:6379") {
		t.Fatalf("error should name the address: %v", err)
	}
}

func TestPing(t *testing.T) {
	s := miniredis.RunT(t)
	c, err := OpenRedis(context.Background(), Options{Addr: s.Addr()})
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	check := Ping(c)
	if err := check(context.Background()); err != nil {
		t.Fatalf("healthy ping: %v", err)
	}
	s.Close()
	if err := check(context.Background()); err == nil {
		t.Fatal("ping should fail once redis is gone")
	}
}
