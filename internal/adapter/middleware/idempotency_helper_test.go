package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

func Test_bodyHash(t *testing.T) {
	data := []byte("hello world")
	sum := sha256.Sum256(data)
	if got, want := bodyHash(data), hex.EncodeToString(sum[:]); got != want {
		t.Fatalf("bodyHash mismatch: got %s want %s", got, want)
	}
}

func Test_nowUTC(t *testing.T) {
	u := nowUTC()
	if u.Location() != time.UTC {
		t.Fatalf("nowUTC must be UTC, got %v", u.Location())
	}
	if d := time.Since(u); d < 0 || d > 2*time.Second {
		t.Fatalf("nowUTC too far from now: %v", d)
	}
}

func Test_buildKey(t *testing.T) {
	k := buildKey("POST", "/tickets/abc/renew", strings.Repeat("b", 32), strings.Repeat("a", 32))
	want := "idemp:pawnshop:post:/tickets/abc/renew:" + strings.Repeat("b", 32) + ":" + strings.Repeat("a", 32)
	if k != want {
		t.Fatalf("buildKey = %q, want %q", k, want)
	}
}

func Test_validReqID(t *testing.T) {
	t.Run("accepts uuid and 32-hex", func(t *testing.T) {
		for _, s := range []string{
			"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88",
			"3f9a6a1b-3d54-1fbe-9b3a-6b3e8d6b2c88",
			strings.Repeat("a", 32),
			"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88",
		} {
			if !validReqID(s) {
				t.Fatalf("validReqID should accept %q", s)
			}
		}
	})

	t.Run("rejects bad formats", func(t *testing.T) {
		for _, s := range []string{
			"",
			"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
			"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",
			"3f9a6a1b3d544fbe8b3a6b3e8d6b2c880",
			"zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz",
			"3F9A6A1B-3D54-4FBE-8B3A-6B3E8D6B2C88",
			"3f9a6a1b-3d54-9fbe-8b3a-6b3e8d6b2c88", // version 9
			"3f9a6a1b-3d54-4fbe-cb3a-6b3e8d6b2c88", // microsoft variant
			"urn:uuid:3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88",
		} {
			if validReqID(s) {
				t.Fatalf("validReqID should reject %q", s)
			}
		}
	})
}

func Test_parseAxRequestAt(t *testing.T) {
	sec := time.Now().UTC().Unix()
	ts, err := parseAxRequestAt(strconv.FormatInt(sec, 10))
	if err != nil || !ts.Equal(time.Unix(sec, 0).UTC()) {
		t.Fatalf("epoch seconds: %v %v", ts, err)
	}

	ms := time.Now().UTC().UnixMilli()
	ts, err = parseAxRequestAt(strconv.FormatInt(ms, 10))
	if err != nil || !ts.Equal(time.UnixMilli(ms).UTC()) {
		t.Fatalf("epoch millis: %v %v", ts, err)
	}

	want := time.Date(2025, 9, 5, 3, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2025-09-05T10:00:00+07:00", "2025-09-05T03:00:00Z"} {
		ts, err := parseAxRequestAt(raw)
		if err != nil || !ts.Equal(want) {
			t.Fatalf("%s: got %v err %v", raw, ts, err)
		}
	}

	for _, raw := range []string{"", "not-a-time", "2025-09-05T10:00:00", "1736123456abc"} {
		if _, err := parseAxRequestAt(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func Test_entryStore(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	defer mr.Close()
	store := entryStore{rdb: rdb}
	ctx := context.Background()

	key := buildKey("POST", "/tickets", strings.Repeat("b", 32), strings.Repeat("a", 32))
	entry := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash([]byte(`{"a":1}`)),
		RequestID:   strings.Repeat("a", 32),
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   nowUTC(),
	}

	ok, err := store.lock(ctx, key, entry)
	if err != nil || !ok {
		t.Fatalf("lock 1: ok=%v err=%v", ok, err)
	}
	if ttl := rdb.TTL(ctx, key).Val(); ttl <= 0 || ttl > provisionalLockTTL {
		t.Fatalf("provisional TTL not set correctly: %v", ttl)
	}
	ok, err = store.lock(ctx, key, entry)
	if err != nil || ok {
		t.Fatalf("lock 2 should fail: ok=%v err=%v", ok, err)
	}
	got, err := store.load(ctx, key)
	if err != nil || !got.InProgress || got.BodySHA256 != entry.BodySHA256 {
		t.Fatalf("load: %+v err=%v", got, err)
	}

	final := entry
	final.InProgress = false
	final.Code = 201
	final.Body = []byte(`{"ok":true}`)
	if err := store.save(ctx, key, final, 5*time.Second); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := rdb.TTL(ctx, key).Val(); ttl <= 0 || ttl > 5*time.Second {
		t.Fatalf("final TTL out of range: %v", ttl)
	}
	got, _ = store.load(ctx, key)
	if got.Code != 201 || string(got.Body) != `{"ok":true}` || got.InProgress {
		t.Fatalf("final entry mismatch: %+v", got)
	}

	if err := store.release(ctx, key); err != nil {
		t.Fatalf("release: %v", err)
	}
	if mr.Exists(key) {
		t.Fatalf("key should be gone after release")
	}
}
