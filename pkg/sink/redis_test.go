package sink

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"

	"github.com/matzehuels/pcfguess/pkg/grammar"
	"github.com/matzehuels/pcfguess/pkg/guess"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisBatches(t *testing.T) {
	mr, client := newMiniredis(t)
	s := NewRedis(context.Background(), client, WithKey("run:1"), WithBatchSize(3))
	if s.Key() != "run:1" {
		t.Errorf("Key = %q", s.Key())
	}

	for i := 0; i < 7; i++ {
		if err := s.Emit(guess.Record{Guess: "g" + strconv.Itoa(i)}); err != nil {
			t.Fatalf("Emit %d: %v", i, err)
		}
	}
	got, err := mr.List("run:1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 6 || s.Pushed() != 6 {
		t.Errorf("before Close: %d in list, %d pushed; want 6", len(got), s.Pushed())
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	got, _ = mr.List("run:1")
	if len(got) != 7 || got[0] != "g0" || got[6] != "g6" {
		t.Errorf("list = %v", got)
	}
	// Close with nothing pending is a no-op.
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestRedisProbabilitiesAndTTL(t *testing.T) {
	mr, client := newMiniredis(t)
	s := NewRedis(context.Background(), client, WithRedisProbabilities(true), WithTTL(time.Hour))
	if err := s.Emit(guess.Record{Guess: "cat1", Probability: 0.21, Rule: "(word)(number)"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	got, err := mr.List(DefaultRedisKey)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "cat1\t0.21\t(word)(number)" {
		t.Errorf("list = %q", got)
	}
	if ttl := mr.TTL(DefaultRedisKey); ttl != time.Hour {
		t.Errorf("TTL = %v, want 1h", ttl)
	}
}

func TestRedisCloseAfterCancel(t *testing.T) {
	mr, client := newMiniredis(t)
	ctx, cancel := context.WithCancel(context.Background())
	s := NewRedis(ctx, client, WithBatchSize(100))
	for i := 0; i < 5; i++ {
		if err := s.Emit(guess.Record{Guess: "g" + strconv.Itoa(i)}); err != nil {
			t.Fatalf("Emit %d: %v", i, err)
		}
	}
	cancel()

	if err := s.Flush(); err == nil {
		t.Error("Flush on a cancelled context returned nil")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close after cancel: %v", err)
	}
	got, _ := mr.List(DefaultRedisKey)
	if len(got) != 5 || s.Pushed() != 5 {
		t.Errorf("list = %v, pushed %d; want 5", got, s.Pushed())
	}
}

func TestRedisPushError(t *testing.T) {
	mr, client := newMiniredis(t)
	s := NewRedis(context.Background(), client, WithBatchSize(1))
	mr.SetError("READONLY replica")
	if err := s.Emit(guess.Record{Guess: "a"}); err == nil {
		t.Error("Emit against a failing server returned nil")
	}
}

func TestDial(t *testing.T) {
	mr, _ := newMiniredis(t)
	client, err := Dial(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	client.Close()

	if _, err := Dial(context.Background(), "http://nope"); err == nil {
		t.Error("Dial with a bad scheme returned nil")
	}
}

func TestRedisWithGenerator(t *testing.T) {
	mr, client := newMiniredis(t)
	rule, _ := grammar.NewRule("(word)(number)", 0.5)
	ix, err := grammar.New([]grammar.Rule{rule}, map[string][]grammar.Terminal{
		"word":   {{Word: "cat", Prob: 0.6}, {Word: "dog", Prob: 0.4}},
		"number": {{Word: "1", Prob: 0.7}, {Word: "2", Prob: 0.3}},
	})
	if err != nil {
		t.Fatal(err)
	}
	gen, err := guess.NewGenerator(ix, guess.Options{Mangle: true})
	if err != nil {
		t.Fatal(err)
	}
	s := NewRedis(context.Background(), client, WithBatchSize(4))
	sum, err := gen.Run(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	got, _ := mr.List(DefaultRedisKey)
	if int64(len(got)) != sum.Emitted || sum.Emitted != 12 || got[0] != "cat1" || got[1] != "CAT1" {
		t.Errorf("list = %v, emitted %d", got, sum.Emitted)
	}
}
