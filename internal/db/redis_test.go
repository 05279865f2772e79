package db

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := ConnectRedis(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	if got := client.Options().PoolSize; got != 10 {
		t.Fatalf("expected pool size 10 got %d", got)
	}

	client, err = ConnectRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("connect with url: %v", err)
	}
	defer client.Close()
}

func TestConnectRedisFailures(t *testing.T) {
	if _, err := ConnectRedis(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty address")
	}

	if _, err := ConnectRedis(context.Background(), "redis://%zz"); err == nil {
		t.Fatal("expected error for malformed url")
	}

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := ConnectRedis(context.Background(), addr); err == nil {
		t.Fatal("expected ping error once the server is gone")
	}
}
