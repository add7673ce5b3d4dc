package utils

import (
	"context"
	"testing"
	"time"
)

func TestPostgresPoolConfig_Defaults(t *testing.T) {
	c := PostgresPoolConfig{}.withDefaults()
	if c.MaxOpenConns != 4 || c.MaxIdleConns != 2 {
		t.Fatalf("unexpected pool sizes: %+v", c)
	}
	if c.PingTimeout != 5*time.Second {
		t.Fatalf("expected 5s ping timeout, got %v", c.PingTimeout)
	}

	c = PostgresPoolConfig{MaxOpenConns: 1, MaxIdleConns: 5}.withDefaults()
	if c.MaxOpenConns != 1 || c.MaxIdleConns != 1 {
		t.Fatalf("idle conns must not exceed open conns: %+v", c)
	}
}

func TestRedisConfig_Defaults(t *testing.T) {
	c := RedisConfig{Addr: "localhost:6379"}.withDefaults()
	if c.PoolSize != 8 || c.DialTimeout != 3*time.Second || c.IOTimeout != 2*time.Second {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestOpenRedis_RequiresAddr(t *testing.T) {
	if _, err := OpenRedis(context.Background(), RedisConfig{}); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
