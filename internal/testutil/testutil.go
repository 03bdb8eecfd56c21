//go:build integration

// Package testutil provides helpers for integration tests that need a real
// Redis server or a reachable IOS-XE router.
package testutil

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/routerbot/routerbot/pkg/restconf"
)

// integrationDB keeps integration data away from the default database.
const integrationDB = 15

// Context returns a context that is cancelled when the test ends.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	t.Cleanup(cancel)
	return ctx
}

// RedisAddr returns ROUTERBOT_TEST_REDIS_ADDR, or "" when unset.
func RedisAddr() string {
	return os.Getenv("ROUTERBOT_TEST_REDIS_ADDR")
}

// SkipIfNoRedis skips the test if the test Redis is not reachable.
func SkipIfNoRedis(t *testing.T) {
	t.Helper()

	addr := RedisAddr()
	if addr == "" {
		t.Skip("test Redis not configured: set ROUTERBOT_TEST_REDIS_ADDR")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("test Redis not reachable at %s: %v", addr, err)
	}
}

// RedisClient returns a client on a flushed integration database. The
// database is flushed again and the client closed when the test ends.
func RedisClient(t *testing.T) *redis.Client {
	t.Helper()
	SkipIfNoRedis(t)

	client := redis.NewClient(&redis.Options{Addr: RedisAddr(), DB: integrationDB})
	flush := func() {
		if err := client.FlushDB(context.Background()).Err(); err != nil {
			t.Fatalf("flushing DB %d: %v", integrationDB, err)
		}
	}
	flush()
	t.Cleanup(func() {
		flush()
		client.Close()
	})
	return client
}

// RouterEndpoint returns the endpoint of the integration router from
// ROUTERBOT_TEST_ROUTER_HOST, _USERNAME and _PASSWORD, skipping the test
// when the host is unset. Certificate checks are off unless
// ROUTERBOT_TEST_ROUTER_VERIFY_TLS is true.
func RouterEndpoint(t *testing.T) restconf.DeviceEndpoint {
	t.Helper()

	host := os.Getenv("ROUTERBOT_TEST_ROUTER_HOST")
	if host == "" {
		t.Skip("test router not configured: set ROUTERBOT_TEST_ROUTER_HOST")
	}
	verify, _ := strconv.ParseBool(os.Getenv("ROUTERBOT_TEST_ROUTER_VERIFY_TLS"))
	return restconf.DeviceEndpoint{
		BaseURL:   restconf.BaseURLForHost(host),
		Username:  os.Getenv("ROUTERBOT_TEST_ROUTER_USERNAME"),
		Password:  os.Getenv("ROUTERBOT_TEST_ROUTER_PASSWORD"),
		VerifyTLS: verify,
		Timeout:   20 * time.Second,
	}
}

// RouterClient connects to the integration router.
func RouterClient(t *testing.T) *restconf.Client {
	t.Helper()
	c, err := restconf.New(RouterEndpoint(t))
	if err != nil {
		t.Fatalf("restconf.New: %v", err)
	}
	return c
}
