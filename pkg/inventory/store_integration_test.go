//go:build integration

package inventory_test

import (
	"testing"
	"time"

	"github.com/routerbot/routerbot/internal/testutil"
	"github.com/routerbot/routerbot/pkg/inventory"
)

func TestStore_RealRedis(t *testing.T) {
	store := inventory.NewStore(testutil.RedisClient(t))
	ctx := testutil.Context(t)

	for _, name := range []string{"core", "edge"} {
		p := inventory.Profile{GuildID: "g1", Name: name, Host: name + ".example.net", Username: "u", Password: "p"}
		if _, err := store.Upsert(ctx, p); err != nil {
			t.Fatalf("Upsert(%s): %v", name, err)
		}
	}
	if err := store.SetStatus(ctx, "g1", "edge", "offline", "timeout", time.Now()); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	profiles, err := store.List(ctx, "g1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(profiles) != 2 || profiles[0].Name != "core" || profiles[1].Name != "edge" {
		t.Fatalf("List = %+v", profiles)
	}
	if profiles[1].Status != "offline" || profiles[1].FailureReason != "timeout" {
		t.Errorf("edge status = %q/%q", profiles[1].Status, profiles[1].FailureReason)
	}
}
