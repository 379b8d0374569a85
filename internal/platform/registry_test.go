package platform_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	config "github.com/crosspilot/crosspilot/configs"
	"github.com/crosspilot/crosspilot/internal/platform"
)

func TestRegistryResolve(t *testing.T) {
	c := qt.New(t)

	cfg := config.Config{BlueskyServiceURL: "https://bsky.social"}
	registry := platform.NewRegistry(
		platform.NewXAdapter(cfg),
		platform.NewBlueskyAdapter(cfg),
	)

	adapter, ok := registry.Resolve(platform.X)
	c.Assert(ok, qt.IsTrue)
	c.Assert(adapter.Platform(), qt.Equals, platform.X)

	_, ok = registry.Resolve(platform.TikTok)
	c.Assert(ok, qt.IsFalse)

	c.Assert(registry.Platforms(), qt.DeepEquals, []string{platform.Bluesky, platform.X})
}
