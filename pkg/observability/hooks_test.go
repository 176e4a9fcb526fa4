package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnDecodeStart(ctx, "tower.png", 2048)
	p.OnDecodeComplete(ctx, "tower.png", 64, 48, time.Second, nil)
	p.OnCarveStart(ctx, 64, 48, 32, 48)
	p.OnCarveComplete(ctx, 32, time.Second, nil)
	p.OnEncodeStart(ctx, "png")
	p.OnEncodeComplete(ctx, "png", 1024, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "carve")
	c.OnCacheMiss(ctx, "energy")
	c.OnCacheSet(ctx, "carve", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/carve")
	h.OnResponse(ctx, "POST", "/v1/carve", 200, time.Second)
	h.OnError(ctx, "POST", "/v1/carve", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should keep the current hooks")
	}
	Reset()
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)

	ctx := context.Background()
	Pipeline().OnCarveStart(ctx, 10, 10, 5, 10)
	Pipeline().OnCarveComplete(ctx, 5, time.Millisecond, nil)

	if custom.carveStarts != 1 || custom.seams != 5 {
		t.Errorf("unexpected events: starts=%d seams=%d", custom.carveStarts, custom.seams)
	}
}

// Test implementations

type testPipelineHooks struct {
	NoopPipelineHooks
	carveStarts int
	seams       int
}

func (h *testPipelineHooks) OnCarveStart(context.Context, int, int, int, int) {
	h.carveStarts++
}

func (h *testPipelineHooks) OnCarveComplete(_ context.Context, seams int, _ time.Duration, _ error) {
	h.seams += seams
}

type testCacheHooks struct{ NoopCacheHooks }

type testHTTPHooks struct{ NoopHTTPHooks }
