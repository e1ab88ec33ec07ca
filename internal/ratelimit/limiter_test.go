package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestHostLimiter_BurstThenBlocks(t *testing.T) {
	hl := NewHostLimiter(0.001, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := hl.Wait(ctx, "https://tw.stock.yahoo.com/rank/volume"); err != nil {
			t.Fatalf("Wait %d failed: %v", i, err)
		}
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := hl.Wait(short, "https://tw.stock.yahoo.com/other"); err == nil {
		t.Error("Expected third request on the same host to be throttled")
	}

	if err := hl.Wait(ctx, "https://example.com/"); err != nil {
		t.Errorf("Other host should not be throttled: %v", err)
	}
}

func TestHostLimiter_InvalidURL(t *testing.T) {
	hl := NewHostLimiter(1, 1)

	if err := hl.Wait(context.Background(), "::bad"); err != nil {
		t.Errorf("Expected nil for invalid URL, got %v", err)
	}
}
