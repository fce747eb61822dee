package ai

import (
	"io"
	"log/slog"
	"testing"
)

// BenchmarkDebugLog_Disabled measures the guard's cost in production:
// an atomic load per decision pass, slog.Debug never reached.
func BenchmarkDebugLog_Disabled(b *testing.B) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
	EnableDebugLogging(false)

	b.ResetTimer()
	for range b.N {
		if IsDebugEnabled() {
			slog.Debug("raider state changed", "from", "patrol", "to", "chase")
		}
	}
}

// BenchmarkDebugLog_Enabled measures the guarded call with debug on.
func BenchmarkDebugLog_Enabled(b *testing.B) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
	EnableDebugLogging(true)

	b.ResetTimer()
	for range b.N {
		if IsDebugEnabled() {
			slog.Debug("raider state changed", "from", "patrol", "to", "chase")
		}
	}
}

// BenchmarkDebugLog_Baseline_NoGuard calls slog.Debug unconditionally,
// showing what the atomic guard saves inside the per-raider loop.
func BenchmarkDebugLog_Baseline_NoGuard(b *testing.B) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	b.ResetTimer()
	for range b.N {
		slog.Debug("raider state changed", "from", "patrol", "to", "chase")
	}
}
