// Package main provides the portfolio chatbot server entry point.
package main

import (
	"context"
	"time"

	"github.com/sayeesck/portfolio-chatbot-go/internal/chatlog"
	"github.com/sayeesck/portfolio-chatbot-go/internal/logger"
)

const (
	// pruneInitialDelay lets the server stabilize before the first prune.
	pruneInitialDelay = time.Minute
	// pruneInterval is how often old chat-log rows are removed.
	pruneInterval = 12 * time.Hour
)

// pruneChatLog periodically removes chat-log rows past the retention window.
func pruneChatLog(ctx context.Context, store *chatlog.Store, retention time.Duration, log *logger.Logger) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(pruneInitialDelay):
		performPrune(ctx, store, retention, log)
	}

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			performPrune(ctx, store, retention, log)
		}
	}
}

func performPrune(ctx context.Context, store *chatlog.Store, retention time.Duration, log *logger.Logger) {
	start := time.Now()
	cutoff := time.Now().Add(-retention)

	deleted, err := store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		log.WithError(err).Error("Failed to prune chat log")
		return
	}

	if deleted > 0 {
		log.WithFields(map[string]any{
			"deleted":     deleted,
			"cutoff":      cutoff.Format(time.RFC3339),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("Chat log pruned")
	}
}
