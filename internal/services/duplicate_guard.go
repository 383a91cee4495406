package services

import (
	"context"
	"strings"
	"time"

	"github.com/superabroad/lead-intake/internal/redisclient"
	"github.com/superabroad/lead-intake/internal/utils"
	"go.uber.org/zap"
)

const duplicateKeyPrefix = "lead:recent:"

// DuplicateGuard remembers recently registered emails so a second lead for the
// same address inside the window is refused. A nil guard or a Redis failure lets
// every lead through.
type DuplicateGuard struct {
	client *redisclient.Client
	window time.Duration
	logger *zap.Logger
}

// NewDuplicateGuard returns nil when client is nil or window is not positive
func NewDuplicateGuard(client *redisclient.Client, window time.Duration, logger *zap.Logger) *DuplicateGuard {
	if client == nil || window <= 0 {
		return nil
	}
	return &DuplicateGuard{client: client, window: window, logger: logger}
}

func duplicateKey(email string) string {
	return duplicateKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

// Claim reserves email for the window. It returns false when the email was
// already claimed.
func (g *DuplicateGuard) Claim(ctx context.Context, email string) bool {
	if g == nil {
		return true
	}

	key := duplicateKey(email)
	ok, err := g.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), g.window).Result()
	if err != nil {
		g.logger.Warn("duplicate guard unavailable, accepting lead",
			zap.String("email", utils.MaskEmail(email)),
			zap.Error(err))
		return true
	}
	return ok
}

// Release drops the claim for email so the lead can be submitted again
func (g *DuplicateGuard) Release(ctx context.Context, email string) {
	if g == nil {
		return
	}
	if err := g.client.Del(ctx, duplicateKey(email)).Err(); err != nil {
		g.logger.Warn("failed to release duplicate guard",
			zap.String("email", utils.MaskEmail(email)),
			zap.Error(err))
	}
}
