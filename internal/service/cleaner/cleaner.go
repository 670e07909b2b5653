package cleaner

import (
	"context"
	"time"

	"github.com/ndanilov/staffdesk/internal/logger"
	"github.com/ndanilov/staffdesk/internal/repository"
)

const defaultInterval = time.Hour

// Cleaner periodically deletes token rows that can never validate again:
// expired blacklist entries and expired or revoked refresh tokens.
// It runs off the request path so user-facing operations never pay for it.
type Cleaner struct {
	refresh   repository.RefreshTokenRepo
	blacklist repository.BlacklistRepo
	interval  time.Duration
	logger    logger.Logger
}

func New(interval time.Duration, refresh repository.RefreshTokenRepo, blacklist repository.BlacklistRepo, l logger.Logger) *Cleaner {
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Cleaner{
		refresh:   refresh,
		blacklist: blacklist,
		interval:  interval,
		logger:    l,
	}
}

// Run sweeps on a ticker until the context is cancelled
// Safe to run alongside request traffic: purges only touch rows no read cares about
func (c *Cleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep(ctx)
		}
	}
}

// Sweep runs one purge pass
func (c *Cleaner) Sweep(ctx context.Context) {
	blacklisted, err := c.blacklist.PurgeExpired(ctx)
	if err != nil {
		c.logger.Error("blacklist purge failed", "error", err.Error())
	}

	refreshed, err := c.refresh.PurgeExpired(ctx)
	if err != nil {
		c.logger.Error("refresh token purge failed", "error", err.Error())
	}

	c.logger.Debug("token cleanup finished",
		"blacklist_deleted", blacklisted,
		"refresh_deleted", refreshed,
	)
}
