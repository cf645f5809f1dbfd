package alert

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/luki/proctemp/internal/severity"
)

// Watch runs Check immediately and then every interval until ctx is
// done. Failed checks are logged and the loop keeps going.
func (c *Checker) Watch(ctx context.Context, clk clock.Clock, interval time.Duration) {
	log := c.Exec.log
	log.Info().Dur("interval", interval).Msg("watching sensors")

	ticker := clk.Ticker(interval)
	defer ticker.Stop()

	c.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("watch stopped")
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *Checker) tick(ctx context.Context) {
	level, err := c.Check(ctx)
	if err != nil {
		c.Exec.log.Error().Err(err).Stringer("severity", level).Msg("check failed")
		return
	}
	if level != severity.Normal {
		c.Exec.log.Warn().Stringer("severity", level).Msg("threshold crossed")
	}
}
