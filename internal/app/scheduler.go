package app

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/fvs/internal/interfaces"
)

// startBriefScheduler generates the daily brief on the configured cron
// schedule. A run that finds an existing brief for the day is a no-op
// because generation is cached by date.
func (a *App) startBriefScheduler() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.schedulerCancel = cancel

	c := cron.New()
	_, err := c.AddFunc(a.Config.Brief.Schedule, func() {
		a.Logger.Info().Str("schedule", a.Config.Brief.Schedule).Msg("Scheduled brief generation starting")

		if _, err := a.BriefService.Generate(ctx, interfaces.BriefOptions{}); err != nil {
			a.Logger.Warn().Err(err).Msg("Scheduled brief generation failed")
		}
	})
	if err != nil {
		cancel()
		return err
	}

	c.Start()
	go func() {
		<-ctx.Done()
		c.Stop()
		a.Logger.Info().Msg("Brief scheduler stopped")
	}()

	a.Logger.Info().Str("schedule", a.Config.Brief.Schedule).Msg("Brief scheduler started")
	return nil
}
