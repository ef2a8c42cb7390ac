package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"listing_seeder/internal/domain"
)

// PublishReport hands the finished report to every sink in parallel. Nil sinks
// are skipped. One failing sink does not cancel the others; the first error is
// returned once all of them finish.
func PublishReport(ctx context.Context, rep domain.RunReport, sinks ...domain.ReportSink) error {
	var g errgroup.Group
	for _, sink := range sinks {
		if sink == nil {
			continue
		}
		g.Go(func() error {
			if err := sink.Publish(ctx, rep); err != nil {
				log.Warn().Err(err).Str("sink", fmt.Sprintf("%T", sink)).Msg("publish report failed")
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
