package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"listing_seeder/internal/domain"
)

// Pusher sends the registry to a Prometheus Pushgateway after a run.
type Pusher struct {
	url string
	job string
	reg *prometheus.Registry
}

func NewPusher(url, job string, reg *prometheus.Registry) *Pusher {
	return &Pusher{url: url, job: job, reg: reg}
}

func (p *Pusher) Publish(ctx context.Context, r domain.RunReport) error {
	if r.State == domain.StateDone {
		LastRunFinished.Set(float64(r.FinishedAt.Unix()))
	}
	err := push.New(p.url, p.job).
		Gatherer(p.reg).
		Grouping("database", r.DatabaseID).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("pushgateway: %w", err)
	}
	return nil
}
