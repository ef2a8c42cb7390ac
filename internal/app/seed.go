package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"listing_seeder/internal/adapters/observability"
	"listing_seeder/internal/assets"
	"listing_seeder/internal/domain"
)

type SeedOptions struct {
	DatabaseID    string
	Collections   domain.Collections
	Images        assets.Images
	AgentCount    int
	ReviewCount   int
	PropertyCount int
	Delay         time.Duration // pause after each delete and agent/review/gallery create
	PropertyDelay time.Duration // pause after each property create
	Rand          *rand.Rand    // nil seeds from the clock
	Lock          domain.RunLock
}

// SeedService clears the listing collections and repopulates them with
// cross-referenced sample records, one remote call at a time.
type SeedService struct {
	store   domain.DocumentStore
	opts    SeedOptions
	records *recordFactory

	mu       sync.Mutex
	progress domain.RunReport
}

func NewSeedService(store domain.DocumentStore, opts SeedOptions) *SeedService {
	rng := opts.Rand
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>1|1))
	}
	return &SeedService{
		store:   store,
		opts:    opts,
		records: &recordFactory{rng: rng, images: opts.Images},
	}
}

// Progress returns a snapshot of the run in flight (or the last finished run).
func (s *SeedService) Progress() domain.RunReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.progress
	out.Cleared = append([]domain.ClearReport(nil), s.progress.Cleared...)
	out.Stages = append([]domain.StageReport(nil), s.progress.Stages...)
	return out
}

func (s *SeedService) record(r domain.RunReport) {
	s.mu.Lock()
	s.progress = r
	s.mu.Unlock()
}

func (s *SeedService) validate() error {
	if s.store == nil {
		return fmt.Errorf("%w: document store client is not initialized", domain.ErrConfiguration)
	}
	if s.opts.DatabaseID == "" {
		return fmt.Errorf("%w: database id is empty", domain.ErrConfiguration)
	}
	for _, c := range s.opts.Collections.All() {
		if c.ID == "" {
			return fmt.Errorf("%w: collection id for %s is empty", domain.ErrConfiguration, c.Name)
		}
	}
	for name, n := range map[string]int{
		"agent":    s.opts.AgentCount,
		"review":   s.opts.ReviewCount,
		"property": s.opts.PropertyCount,
	} {
		if n < 0 {
			return fmt.Errorf("%w: %s count is negative (%d)", domain.ErrConfiguration, name, n)
		}
	}
	return nil
}

// Run executes clear, agents, reviews, galleries and properties in order.
// It returns an error only when the run cannot start; per-record failures are
// reported in the RunReport and never stop the run.
func (s *SeedService) Run(ctx context.Context) (domain.RunReport, error) {
	if err := s.validate(); err != nil {
		return domain.RunReport{}, err
	}

	rep := domain.RunReport{
		RunID:      uuid.NewString(),
		DatabaseID: s.opts.DatabaseID,
		StartedAt:  time.Now().UTC(),
		State:      domain.StateIdle,
	}
	s.record(rep)
	l := log.With().Str("run_id", rep.RunID).Logger()

	if s.opts.Lock != nil {
		key := "seed:lock:" + s.opts.DatabaseID
		ok, err := s.opts.Lock.Acquire(ctx, key, rep.RunID)
		if err != nil {
			return rep, fmt.Errorf("%w: acquire run lock: %v", domain.ErrConfiguration, err)
		}
		if !ok {
			return rep, domain.ErrRunInProgress
		}
		defer func() {
			if err := s.opts.Lock.Release(context.WithoutCancel(ctx), key, rep.RunID); err != nil {
				l.Warn().Err(err).Msg("release run lock failed")
			}
		}()
	}

	l.Info().
		Str("database", s.opts.DatabaseID).
		Str("agents", s.opts.Collections.Agents).
		Str("reviews", s.opts.Collections.Reviews).
		Str("galleries", s.opts.Collections.Galleries).
		Str("properties", s.opts.Collections.Properties).
		Msg("starting data seeding")

	rep.State = domain.StateClearing
	s.record(rep)
	for _, c := range s.opts.Collections.All() {
		cr := s.ClearCollection(ctx, c)
		rep.Cleared = append(rep.Cleared, cr)
		if cr.Err != nil {
			l.Error().Err(cr.Err).Str("collection", c.Name).Msg("error clearing collection")
			continue
		}
		l.Info().Str("collection", c.Name).Int("removed", cr.Removed).Int("failed", cr.Failed).Msg("cleared collection")
	}
	s.record(rep)
	l.Info().Msg("cleared all existing data")

	cols := s.opts.Collections
	var r refs

	agents, st := s.stage(ctx, &rep, domain.StateSeedingAgents, domain.CollectionRef{Name: domain.CollectionAgents, ID: cols.Agents},
		s.opts.AgentCount, s.opts.Delay, func(i int) (map[string]any, error) {
			return s.records.agent(i).Fields(), nil
		})
	r.agents = ids(agents)
	l.Info().Int("created", st.Created()).Int("failed", st.Failed()).Msg("seeded agents")

	reviews, st := s.stage(ctx, &rep, domain.StateSeedingReviews, domain.CollectionRef{Name: domain.CollectionReviews, ID: cols.Reviews},
		s.opts.ReviewCount, s.opts.Delay, func(i int) (map[string]any, error) {
			return s.records.review(i).Fields(), nil
		})
	r.reviews = ids(reviews)
	l.Info().Int("created", st.Created()).Int("failed", st.Failed()).Msg("seeded reviews")

	galleries, st := s.stage(ctx, &rep, domain.StateSeedingGalleries, domain.CollectionRef{Name: domain.CollectionGalleries, ID: cols.Galleries},
		len(s.opts.Images.Gallery), s.opts.Delay, func(i int) (map[string]any, error) {
			return s.records.gallery(i).Fields(), nil
		})
	r.galleries = ids(galleries)
	l.Info().Int("created", st.Created()).Int("failed", st.Failed()).Msg("seeded galleries")

	_, st = s.stage(ctx, &rep, domain.StateSeedingProperties, domain.CollectionRef{Name: domain.CollectionProperties, ID: cols.Properties},
		s.opts.PropertyCount, s.opts.PropertyDelay, func(i int) (map[string]any, error) {
			p, err := s.records.property(i, r)
			if err != nil {
				return nil, err
			}
			return p.Fields(), nil
		})
	l.Info().Int("created", st.Created()).Int("failed", st.Failed()).Msg("seeded properties")

	rep.State = domain.StateDone
	rep.FinishedAt = time.Now().UTC()
	s.record(rep)

	sum := l.Info().Dur("took", rep.FinishedAt.Sub(rep.StartedAt))
	for _, st := range rep.Stages {
		sum = sum.Int(st.Collection, st.Created())
	}
	sum.Msg("data seeding completed")
	return rep, nil
}

func (s *SeedService) stage(ctx context.Context, rep *domain.RunReport, state domain.State, c domain.CollectionRef,
	count int, delay time.Duration, gen func(i int) (map[string]any, error)) ([]domain.Document, domain.StageReport) {
	rep.State = state
	s.record(*rep)

	docs, st := s.createN(ctx, c, count, delay, gen)
	st.Stage = state
	rep.Stages = append(rep.Stages, st)
	s.record(*rep)
	observability.ObserveStage(c.Name, st.Duration)
	return docs, st
}

// ClearCollection deletes every document in c. The collection is re-listed
// until it is empty so stores that page their listings are fully drained;
// documents whose delete failed once are not attempted again.
func (s *SeedService) ClearCollection(ctx context.Context, c domain.CollectionRef) domain.ClearReport {
	out := domain.ClearReport{Collection: c.Name}
	failed := map[string]struct{}{}

	for {
		docs, err := s.store.ListDocuments(ctx, s.opts.DatabaseID, c.ID)
		if err != nil {
			out.Err = fmt.Errorf("list %s: %w", c.Name, err)
			return out
		}

		removed := 0
		for _, d := range docs {
			if _, skip := failed[d.ID]; skip {
				continue
			}
			if err := s.store.DeleteDocument(ctx, s.opts.DatabaseID, c.ID, d.ID); err != nil {
				failed[d.ID] = struct{}{}
				out.Failed++
				observability.ObserveSeedFailure(c.Name, "delete_failed", err)
				log.Warn().Err(err).Str("collection", c.Name).Str("id", d.ID).Msg("delete document failed")
				if ctx.Err() != nil {
					out.Err = ctx.Err()
					return out
				}
				continue
			}
			removed++
			out.Removed++
			observability.ObserveSeed(c.Name, "deleted")
			if !sleepCtx(ctx, s.opts.Delay) {
				out.Err = ctx.Err()
				return out
			}
		}
		if removed == 0 {
			return out
		}
	}
}

// createN creates count records built by gen. A failed record is logged and
// skipped; only cancellation of ctx ends the loop early.
func (s *SeedService) createN(ctx context.Context, c domain.CollectionRef, count int, delay time.Duration,
	gen func(i int) (map[string]any, error)) ([]domain.Document, domain.StageReport) {
	start := time.Now()
	st := domain.StageReport{Collection: c.Name, Planned: count}
	docs := make([]domain.Document, 0, count)

	for i := 1; i <= count; i++ {
		if ctx.Err() != nil {
			break
		}
		fields, err := gen(i)
		if err != nil {
			st.Items = append(st.Items, domain.ItemResult{Index: i, Err: err})
			observability.ObserveSeedFailure(c.Name, "failed", err)
			log.Error().Err(err).Str("collection", c.Name).Int("index", i).Msg("build record failed")
			continue
		}

		doc, err := s.store.CreateDocument(ctx, s.opts.DatabaseID, c.ID, domain.UniqueID, fields)
		if err != nil {
			st.Items = append(st.Items, domain.ItemResult{Index: i, Err: err})
			observability.ObserveSeedFailure(c.Name, "failed", err)
			log.Error().Err(err).Str("collection", c.Name).Int("index", i).Msg("create document failed")
			continue
		}
		if doc.Data == nil {
			doc.Data = fields
		}
		docs = append(docs, doc)
		st.Items = append(st.Items, domain.ItemResult{Index: i, ID: doc.ID})
		observability.ObserveSeed(c.Name, "created")
		if c.Name == domain.CollectionProperties {
			log.Info().Str("id", doc.ID).Interface("name", fields["name"]).Msg("seeded property")
		}
		sleepCtx(ctx, delay)
	}

	st.Duration = time.Since(start)
	return docs, st
}

func ids(docs []domain.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}
