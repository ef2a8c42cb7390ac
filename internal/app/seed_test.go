package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing_seeder/internal/app"
	"listing_seeder/internal/assets"
	"listing_seeder/internal/domain"
)

var testCollections = domain.Collections{
	Agents:     "col-agents",
	Reviews:    "col-reviews",
	Galleries:  "col-galleries",
	Properties: "col-properties",
}

func testImages() assets.Images {
	return assets.Images{
		AgentAvatars:   []string{"agent-a.jpg", "agent-b.jpg"},
		ReviewAvatars:  []string{"review-a.jpg", "review-b.jpg", "review-c.jpg"},
		Gallery:        []string{"g1.jpg", "g2.jpg", "g3.jpg", "g4.jpg", "g5.jpg", "g6.jpg", "g7.jpg", "g8.jpg", "g9.jpg"},
		PropertyPhotos: []string{"p0.jpg", "p1.jpg", "p2.jpg", "p3.jpg"},
	}
}

func testOptions(seed uint64) app.SeedOptions {
	return app.SeedOptions{
		DatabaseID:    "db",
		Collections:   testCollections,
		Images:        testImages(),
		AgentCount:    5,
		ReviewCount:   20,
		PropertyCount: 20,
		Rand:          newRand(seed),
	}
}

func propertyDocs(t *testing.T, m *memStore) map[int]domain.Document {
	t.Helper()
	out := map[int]domain.Document{}
	for _, id := range m.ids(testCollections.Properties) {
		d, _ := m.byID(testCollections.Properties, id)
		var i int
		_, err := fmt.Sscanf(d.Data["name"].(string), "Property %d", &i)
		require.NoError(t, err)
		out[i] = d
	}
	return out
}

func TestRun_ReferentialIntegrity(t *testing.T) {
	store := newMemStore()
	svc := app.NewSeedService(store, testOptions(10))

	rep, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StateDone, rep.State)
	assert.NotEmpty(t, rep.RunID)

	counts := rep.Counts()
	assert.Equal(t, 5, counts[domain.CollectionAgents])
	assert.Equal(t, 20, counts[domain.CollectionReviews])
	assert.Equal(t, 9, counts[domain.CollectionGalleries], "one gallery record per gallery image")
	assert.Equal(t, 20, counts[domain.CollectionProperties])

	agents := store.ids(testCollections.Agents)
	reviews := store.ids(testCollections.Reviews)
	galleries := store.ids(testCollections.Galleries)

	props := propertyDocs(t, store)
	require.Len(t, props, 20)
	for i, p := range props {
		d := p.Data
		assert.Contains(t, agents, d["agent"], "property %d", i)

		rs := d["reviews"].([]string)
		assert.GreaterOrEqual(t, len(rs), 5)
		assert.LessOrEqual(t, len(rs), 7)
		assert.Subset(t, reviews, rs)
		assertDistinct(t, rs)

		gs := d["gallery"].([]string)
		assert.GreaterOrEqual(t, len(gs), 3)
		assert.LessOrEqual(t, len(gs), 8)
		assert.Subset(t, galleries, gs)
		assertDistinct(t, gs)

		fs := d["facilities"].([]string)
		assert.NotEmpty(t, fs)
		assert.LessOrEqual(t, len(fs), len(domain.Facilities))
		assert.Subset(t, domain.Facilities, fs)
		assertDistinct(t, fs)

		assert.Contains(t, domain.PropertyTypes, d["type"])
		assertBetween(t, d["price"], 1000, 9999)
		assertBetween(t, d["area"], 500, 3499)
		assertBetween(t, d["bedrooms"], 1, 5)
		assertBetween(t, d["bathrooms"], 1, 5)
		assertBetween(t, d["rating"], 1, 5)
		assert.Equal(t, fmt.Sprintf("192.168.1.%d, 192.168.1.%d", i, i), d["geolocation"])
	}

	for _, id := range reviews {
		d, _ := store.byID(testCollections.Reviews, id)
		assertBetween(t, d.Data["rating"], 1, 5)
		assert.Contains(t, testImages().ReviewAvatars, d.Data["avatar"])
	}
	for n, id := range agents {
		d, _ := store.byID(testCollections.Agents, id)
		assert.Equal(t, fmt.Sprintf("Agent %d", n+1), d.Data["name"])
		assert.Equal(t, fmt.Sprintf("agent%d@example.com", n+1), d.Data["email"])
	}
	// the shared enum must not be reordered by facility sampling
	assert.Equal(t, []string{"Laundry", "Parking", "Gym", "Wifi", "Pet-friendly"}, domain.Facilities)
}

func TestRun_StagesRunInDependencyOrder(t *testing.T) {
	store := newMemStore()
	store.preload(testCollections.Properties, 2)
	_, err := app.NewSeedService(store, testOptions(11)).Run(context.Background())
	require.NoError(t, err)

	// every list/delete happens before the first create, and creates follow
	// agents -> reviews -> galleries -> properties without interleaving
	firstCreate := -1
	var order []string
	for i, c := range store.calls {
		if c.op == "create" {
			if firstCreate < 0 {
				firstCreate = i
			}
			if len(order) == 0 || order[len(order)-1] != c.collection {
				order = append(order, c.collection)
			}
			continue
		}
		assert.Less(t, firstCreate, 0, "call %d (%s) after creates started", i, c.op)
	}
	assert.Equal(t, []string{
		testCollections.Agents, testCollections.Reviews, testCollections.Galleries, testCollections.Properties,
	}, order)
}

func TestRun_IdempotentReseed(t *testing.T) {
	store := newMemStore()
	store.pageSize = 25

	_, err := app.NewSeedService(store, testOptions(20)).Run(context.Background())
	require.NoError(t, err)
	first := map[string][]string{}
	for _, c := range testCollections.All() {
		first[c.ID] = store.ids(c.ID)
	}

	rep, err := app.NewSeedService(store, testOptions(21)).Run(context.Background())
	require.NoError(t, err)

	for _, cr := range rep.Cleared {
		assert.NoError(t, cr.Err)
		assert.Zero(t, cr.Failed)
	}
	for _, st := range rep.Stages {
		var created []string
		for _, it := range st.Items {
			if it.OK() {
				created = append(created, it.ID)
			}
		}
		var id string
		for _, c := range testCollections.All() {
			if c.Name == st.Collection {
				id = c.ID
			}
		}
		assert.ElementsMatch(t, created, store.ids(id), "collection %s holds only second-run records", st.Collection)
		for _, old := range first[id] {
			assert.NotContains(t, store.ids(id), old)
		}
	}
}

func TestClearCollection_DrainsPagedListings(t *testing.T) {
	store := newMemStore()
	store.pageSize = 3
	store.preload(testCollections.Reviews, 10)

	svc := app.NewSeedService(store, testOptions(30))
	cr := svc.ClearCollection(context.Background(), domain.CollectionRef{Name: domain.CollectionReviews, ID: testCollections.Reviews})

	require.NoError(t, cr.Err)
	assert.Equal(t, 10, cr.Removed)
	assert.Empty(t, store.ids(testCollections.Reviews))
}

func TestClearCollection_FailedDeleteIsNotRetried(t *testing.T) {
	store := newMemStore()
	store.preload(testCollections.Agents, 4)
	bad := store.ids(testCollections.Agents)[1]
	attempts := 0
	store.failDelete = func(_, id string) bool {
		if id == bad {
			attempts++
			return true
		}
		return false
	}

	svc := app.NewSeedService(store, testOptions(31))
	cr := svc.ClearCollection(context.Background(), domain.CollectionRef{Name: domain.CollectionAgents, ID: testCollections.Agents})

	require.NoError(t, cr.Err)
	assert.Equal(t, 3, cr.Removed)
	assert.Equal(t, 1, cr.Failed)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, []string{bad}, store.ids(testCollections.Agents))
}

func TestRun_ClearFailureDoesNotStopRun(t *testing.T) {
	store := newMemStore()
	store.preload(testCollections.Reviews, 3)
	store.failList = func(c string) bool { return c == testCollections.Agents }

	rep, err := app.NewSeedService(store, testOptions(40)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StateDone, rep.State)

	require.Len(t, rep.Cleared, 4)
	assert.ErrorIs(t, rep.Cleared[0].Err, errInjected)
	assert.Equal(t, 3, rep.Cleared[1].Removed, "later collections are still cleared")
	assert.Equal(t, 20, rep.Counts()[domain.CollectionProperties])
}

func TestRun_PartialFailureIsolation(t *testing.T) {
	store := newMemStore()
	store.failCreate = func(c string, n int) bool {
		return c == testCollections.Reviews && (n == 3 || n == 11)
	}

	rep, err := app.NewSeedService(store, testOptions(50)).Run(context.Background())
	require.NoError(t, err)

	var reviews domain.StageReport
	for _, st := range rep.Stages {
		if st.Collection == domain.CollectionReviews {
			reviews = st
		}
	}
	require.Len(t, reviews.Items, 20, "every planned index is attempted")
	assert.Equal(t, 18, reviews.Created())
	assert.Equal(t, 2, reviews.Failed())
	for i, it := range reviews.Items {
		assert.Equal(t, i+1, it.Index)
		if it.Index == 3 || it.Index == 11 {
			assert.ErrorIs(t, it.Err, errInjected)
		} else {
			assert.NoError(t, it.Err)
		}
	}
	assert.Len(t, store.ids(testCollections.Reviews), 18)

	// properties only reference reviews that exist
	reviewIDs := store.ids(testCollections.Reviews)
	for _, p := range propertyDocs(t, store) {
		assert.Subset(t, reviewIDs, p.Data["reviews"].([]string))
	}
}

func TestRun_PropertyFailsWhenReferencesAreMissing(t *testing.T) {
	t.Run("no agents", func(t *testing.T) {
		store := newMemStore()
		store.failCreate = func(c string, _ int) bool { return c == testCollections.Agents }

		rep, err := app.NewSeedService(store, testOptions(60)).Run(context.Background())
		require.NoError(t, err)
		last := rep.Stages[len(rep.Stages)-1]
		assert.Equal(t, domain.CollectionProperties, last.Collection)
		assert.Equal(t, 0, last.Created())
		for _, it := range last.Items {
			assert.ErrorIs(t, it.Err, app.ErrNoAgents)
		}
	})

	t.Run("too few reviews", func(t *testing.T) {
		store := newMemStore()
		opts := testOptions(61)
		opts.ReviewCount = 4
		rep, err := app.NewSeedService(store, opts).Run(context.Background())
		require.NoError(t, err)
		last := rep.Stages[len(rep.Stages)-1]
		assert.Equal(t, 20, last.Failed())
		for _, it := range last.Items {
			assert.ErrorIs(t, it.Err, app.ErrInvalidRange)
		}
		assert.Empty(t, store.ids(testCollections.Properties))
	})
}

func TestRun_PropertyImageBoundary(t *testing.T) {
	store := newMemStore()
	opts := testOptions(70)
	opts.PropertyCount = 12
	_, err := app.NewSeedService(store, opts).Run(context.Background())
	require.NoError(t, err)

	photos := testImages().PropertyPhotos
	props := propertyDocs(t, store)
	require.Len(t, props, 12)
	for i, p := range props {
		if i <= len(photos)-1 {
			assert.Equal(t, photos[i], p.Data["image"], "property %d takes the photo at its index", i)
		} else {
			assert.Contains(t, photos, p.Data["image"], "property %d falls back to a random photo", i)
		}
	}
}

func TestRun_ConfigurationErrorAbortsBeforeAnyStage(t *testing.T) {
	t.Run("nil store", func(t *testing.T) {
		_, err := app.NewSeedService(nil, testOptions(80)).Run(context.Background())
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	for name, mutate := range map[string]func(*app.SeedOptions){
		"negative agent count":    func(o *app.SeedOptions) { o.AgentCount = -1 },
		"negative review count":   func(o *app.SeedOptions) { o.ReviewCount = -3 },
		"negative property count": func(o *app.SeedOptions) { o.PropertyCount = -20 },
	} {
		t.Run(name, func(t *testing.T) {
			store := newMemStore()
			store.preload(testCollections.Agents, 2)
			opts := testOptions(82)
			mutate(&opts)
			_, err := app.NewSeedService(store, opts).Run(context.Background())
			assert.ErrorIs(t, err, domain.ErrConfiguration)
			assert.Empty(t, store.calls, "nothing may be cleared before the counts are checked")
			assert.Len(t, store.ids(testCollections.Agents), 2)
		})
	}

	t.Run("missing collection id", func(t *testing.T) {
		store := newMemStore()
		opts := testOptions(81)
		opts.Collections.Galleries = ""
		_, err := app.NewSeedService(store, opts).Run(context.Background())
		assert.ErrorIs(t, err, domain.ErrConfiguration)
		assert.Empty(t, store.calls)
	})
}

type fakeLock struct {
	held     bool
	acquired []string
	released []string
	err      error
}

func (l *fakeLock) Acquire(ctx context.Context, key, owner string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.held {
		return false, nil
	}
	l.held = true
	l.acquired = append(l.acquired, key)
	return true, nil
}

func (l *fakeLock) Release(ctx context.Context, key, owner string) error {
	l.held = false
	l.released = append(l.released, key)
	return nil
}

func TestRun_Lock(t *testing.T) {
	t.Run("held elsewhere", func(t *testing.T) {
		store := newMemStore()
		opts := testOptions(90)
		opts.Lock = &fakeLock{held: true}
		_, err := app.NewSeedService(store, opts).Run(context.Background())
		assert.ErrorIs(t, err, domain.ErrRunInProgress)
		assert.Empty(t, store.calls)
	})

	t.Run("lock backend down", func(t *testing.T) {
		store := newMemStore()
		opts := testOptions(91)
		opts.Lock = &fakeLock{err: errors.New("dial tcp: refused")}
		_, err := app.NewSeedService(store, opts).Run(context.Background())
		assert.ErrorIs(t, err, domain.ErrConfiguration)
		assert.Empty(t, store.calls)
	})

	t.Run("acquired and released", func(t *testing.T) {
		lock := &fakeLock{}
		opts := testOptions(92)
		opts.Lock = lock
		_, err := app.NewSeedService(newMemStore(), opts).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"seed:lock:db"}, lock.acquired)
		assert.Equal(t, []string{"seed:lock:db"}, lock.released)
		assert.False(t, lock.held)
	})
}

func TestRun_ProgressReachesDone(t *testing.T) {
	svc := app.NewSeedService(newMemStore(), testOptions(100))
	assert.Equal(t, domain.StateIdle, svc.Progress().State)

	rep, err := svc.Run(context.Background())
	require.NoError(t, err)

	p := svc.Progress()
	assert.Equal(t, domain.StateDone, p.State)
	assert.Equal(t, rep.RunID, p.RunID)
	require.Len(t, p.Stages, 4)
	wantStages := []domain.State{
		domain.StateSeedingAgents, domain.StateSeedingReviews, domain.StateSeedingGalleries, domain.StateSeedingProperties,
	}
	for i, st := range p.Stages {
		assert.Equal(t, wantStages[i], st.Stage)
	}
}

func TestRun_PausesAfterEachSuccessfulCall(t *testing.T) {
	const (
		delay     = 20 * time.Millisecond
		propDelay = 40 * time.Millisecond
	)
	store := newMemStore()
	store.preload(testCollections.Agents, 2)
	store.failCreate = func(c string, n int) bool { return c == testCollections.Reviews && n == 2 }

	opts := testOptions(120)
	opts.AgentCount, opts.ReviewCount, opts.PropertyCount = 2, 8, 3
	opts.Delay, opts.PropertyDelay = delay, propDelay

	_, err := app.NewSeedService(store, opts).Run(context.Background())
	require.NoError(t, err)

	var deletes, creates, props, failures int
	for i := 0; i+1 < len(store.calls); i++ {
		cur, next := store.calls[i], store.calls[i+1]
		gap := next.at.Sub(cur.at)
		switch {
		case cur.op == "list":
			continue
		case cur.failed:
			failures++
			assert.Less(t, gap, delay, "no pause after a failed %s in %s", cur.op, cur.collection)
		case cur.op == "create" && cur.collection == testCollections.Properties:
			props++
			assert.GreaterOrEqual(t, gap, propDelay, "property creates are spaced by the property delay")
		case cur.op == "create":
			creates++
			assert.GreaterOrEqual(t, gap, delay, "create in %s", cur.collection)
		case cur.op == "delete":
			deletes++
			assert.GreaterOrEqual(t, gap, delay, "delete in %s", cur.collection)
		}
	}
	assert.Equal(t, 2, deletes)
	assert.Equal(t, 1, failures)
	assert.Equal(t, 2+7+len(opts.Images.Gallery), creates)
	assert.Equal(t, 2, props, "the last property has no following call")
}

func TestRun_CancelledContextStopsCreating(t *testing.T) {
	store := newMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := app.NewSeedService(store, testOptions(110)).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StateDone, rep.State)
	for _, c := range store.calls {
		assert.NotEqual(t, "create", c.op)
	}
}

func assertDistinct(t *testing.T, xs []string) {
	t.Helper()
	seen := map[string]bool{}
	for _, x := range xs {
		assert.False(t, seen[x], "duplicate %q in %v", x, xs)
		seen[x] = true
	}
}

func assertBetween(t *testing.T, v any, lo, hi int) {
	t.Helper()
	n, ok := v.(int)
	if assert.True(t, ok, "expected int, got %T", v) {
		assert.GreaterOrEqual(t, n, lo)
		assert.LessOrEqual(t, n, hi)
	}
}
