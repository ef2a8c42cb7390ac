package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing_seeder/internal/app"
	"listing_seeder/internal/domain"
)

type recordingSink struct {
	mu   sync.Mutex
	got  []string
	fail error
}

func (s *recordingSink) Publish(ctx context.Context, r domain.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, r.RunID)
	return s.fail
}

func TestPublishReport_AllSinksReceiveTheReport(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	err := app.PublishReport(context.Background(), domain.RunReport{RunID: "r1"}, a, nil, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, a.got)
	assert.Equal(t, []string{"r1"}, b.got)
}

func TestPublishReport_FailingSinkDoesNotStopOthers(t *testing.T) {
	boom := errors.New("sink down")
	bad, good := &recordingSink{fail: boom}, &recordingSink{}

	err := app.PublishReport(context.Background(), domain.RunReport{RunID: "r2"}, bad, good)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"r2"}, good.got)
}

func TestPublishReport_NoSinks(t *testing.T) {
	assert.NoError(t, app.PublishReport(context.Background(), domain.RunReport{}))
}
