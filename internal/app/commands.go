package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_mapping/internal/domain"
)

type ImportReport struct {
	Fetched  int
	Created  int
	Skipped  int // records that could not be mapped or failed validation
	Failures int // store errors
}

// ImportService loads listings from an external feed and creates them under one owner.
type ImportService struct {
	feed     domain.ListingFeed
	listings *ListingService
	workers  int64
}

func NewImportService(f domain.ListingFeed, l *ListingService, workers int) *ImportService {
	if workers <= 0 {
		workers = 1
	}
	return &ImportService{feed: f, listings: l, workers: int64(workers)}
}

func (s *ImportService) Import(ctx context.Context, ownerID string) (ImportReport, error) {
	recs, err := s.feed.GetListings(ctx)
	if err != nil {
		return ImportReport{}, fmt.Errorf("fetch feed: %w", err)
	}
	return s.ImportRecords(ctx, ownerID, recs)
}

// ImportRecords creates one listing per record with at most `workers` creations in flight.
// Bad records are skipped; the first store error is returned after all workers finish.
func (s *ImportService) ImportRecords(ctx context.Context, ownerID string, recs []map[string]any) (ImportReport, error) {
	rep := ImportReport{Fetched: len(recs)}
	var created, skipped, failed atomic.Int64
	var firstErr error
	var errOnce sync.Once

	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup

	for i, rec := range recs {
		in, err := mapFeedListing(rec)
		if err != nil {
			log.Warn().Int("index", i).Err(err).Msg("feed record skipped")
			skipped.Add(1)
			continue
		}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			errOnce.Do(func() { firstErr = err })
			break
		}

		wg.Add(1)
		go func(idx int, in domain.NewHotel) {
			defer wg.Done()
			defer sem.Release(1)

			h, err := s.listings.Create(ctx, ownerID, in)
			var vErr *domain.ValidationError
			switch {
			case errors.As(err, &vErr):
				log.Warn().Int("index", idx).Err(err).Msg("feed record invalid")
				skipped.Add(1)
			case err != nil:
				log.Error().Int("index", idx).Err(err).Msg("import failed")
				failed.Add(1)
				errOnce.Do(func() { firstErr = err })
			default:
				log.Info().Str("id", h.ID).Str("name", h.Name).Msg("import ok")
				created.Add(1)
			}
		}(i, in)
	}

	wg.Wait()
	rep.Created = int(created.Load())
	rep.Skipped = int(skipped.Load())
	rep.Failures = int(failed.Load())
	return rep, firstErr
}
