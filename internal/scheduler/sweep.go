// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookstore/internal/uploads"
)

// sweepGrace protects images uploaded for forms that have not been
// submitted yet.
const sweepGrace = 24 * time.Hour

// ImageReferencer reports which stored filenames are still attached to
// a live entity.
type ImageReferencer interface {
	ReferencedImages() (map[string]bool, error)
}

// SweepScheduler periodically deletes uploaded images no entity
// references anymore.
type SweepScheduler struct {
	store    *uploads.Store
	entities map[string]ImageReferencer

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewSweepScheduler creates a scheduler sweeping one upload folder per
// registered entity tag.
func NewSweepScheduler(store *uploads.Store, entities map[string]ImageReferencer) *SweepScheduler {
	return &SweepScheduler{
		store:    store,
		entities: entities,
		cron:     cron.New(),
	}
}

// Start schedules the sweep. An empty schedule disables it.
func (s *SweepScheduler) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if schedule == "" {
		log.Printf("Orphan image sweep: disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, s.runSweep); err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Orphan image sweep scheduled: %s", schedule)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *SweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
}

// RunOnce sweeps every registered entity immediately.
func (s *SweepScheduler) RunOnce() {
	s.runSweep()
}

func (s *SweepScheduler) runSweep() {
	for entity, referencer := range s.entities {
		referenced, err := referencer.ReferencedImages()
		if err != nil {
			log.Printf("Orphan sweep for %s failed: %v", entity, err)
			continue
		}
		removed, err := s.store.SweepOrphans(entity, referenced, sweepGrace)
		if err != nil {
			log.Printf("Orphan sweep for %s failed: %v", entity, err)
			continue
		}
		if removed > 0 {
			log.Printf("Orphan sweep removed %d %s image(s)", removed, entity)
		}
	}
}
