package services

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultSweepSchedule = "*/5 * * * *"

// SchedulerService runs the periodic overdue sweep over compliance
// obligations. The sweep only drives notification; overdue status itself is
// derived on every read, so a missed tick costs nothing but latency.
type SchedulerService struct {
	compliance *ComplianceService
	cron       *cron.Cron
	mu         sync.Mutex
	running    bool
}

// NewSchedulerService creates a new scheduler service. The sweep cadence is
// read from OVERDUE_SWEEP_SCHEDULE (standard five-field cron), defaulting to
// every five minutes.
func NewSchedulerService(compliance *ComplianceService) *SchedulerService {
	return &SchedulerService{
		compliance: compliance,
		cron:       cron.New(),
	}
}

// Start registers the sweep job and begins the cron loop.
func (s *SchedulerService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	schedule := os.Getenv("OVERDUE_SWEEP_SCHEDULE")
	if schedule == "" {
		schedule = defaultSweepSchedule
	}

	if _, err := s.cron.AddFunc(schedule, s.runSweep); err != nil {
		return err
	}

	s.cron.Start()
	s.running = true
	log.Printf("⏰ Overdue sweep scheduled: %s", schedule)

	// Run once at startup so a restart doesn't delay alerts a full cadence
	go s.runSweep()
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false

	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("⏰ Overdue sweep stopped")
}

func (s *SchedulerService) runSweep() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("🔥 Panic in overdue sweep: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.compliance.SweepOverdue(ctx, time.Now().UTC()); err != nil {
		log.Printf("❌ Overdue sweep failed: %v", err)
	}
}
