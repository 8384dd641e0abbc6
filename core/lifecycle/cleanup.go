package lifecycle

import (
	"context"
	"time"

	"asset-prediction-orchestrator/core/models"

	"github.com/rs/zerolog/log"
)

// MaintenanceSweepStore is the record access the cleanup scheduler needs
type MaintenanceSweepStore interface {
	List() ([]*models.EndpointMaintenanceRecord, error)
	ClaimForDeletion(id string) (bool, error)
}

// ResourceDeleter tears down endpoint resources in the runtime
type ResourceDeleter interface {
	DeleteEndpointResources(ctx context.Context, endpointName, configName string) error
}

// CleanupScheduler periodically reclaims endpoints idle past the expiry.
// Records are never removed here; removal happens via the state-change sync
// once the engine confirms the endpoint is gone.
type CleanupScheduler struct {
	endpoints MaintenanceSweepStore
	deleter   ResourceDeleter
	expiry    time.Duration
	interval  time.Duration
}

// NewCleanupScheduler creates a new endpoint cleanup scheduler
func NewCleanupScheduler(endpoints MaintenanceSweepStore, deleter ResourceDeleter, expiry, interval time.Duration) *CleanupScheduler {
	return &CleanupScheduler{
		endpoints: endpoints,
		deleter:   deleter,
		expiry:    expiry,
		interval:  interval,
	}
}

// Start runs the sweep loop until the context is cancelled
func (s *CleanupScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.interval).Dur("expiry", s.expiry).
		Msg("endpoint cleanup scheduler started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("endpoint cleanup scheduler stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep scans all maintenance records and tears down the expired ones
func (s *CleanupScheduler) Sweep(ctx context.Context) {
	recs, err := s.endpoints.List()
	if err != nil {
		log.Error().Err(err).Msg("cleanup sweep: listing maintenance records failed")
		return
	}

	now := time.Now()
	for _, rec := range recs {
		if rec.Status.Terminal() {
			// mid-deletion, the state-change sync will finish it
			continue
		}
		if !rec.ExpiredAt(now, s.expiry) {
			continue
		}

		claimed, err := s.endpoints.ClaimForDeletion(rec.ID)
		if err != nil {
			log.Error().Err(err).Str("executionId", rec.ID).Msg("cleanup sweep: claim failed")
			continue
		}
		if !claimed {
			continue
		}

		log.Info().Str("executionId", rec.ID).Str("endpointName", rec.EndpointName).
			Msg("reclaiming idle endpoint")
		if err := s.deleter.DeleteEndpointResources(ctx, rec.EndpointName, rec.ConfigName); err != nil {
			log.Error().Err(err).Str("executionId", rec.ID).
				Msg("cleanup sweep: endpoint deletion failed, manual delete can retry it")
		}
	}
}
