// Package crmsync consumes lead-assigned events and mirrors them to the
// legacy CRM. The legacy system is flaky, so calls go through a circuit
// breaker and failures retry with exponential backoff.
package crmsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"salescrm.service/internal/core/model"
	"salescrm.service/internal/ports/messaging"
	"salescrm.service/internal/ports/repository"
	"salescrm.service/internal/worker/legacycrm"
)

type SyncProcessor struct {
	leads  repository.LeadRepository
	legacy legacycrm.Client
	cb     *gobreaker.CircuitBreaker
}

// NewProcessor creates a processor for the CRM sync queue. The circuit
// breaker trips when the legacy CRM fails more than half the time.
func NewProcessor(leads repository.LeadRepository, legacy legacycrm.Client) *SyncProcessor {
	settings := gobreaker.Settings{
		Name:        "Legacy-CRM",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
	}

	return &SyncProcessor{
		leads:  leads,
		legacy: legacy,
		cb:     gobreaker.NewCircuitBreaker(settings),
	}
}

// Process mirrors one assignment. Already-completed leads are skipped, which
// keeps redelivered messages idempotent.
func (p *SyncProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.LeadAssignedEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal lead assigned event")
		return false, 0, err // do not retry on malformed message
	}

	lead, err := p.leads.GetByID(ctx, event.LeadID)
	if err != nil {
		return true, 10, fmt.Errorf("failed to get lead from db: %w", err)
	}
	if lead == nil {
		log.Ctx(ctx).Warn().Str("lead_id", event.LeadID).Msg("Lead gone, dropping sync event")
		return false, 0, nil
	}

	if lead.CrmSyncStatus == model.SyncCompleted {
		return false, 0, nil
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.legacy.RecordAssignment(ctx, event)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			log.Ctx(ctx).Warn().Msg("Circuit breaker is OPEN; skipping legacy CRM call")
		}
		newCount := lead.CrmSyncRetries + 1
		p.leads.UpdateCrmSyncStatus(ctx, lead.ID, model.SyncPending, newCount)

		delay := calculateBackoff(newCount)
		return true, delay, err
	}

	err = p.leads.UpdateCrmSyncStatus(ctx, lead.ID, model.SyncCompleted, 0)
	return false, 0, err
}

// calculateBackoff determines how long to wait before retrying a failed job.
// It increases the delay exponentially with each retry.
func calculateBackoff(retryCount int) int32 {
	backoff := int32(math.Pow(2, float64(retryCount)) * 10)
	if backoff > 3600 {
		return 3600 // max at 1 hour
	}
	return backoff
}
