// Package email consumes assignment events and sends the notification mail
// to the employee who received the lead.
package email

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
	"salescrm.service/internal/core"
	"salescrm.service/internal/core/model"
	"salescrm.service/internal/ports/messaging"
	"salescrm.service/internal/ports/repository"
)

type EmailProcessor struct {
	emailService core.EmailService
	leads        repository.LeadRepository
}

func NewProcessor(emailService core.EmailService, leads repository.LeadRepository) *EmailProcessor {
	return &EmailProcessor{
		emailService: emailService,
		leads:        leads,
	}
}

// Process sends the notification for one assignment, retrying on failure and
// skipping leads whose email already went out.
func (p *EmailProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.AssignmentEmailEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal assignment email event")
		return false, 0, err // do not retry on malformed message
	}

	lead, err := p.leads.GetByID(ctx, event.LeadID)
	if err != nil {
		return true, 10, fmt.Errorf("failed to get lead from db for email processing: %w", err)
	}
	if lead == nil {
		log.Ctx(ctx).Warn().Str("lead_id", event.LeadID).Msg("Lead gone, dropping email event")
		return false, 0, nil
	}

	if lead.EmailStatus == model.SyncCompleted {
		log.Ctx(ctx).Info().Str("lead_id", event.LeadID).Msg("Email already sent. Skipping.")
		return false, 0, nil
	}

	err = p.emailService.SendAssignmentNotification(ctx, event.EmployeeEmail, event.LeadName)
	if err != nil {
		newCount := lead.EmailRetries + 1
		p.leads.UpdateEmailStatus(ctx, lead.ID, model.SyncPending, newCount)

		delay := calculateBackoff(newCount)
		return true, delay, err
	}

	err = p.leads.UpdateEmailStatus(ctx, lead.ID, model.SyncCompleted, 0)
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
