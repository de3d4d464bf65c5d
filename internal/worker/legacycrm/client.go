// Package legacycrm talks to the company's legacy CRM over its HTTP ingest
// endpoint so assignments made here stay visible there.
package legacycrm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"salescrm.service/internal/ports/messaging"
)

// Client contract for mirroring lead assignments.
type Client interface {
	RecordAssignment(ctx context.Context, event messaging.LeadAssignedEvent) error
}

// HTTPClient API client using HTTP
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient new HTTPClient
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// RecordAssignment sends the assignment event to the legacy CRM.
func (c *HTTPClient) RecordAssignment(ctx context.Context, event messaging.LeadAssignedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal legacy crm payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create legacy crm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call legacy crm: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("legacy crm returned non-successful status code: %d", resp.StatusCode)
	}

	log.Ctx(ctx).Info().Str("lead_id", event.LeadID).Msg("Assignment recorded in legacy CRM")
	return nil
}
