// Package connectors holds the downstream effects: webhook record delivery
// and the recent-print-jobs lookup. Connector failures never interrupt a
// conversational turn; they are reported and the turn completes.
package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"chat-concierge/internal/common/errors"
	commonhttp "chat-concierge/internal/common/http"
	"chat-concierge/internal/common/logger"
	"chat-concierge/internal/common/metrics"

	"github.com/google/uuid"
)

// WebhookSubmitter posts structured records to automation endpoints.
type WebhookSubmitter struct {
	client *commonhttp.Client
	logger logger.Logger
}

func NewWebhookSubmitter(timeout time.Duration, log logger.Logger) *WebhookSubmitter {
	return &WebhookSubmitter{
		client: commonhttp.NewClient(timeout),
		logger: log.With(map[string]interface{}{"component": "webhook"}),
	}
}

// Submit delivers one record as a JSON POST. The response body is consumed
// for logging only; any non-2xx status is a delivery error for the caller to
// record and move past.
func (w *WebhookSubmitter) Submit(ctx context.Context, endpoint string, record map[string]interface{}) error {
	deliveryID := uuid.New().String()
	log := w.logger.With(map[string]interface{}{
		"deliveryId": deliveryID,
		"endpoint":   endpoint,
	})

	body, err := json.Marshal(record)
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues(endpoint, "error").Inc()
		return errors.NewWebhookDeliveryError(endpoint, fmt.Errorf("marshal record: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues(endpoint, "error").Inc()
		return errors.NewWebhookDeliveryError(endpoint, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues(endpoint, "error").Inc()
		return errors.NewWebhookDeliveryError(endpoint, err)
	}
	defer resp.Body.Close()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	log.Info("webhook response", map[string]interface{}{
		"statusCode": resp.StatusCode,
		"body":       string(snippet),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.WebhookDeliveries.WithLabelValues(endpoint, "rejected").Inc()
		return errors.NewWebhookDeliveryError(endpoint, fmt.Errorf("status %d", resp.StatusCode))
	}

	metrics.WebhookDeliveries.WithLabelValues(endpoint, "delivered").Inc()
	return nil
}
