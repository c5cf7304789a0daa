package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Reinvik/nexus-jarvis-suite/internal/domain/models"
)

// Client exposes the notification operations used by the application.
type Client interface {
	SendRunSummary(ctx context.Context, report models.RunReport) error
}

// WebhookClient is a resty-backed implementation of Client that posts run
// summaries to a generic JSON webhook.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewWebhookClient builds a webhook client for the provided URL.
func NewWebhookClient(webhookURL string) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second)

	return &WebhookClient{
		httpClient: restyClient,
		url:        webhookURL,
	}
}

// runSummaryPayload is the wire shape posted to the webhook.
type runSummaryPayload struct {
	Event  string           `json:"event"`
	Text   string           `json:"text"`
	Report models.RunReport `json:"report"`
}

// SendRunSummary posts the outcome of a completed run.
func (c *WebhookClient) SendRunSummary(ctx context.Context, report models.RunReport) error {
	payload := runSummaryPayload{
		Event:  "zonales.run.finished",
		Text:   summaryText(report),
		Report: report,
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("send run summary: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("notify webhook error: code=%d, body=%s", resp.StatusCode(), resp.String())
	}

	return nil
}

func summaryText(report models.RunReport) string {
	return fmt.Sprintf(
		"Run %s: %d files, %d new shortages, %d new overages, %d duplicates, %d shipments tracked",
		report.RunID,
		report.FilesProcessed,
		report.NewShortages,
		report.NewOverages,
		report.Duplicates,
		report.Shipments,
	)
}
