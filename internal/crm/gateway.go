package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/zma-auto/taxi-landing/internal/leads"
	"github.com/zma-auto/taxi-landing/internal/observability/metrics"
	"github.com/zma-auto/taxi-landing/pkg/logging"
)

var webhookTracer = otel.Tracer("zma.internal.crm.webhook")

// Submitter hands a lead to the CRM. The result reports only whether the
// outbound call completed; it never says whether the CRM accepted the lead.
type Submitter interface {
	SubmitLead(ctx context.Context, rec leads.Record) bool
}

// FailureSink receives payloads whose delivery hit a transport failure.
type FailureSink interface {
	Park(ctx context.Context, payload leads.Payload) error
}

// WebhookGateway posts leads as JSON to a fixed CRM webhook URL.
type WebhookGateway struct {
	endpoint   string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.LeadMetrics
	failures   FailureSink
	now        func() time.Time
}

// Option customises a WebhookGateway.
type Option func(*WebhookGateway)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *WebhookGateway) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *WebhookGateway) {
		if now != nil {
			g.now = now
		}
	}
}

// WithMetrics records submission outcomes and latency.
func WithMetrics(m *metrics.LeadMetrics) Option {
	return func(g *WebhookGateway) { g.metrics = m }
}

// WithFailureSink parks payloads that could not be delivered.
func WithFailureSink(sink FailureSink) Option {
	return func(g *WebhookGateway) { g.failures = sink }
}

// NewWebhookGateway builds a gateway for endpoint. The default client has no
// explicit timeout, so the transport defaults apply.
func NewWebhookGateway(endpoint string, logger *logging.Logger, opts ...Option) *WebhookGateway {
	if logger == nil {
		logger = logging.Default()
	}
	g := &WebhookGateway{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		logger:     logger.With("component", "crm"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ Submitter = (*WebhookGateway)(nil)

// SubmitLead stamps rec with the current time and posts it once. Transport
// failures are logged and reported as false; the response is not inspected.
func (g *WebhookGateway) SubmitLead(ctx context.Context, rec leads.Record) bool {
	payload := rec.Payload(g.now())
	start := time.Now()
	err := g.Deliver(ctx, payload)
	g.metrics.ObserveSubmission(payload.Source, err == nil, time.Since(start).Seconds())
	if err == nil {
		g.logger.Info("lead sent to crm", "source", payload.Source)
		return true
	}

	g.logger.Error("error sending lead to crm", "error", err, "source", payload.Source)
	if g.failures != nil {
		if perr := g.failures.Park(context.WithoutCancel(ctx), payload); perr != nil {
			g.logger.Error("failed to park lead for retry", "error", perr, "source", payload.Source)
		}
	}
	return false
}

// Deliver posts an already stamped payload. The returned error is non-nil
// only for transport failures.
func (g *WebhookGateway) Deliver(ctx context.Context, payload leads.Payload) error {
	ctx, span := webhookTracer.Start(ctx, "crm.webhook.submit")
	defer span.End()
	span.SetAttributes(attribute.String("lead.source", payload.Source))

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal")
		return fmt.Errorf("crm: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return nil
}
