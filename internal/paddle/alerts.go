package paddle

import (
	"context"
	"encoding/json"

	"paddle/internal/types"
	"paddle/internal/webhook"
)

type GetWebhookHistoryParams struct {
	Page *int `url:"page,omitempty"`
	// Defaults to 10 on the vendor side.
	AlertsPerPage *string `url:"alerts_per_page,omitempty"`
	// UTC bounds in YYYY-MM-DD HH:MM:SS. Head is the end, tail the start.
	QueryHead *string `url:"query_head,omitempty"`
	QueryTail *string `url:"query_tail,omitempty"`
}

// WebhookHistory is one past delivery. Fields is kept raw so numbers survive
// until Payload or Alert decodes them.
type WebhookHistory struct {
	ID        string          `json:"id"`
	AlertName string          `json:"alert_name"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
	Attempts  int             `json:"attempts"`
	Fields    json.RawMessage `json:"fields"`
}

// Payload returns the delivered fields. History entries do not always repeat
// alert_name inside fields, so the entry's own name fills the gap.
func (h WebhookHistory) Payload() (webhook.Payload, error) {
	if len(h.Fields) == 0 {
		return nil, types.NewAppError(types.ErrCodeWebhookAlertMalformed, "webhook history entry has no fields", nil)
	}
	p, err := webhook.PayloadFromJSON(h.Fields)
	if err != nil {
		return nil, err
	}
	if _, ok := p.AlertName(); !ok && h.AlertName != "" {
		p[webhook.FieldAlertName] = h.AlertName
	}
	return p, nil
}

// Alert decodes the delivered fields into their typed alert.
func (h WebhookHistory) Alert() (webhook.Alert, error) {
	p, err := h.Payload()
	if err != nil {
		return nil, err
	}
	return webhook.ParseAlert(p)
}

type WebhookHistoryResponse struct {
	CurrentPage   int              `json:"current_page"`
	TotalPages    int              `json:"total_pages"`
	AlertsPerPage int              `json:"alerts_per_page"`
	TotalAlerts   int              `json:"total_alerts"`
	QueryHead     string           `json:"query_head"`
	QueryTail     string           `json:"query_tail"`
	Data          []WebhookHistory `json:"data"`
}

func (c *Client) GetWebhookHistory(ctx context.Context, p GetWebhookHistoryParams) (WebhookHistoryResponse, error) {
	return post[WebhookHistoryResponse](ctx, c, "/alert/webhooks", p)
}
