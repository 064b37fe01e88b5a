package paddle

import (
	"context"
	"net/url"

	"paddle/internal/types"
)

// TransactionEntity is the kind of object transactions are listed for.
type TransactionEntity string

const (
	EntityUser         TransactionEntity = "user"
	EntitySubscription TransactionEntity = "subscription"
	EntityOrder        TransactionEntity = "order"
	EntityCheckout     TransactionEntity = "checkout"
	EntityProduct      TransactionEntity = "product"
)

// ListTransactionsParams selects the entity in the URL path; only Page is
// sent in the body.
type ListTransactionsParams struct {
	Entity   TransactionEntity `url:"-"`
	EntityID string            `url:"-"`
	// 15 results per page.
	Page *int `url:"page,omitempty"`
}

type TransactionSubscription struct {
	SubscriptionID int64                   `json:"subscription_id"`
	Status         types.SubscriptionState `json:"status"`
}

type TransactionUser struct {
	UserID           int64  `json:"user_id"`
	Email            string `json:"email"`
	MarketingConsent bool   `json:"marketing_consent"`
}

type Transaction struct {
	OrderID        string                   `json:"order_id"`
	CheckoutID     string                   `json:"checkout_id"`
	Amount         string                   `json:"amount"`
	Currency       types.Currency           `json:"currency"`
	CustomData     string                   `json:"custom_data"`
	Status         types.SubscriptionState  `json:"status"`
	CreatedAt      string                   `json:"created_at"`
	Passthrough    *string                  `json:"passthrough"`
	ProductID      int64                    `json:"product_id"`
	IsSubscription bool                     `json:"is_subscription"`
	IsOneOff       bool                     `json:"is_one_off"`
	Subscription   *TransactionSubscription `json:"subscription"`
	User           TransactionUser          `json:"user"`
	ReceiptURL     string                   `json:"receipt_url"`
}

func (c *Client) ListTransactions(ctx context.Context, p ListTransactionsParams) ([]Transaction, error) {
	path := "/" + url.PathEscape(string(p.Entity)) + "/" + url.PathEscape(p.EntityID) + "/transactions"
	return post[[]Transaction](ctx, c, path, p)
}

type RefundPaymentParams struct {
	// Subscription orders are hyphenated; one-time orders are integers.
	OrderID string `url:"order_id"`
	// Partial refund amount in the order currency. Full refund when nil.
	Amount *float64 `url:"amount,omitempty"`
	Reason *string  `url:"reason,omitempty"`
}

type RefundPaymentResponse struct {
	RefundRequestID int64 `json:"refund_request_id"`
}

func (c *Client) RefundPayment(ctx context.Context, p RefundPaymentParams) (RefundPaymentResponse, error) {
	return post[RefundPaymentResponse](ctx, c, "/payment/refund", p)
}
