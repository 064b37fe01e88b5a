package paddle

import (
	"context"

	"paddle/internal/types"
)

// CouponType limits where a coupon applies.
type CouponType string

const (
	CouponTypeProduct  CouponType = "product"
	CouponTypeCheckout CouponType = "checkout"
)

// ---------------------------------------------------------------------------
// Coupons
// ---------------------------------------------------------------------------

type ListCouponsParams struct {
	ProductID int64 `url:"product_id"`
}

type Coupon struct {
	Coupon           string             `json:"coupon"`
	Description      string             `json:"description"`
	DiscountType     types.DiscountType `json:"discount_type"`
	DiscountAmount   float64            `json:"discount_amount"`
	DiscountCurrency string             `json:"discount_currency"`
	AllowedUses      int64              `json:"allowed_uses"`
	TimesUsed        int64              `json:"times_used"`
	IsRecurring      bool               `json:"is_recurring"`
	Expires          string             `json:"expires"`
}

type CreateCouponParams struct {
	// Randomly generated when empty.
	CouponCode *string `url:"coupon_code,omitempty"`
	// Not valid together with CouponCode.
	CouponPrefix *string    `url:"coupon_prefix,omitempty"`
	NumCoupons   *int       `url:"num_coupons,omitempty"`
	Description  *string    `url:"description,omitempty"`
	CouponType   CouponType `url:"coupon_type"`
	// Comma-separated. Required for product coupons.
	ProductIDs     *string            `url:"product_ids,omitempty"`
	DiscountType   types.DiscountType `url:"discount_type"`
	DiscountAmount float64            `url:"discount_amount"`
	Currency       *types.Currency    `url:"currency,omitempty"`
	AllowedUses    *int64             `url:"allowed_uses,omitempty"`
	// YYYY-MM-DD; the coupon expires at 00:00:00 UTC that day.
	Expires   *string `url:"expires,omitempty"`
	Recurring *bool   `url:"recurring,omitempty,int"`
	Group     *string `url:"group,omitempty"`
}

type CreateCouponResponse struct {
	CouponCodes []string `json:"coupon_codes"`
}

type DeleteCouponParams struct {
	CouponCode string `url:"coupon_code"`
	ProductID  *int64 `url:"product_id,omitempty"`
}

// UpdateCouponParams identifies coupons by CouponCode or Group, not both.
type UpdateCouponParams struct {
	CouponCode     *string         `url:"coupon_code,omitempty"`
	Group          *string         `url:"group,omitempty"`
	NewCouponCode  *string         `url:"new_coupon_code,omitempty"`
	NewGroup       *string         `url:"new_group,omitempty"`
	ProductIDs     *string         `url:"product_ids,omitempty"`
	Expires        *string         `url:"expires,omitempty"`
	AllowedUses    *int64          `url:"allowed_uses,omitempty"`
	Currency       *types.Currency `url:"currency,omitempty"`
	DiscountAmount *float64        `url:"discount_amount,omitempty"`
	Recurring      *bool           `url:"recurring,omitempty,int"`
}

type UpdateCouponResponse struct {
	Updated int `json:"updated"`
}

func (c *Client) ListCoupons(ctx context.Context, p ListCouponsParams) ([]Coupon, error) {
	return post[[]Coupon](ctx, c, "/product/list_coupons", p)
}

func (c *Client) CreateCoupon(ctx context.Context, p CreateCouponParams) (CreateCouponResponse, error) {
	return post[CreateCouponResponse](ctx, c, "/product/create_coupon", p)
}

func (c *Client) DeleteCoupon(ctx context.Context, p DeleteCouponParams) error {
	return postEmpty(ctx, c, "/product/delete_coupon", p)
}

func (c *Client) UpdateCoupon(ctx context.Context, p UpdateCouponParams) (UpdateCouponResponse, error) {
	return post[UpdateCouponResponse](ctx, c, "/product/update_coupon", p)
}

// ---------------------------------------------------------------------------
// Products, licenses and pay links
// ---------------------------------------------------------------------------

type Product struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	BasePrice   float64          `json:"base_price"`
	SalePrice   *float64         `json:"sale_price"`
	Screenshots []map[string]any `json:"screenshots"`
	Icon        string           `json:"icon"`
	Currency    types.Currency   `json:"currency"`
}

type ListProductsResponse struct {
	Total    int       `json:"total"`
	Count    int       `json:"count"`
	Products []Product `json:"products"`
}

// ListProducts takes no parameters; only credentials are sent.
func (c *Client) ListProducts(ctx context.Context) (ListProductsResponse, error) {
	return post[ListProductsResponse](ctx, c, "/product/get_products", nil)
}

type GenerateLicenseParams struct {
	ProductID   int64 `url:"product_id"`
	AllowedUses int64 `url:"allowed_uses"`
	// YYYY-MM-DD. Empty means the license never expires.
	ExpiresAt *string `url:"expires_at,omitempty"`
}

type License struct {
	LicenseCode string `json:"license_code"`
	ExpiresAt   string `json:"expires_at"`
}

func (c *Client) GenerateLicense(ctx context.Context, p GenerateLicenseParams) (License, error) {
	return post[License](ctx, c, "/product/generate_license", p)
}

// GeneratePayLinkParams describes a custom checkout. Either ProductID is set,
// or Title, WebhookURL and Prices describe a custom one-off product.
type GeneratePayLinkParams struct {
	ProductID       *int64  `url:"product_id,omitempty"`
	Title           *string `url:"title,omitempty"`
	WebhookURL      *string `url:"webhook_url,omitempty"`
	Prices          *string `url:"prices,omitempty"`
	RecurringPrices *string `url:"recurring_prices,omitempty"`
	TrialDays       *int    `url:"trial_days,omitempty"`
	CustomMessage   *string `url:"custom_message,omitempty"`
	CouponCode      *string `url:"coupon_code,omitempty"`
	Discountable    *bool   `url:"discountable,omitempty,int"`
	ImageURL        *string `url:"image_url,omitempty"`
	// May contain {checkout_hash}, which the vendor fills in.
	ReturnURL               *string `url:"return_url,omitempty"`
	QuantityVariable        *bool   `url:"quantity_variable,omitempty,int"`
	Quantity                *int    `url:"quantity,omitempty"`
	Expires                 *string `url:"expires,omitempty"`
	Affiliates              *string `url:"affiliates,omitempty"`
	RecurringAffiliateLimit *int    `url:"recurring_affiliate_limit,omitempty"`
	MarketingConsent        *bool   `url:"marketing_consent,omitempty,int"`
	CustomerEmail           *string `url:"customer_email,omitempty"`
	CustomerCountry         *string `url:"customer_country,omitempty"`
	CustomerPostcode        *string `url:"customer_postcode,omitempty"`
	IsRecoverable           *bool   `url:"is_recoverable,omitempty,int"`
	Passthrough             *string `url:"passthrough,omitempty"`
	VATNumber               *string `url:"vat_number,omitempty"`
	VATCompanyName          *string `url:"vat_company_name,omitempty"`
	VATStreet               *string `url:"vat_street,omitempty"`
	VATCity                 *string `url:"vat_city,omitempty"`
	VATState                *string `url:"vat_state,omitempty"`
	VATCountry              *string `url:"vat_country,omitempty"`
	VATPostcode             *string `url:"vat_postcode,omitempty"`
}

type GeneratePayLinkResponse struct {
	URL string `json:"url"`
}

func (c *Client) GeneratePayLink(ctx context.Context, p GeneratePayLinkParams) (GeneratePayLinkResponse, error) {
	return post[GeneratePayLinkResponse](ctx, c, "/product/generate_pay_link", p)
}
