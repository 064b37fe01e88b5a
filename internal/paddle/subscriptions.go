package paddle

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"paddle/internal/types"
)

// ---------------------------------------------------------------------------
// Plans
// ---------------------------------------------------------------------------

type ListPlansParams struct {
	Plan *int64 `url:"plan,omitempty"`
}

// Plan prices are keyed by currency code. The vendor sends them as either
// strings or numbers.
type Plan struct {
	ID             int64                  `json:"id"`
	Name           string                 `json:"name"`
	BillingType    types.PlanType         `json:"billing_type"`
	BillingPeriod  int                    `json:"billing_period"`
	InitialPrice   map[string]json.Number `json:"initial_price"`
	RecurringPrice map[string]json.Number `json:"recurring_price"`
	TrialDays      int                    `json:"trial_days"`
}

type CreatePlanParams struct {
	PlanName string `url:"plan_name"`
	// Number of PlanType units per billing interval.
	PlanLength        string         `url:"plan_length"`
	PlanType          types.PlanType `url:"plan_type"`
	PlanTrialDays     *int           `url:"plan_trial_days,omitempty"`
	MainCurrencyCode  *string        `url:"main_currency_code,omitempty"`
	RecurringPriceUSD *string        `url:"recurring_price_usd,omitempty"`
	RecurringPriceGBP *string        `url:"recurring_price_gbp,omitempty"`
	RecurringPriceEUR *string        `url:"recurring_price_eur,omitempty"`
}

type CreatePlanResponse struct {
	ProductID int64 `json:"product_id"`
}

func (c *Client) ListPlans(ctx context.Context, p ListPlansParams) ([]Plan, error) {
	return post[[]Plan](ctx, c, "/subscription/plans", p)
}

func (c *Client) CreatePlan(ctx context.Context, p CreatePlanParams) (CreatePlanResponse, error) {
	return post[CreatePlanResponse](ctx, c, "/subscription/plans_create", p)
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type ListUsersParams struct {
	SubscriptionID *int64                   `url:"subscription_id,omitempty"`
	PlanID         *int64                   `url:"plan_id,omitempty"`
	State          *types.SubscriptionState `url:"state,omitempty"`
	Page           *int                     `url:"page,omitempty"`
	ResultsPerPage *int                     `url:"results_per_page,omitempty"`
}

type PaymentSummary struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Date     string  `json:"date"`
}

// CardType is the card brand reported for card payment methods.
type CardType string

const (
	CardMaster          CardType = "master"
	CardVisa            CardType = "visa"
	CardAmericanExpress CardType = "american_express"
	CardDiscover        CardType = "discover"
	CardJCB             CardType = "jcb"
	CardMaestro         CardType = "maestro"
	CardDinersClub      CardType = "diners_club"
	CardUnionPay        CardType = "unionpay"
)

// PaymentInformation is the payment method on file for a subscriber,
// discriminated by payment_method: *CardPayment, *PayPalPayment, or
// *OtherPayment for methods this client does not model.
type PaymentInformation interface {
	Method() types.PaymentMethod
	isPaymentInformation()
}

type CardPayment struct {
	PaymentMethod  types.PaymentMethod `json:"payment_method"`
	CardType       CardType            `json:"card_type"`
	LastFourDigits string              `json:"last_four_digits"`
	ExpiryDate     string              `json:"expiry_date"`
}

type PayPalPayment struct {
	PaymentMethod types.PaymentMethod `json:"payment_method"`
}

type OtherPayment struct {
	PaymentMethod types.PaymentMethod `json:"payment_method"`
}

func (p *CardPayment) Method() types.PaymentMethod   { return types.PaymentMethodCard }
func (p *PayPalPayment) Method() types.PaymentMethod { return types.PaymentMethodPayPal }
func (p *OtherPayment) Method() types.PaymentMethod  { return p.PaymentMethod }

func (*CardPayment) isPaymentInformation()   {}
func (*PayPalPayment) isPaymentInformation() {}
func (*OtherPayment) isPaymentInformation()  {}

func decodePaymentInformation(raw json.RawMessage) (PaymentInformation, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var head struct {
		PaymentMethod types.PaymentMethod `json:"payment_method"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("payment_information: %w", err)
	}

	var info PaymentInformation
	switch head.PaymentMethod {
	case types.PaymentMethodCard:
		info = &CardPayment{}
	case types.PaymentMethodPayPal:
		info = &PayPalPayment{}
	default:
		info = &OtherPayment{}
	}
	if err := json.Unmarshal(raw, info); err != nil {
		return nil, fmt.Errorf("payment_information: %w", err)
	}
	return info, nil
}

type User struct {
	SubscriptionID     int64                   `json:"subscription_id"`
	PlanID             int64                   `json:"plan_id"`
	UserID             int64                   `json:"user_id"`
	UserEmail          string                  `json:"user_email"`
	MarketingConsent   bool                    `json:"marketing_consent"`
	CustomData         string                  `json:"custom_data"`
	State              types.SubscriptionState `json:"state"`
	SignupDate         string                  `json:"signup_date"`
	LastPayment        *PaymentSummary         `json:"last_payment"`
	NextPayment        *PaymentSummary         `json:"next_payment"`
	UpdateURL          string                  `json:"update_url"`
	CancelURL          string                  `json:"cancel_url"`
	PausedAt           string                  `json:"paused_at,omitempty"`
	PausedFrom         string                  `json:"paused_from,omitempty"`
	PaymentInformation PaymentInformation      `json:"payment_information"`
}

// UnmarshalJSON resolves the payment_information union.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	aux := struct {
		*plain
		PaymentInformation json.RawMessage `json:"payment_information"`
	}{plain: (*plain)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	info, err := decodePaymentInformation(aux.PaymentInformation)
	if err != nil {
		return err
	}
	u.PaymentInformation = info
	return nil
}

type UpdateUserParams struct {
	SubscriptionID int64 `url:"subscription_id"`
	// Required by the vendor even when unchanged; 1 for non-quantity plans.
	Quantity *int `url:"quantity,omitempty"`
	// Required with RecurringPrice; must match the subscription currency.
	Currency        *types.Currency `url:"currency,omitempty"`
	RecurringPrice  *float64        `url:"recurring_price,omitempty"`
	BillImmediately *bool           `url:"bill_immediately,omitempty"`
	PlanID          *int64          `url:"plan_id,omitempty"`
	Prorate         *bool           `url:"prorate,omitempty"`
	KeepModifiers   *bool           `url:"keep_modifiers,omitempty"`
	Passthrough     *string         `url:"passthrough,omitempty"`
	Pause           *bool           `url:"pause,omitempty"`
}

type UpdateUserResponse struct {
	SubscriptionID int64          `json:"subscription_id"`
	UserID         int64          `json:"user_id"`
	PlanID         int64          `json:"plan_id"`
	NextPayment    PaymentSummary `json:"next_payment"`
}

type CancelUserParams struct {
	SubscriptionID int64 `url:"subscription_id"`
}

func (c *Client) ListUsers(ctx context.Context, p ListUsersParams) ([]User, error) {
	return post[[]User](ctx, c, "/subscription/users", p)
}

func (c *Client) UpdateUser(ctx context.Context, p UpdateUserParams) (UpdateUserResponse, error) {
	return post[UpdateUserResponse](ctx, c, "/subscription/users/update", p)
}

func (c *Client) CancelUser(ctx context.Context, p CancelUserParams) error {
	return postEmpty(ctx, c, "/subscription/users_cancel", p)
}

// ---------------------------------------------------------------------------
// Modifiers
// ---------------------------------------------------------------------------

type ListModifiersParams struct {
	SubscriptionID *string `url:"subscription_id,omitempty"`
	PlanID         *string `url:"plan_id,omitempty"`
}

type Modifier struct {
	ModifierID     int64  `json:"modifier_id"`
	SubscriptionID int64  `json:"subscription_id"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	IsRecurring    bool   `json:"is_recurring"`
	Description    string `json:"description,omitempty"`
}

type CreateModifierParams struct {
	SubscriptionID int64 `url:"subscription_id"`
	// The vendor retains modifiers by default.
	ModifierRecurring   *bool   `url:"modifier_recurring,omitempty"`
	ModifierAmount      float64 `url:"modifier_amount"`
	ModifierDescription *string `url:"modifier_description,omitempty"`
}

type CreateModifierResponse struct {
	SubscriptionID int64 `json:"subscription_id"`
	ModifierID     int64 `json:"modifier_id"`
}

type DeleteModifierParams struct {
	ModifierID int64 `url:"modifier_id"`
}

func (c *Client) ListModifiers(ctx context.Context, p ListModifiersParams) ([]Modifier, error) {
	return post[[]Modifier](ctx, c, "/subscription/modifiers", p)
}

func (c *Client) CreateModifier(ctx context.Context, p CreateModifierParams) (CreateModifierResponse, error) {
	return post[CreateModifierResponse](ctx, c, "/subscription/modifiers/create", p)
}

func (c *Client) DeleteModifier(ctx context.Context, p DeleteModifierParams) error {
	return postEmpty(ctx, c, "/subscription/modifiers/delete", p)
}

// ---------------------------------------------------------------------------
// Payments and one-off charges
// ---------------------------------------------------------------------------

type ListPaymentsParams struct {
	SubscriptionID *int64 `url:"subscription_id,omitempty"`
	Plan           *int64 `url:"plan,omitempty"`
	IsPaid         *bool  `url:"is_paid,omitempty,int"`
	// YYYY-MM-DD bounds.
	From           *string `url:"from,omitempty"`
	To             *string `url:"to,omitempty"`
	IsOneOffCharge *bool   `url:"is_one_off_charge,omitempty,int"`
}

type Payment struct {
	ID             int64   `json:"id"`
	SubscriptionID int64   `json:"subscription_id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	PayoutDate     string  `json:"payout_date"`
	IsPaid         int     `json:"is_paid"`
	IsOneOffCharge int     `json:"is_one_off_charge"`
	ReceiptURL     string  `json:"receipt_url"`
}

type ReschedulePaymentParams struct {
	PaymentID int64 `url:"payment_id"`
	// YYYY-MM-DD.
	Date string `url:"date"`
}

// CreateOneOffChargeParams puts SubscriptionID in the URL path only.
type CreateOneOffChargeParams struct {
	SubscriptionID int64   `url:"-"`
	Amount         float64 `url:"amount"`
	// Shown to the buyer as an invoice line item.
	ChargeName string `url:"charge_name"`
}

// ChargeStatus is the state of a one-off charge.
type ChargeStatus string

const (
	ChargeSuccess ChargeStatus = "success"
	ChargePending ChargeStatus = "pending"
)

type CreateOneOffChargeResponse struct {
	InvoiceID      int64        `json:"invoice_id"`
	SubscriptionID int64        `json:"subscription_id"`
	Amount         string       `json:"amount"`
	Currency       string       `json:"currency"`
	PaymentDate    string       `json:"payment_date"`
	ReceiptURL     string       `json:"receipt_url"`
	Status         ChargeStatus `json:"status"`
}

func (c *Client) ListPayments(ctx context.Context, p ListPaymentsParams) ([]Payment, error) {
	return post[[]Payment](ctx, c, "/subscription/payments", p)
}

func (c *Client) ReschedulePayment(ctx context.Context, p ReschedulePaymentParams) error {
	return postEmpty(ctx, c, "/subscription/payments_reschedule", p)
}

func (c *Client) CreateOneOffCharge(ctx context.Context, p CreateOneOffChargeParams) (CreateOneOffChargeResponse, error) {
	path := "/subscription/" + strconv.FormatInt(p.SubscriptionID, 10) + "/charge"
	return post[CreateOneOffChargeResponse](ctx, c, path, p)
}
