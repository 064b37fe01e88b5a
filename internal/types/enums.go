package types

// SubscriptionState is the lifecycle state of a vendor subscription.
type SubscriptionState string

const (
	StateActive   SubscriptionState = "active"
	StateTrialing SubscriptionState = "trialing"
	StatePastDue  SubscriptionState = "past_due"
	StateDeleted  SubscriptionState = "deleted"
	StatePaused   SubscriptionState = "paused"
)

// PlanType is the billing interval unit of a subscription plan.
type PlanType string

const (
	PlanDay   PlanType = "day"
	PlanWeek  PlanType = "week"
	PlanMonth PlanType = "month"
	PlanYear  PlanType = "year"
)

// Currency is a balance currency accepted by the vendor.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyEUR Currency = "EUR"
)

// PaymentMethod identifies how a customer paid.
type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodPayPal       PaymentMethod = "paypal"
	PaymentMethodFree         PaymentMethod = "free"
	PaymentMethodApplePay     PaymentMethod = "apple-pay"
	PaymentMethodWireTransfer PaymentMethod = "wire-transfer"
)

// RefundType distinguishes full, tax-only and partial refunds.
type RefundType string

const (
	RefundFull    RefundType = "full"
	RefundVAT     RefundType = "vat"
	RefundPartial RefundType = "partial"
)

// DiscountType is how a coupon discount is expressed.
type DiscountType string

const (
	DiscountFlat       DiscountType = "flat"
	DiscountPercentage DiscountType = "percentage"
)
