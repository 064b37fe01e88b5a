package webhook

import "paddle/internal/types"

// AlertName identifies a webhook event type.
type AlertName string

const (
	AlertSubscriptionCreated          AlertName = "subscription_created"
	AlertSubscriptionUpdated          AlertName = "subscription_updated"
	AlertSubscriptionCancelled        AlertName = "subscription_cancelled"
	AlertSubscriptionPaymentSucceeded AlertName = "subscription_payment_succeeded"
	AlertSubscriptionPaymentFailed    AlertName = "subscription_payment_failed"
	AlertSubscriptionPaymentRefunded  AlertName = "subscription_payment_refunded"
	AlertPaymentSucceeded             AlertName = "payment_succeeded"
	AlertPaymentRefunded              AlertName = "payment_refunded"
	AlertLockerProcessed              AlertName = "locker_processed"
	AlertPaymentDisputeCreated        AlertName = "payment_dispute_created"
	AlertPaymentDisputeClosed         AlertName = "payment_dispute_closed"
	AlertHighRiskTransactionCreated   AlertName = "high_risk_transaction_created"
	AlertHighRiskTransactionUpdated   AlertName = "high_risk_transaction_updated"
	AlertTransferCreated              AlertName = "transfer_created"
	AlertTransferPaid                 AlertName = "transfer_paid"
	AlertNewAudienceMember            AlertName = "new_audience_member"
	AlertUpdateAudienceMember         AlertName = "update_audience_member"
	AlertInvoicePaid                  AlertName = "invoice_paid"
	AlertInvoiceSent                  AlertName = "invoice_sent"
	AlertInvoiceOverdue               AlertName = "invoice_overdue"
)

// Alert is one of the typed webhook events below. The set is closed:
// only types in this package implement it.
type Alert interface {
	Name() AlertName
	isAlert()
}

// AlertBase holds the fields shared by every alert except locker_processed.
type AlertBase struct {
	AlertID    string `json:"alert_id"`
	PSignature string `json:"p_signature"`
	EventTime  string `json:"event_time"`
}

type SubscriptionCreated struct {
	AlertBase
	CancelURL          string                  `json:"cancel_url"`
	CheckoutID         string                  `json:"checkout_id"`
	Currency           string                  `json:"currency"`
	CustomData         string                  `json:"custom_data"`
	Email              string                  `json:"email"`
	MarketingConsent   bool                    `json:"marketing_consent"`
	NextBillDate       string                  `json:"next_bill_date"`
	Passthrough        string                  `json:"passthrough"`
	Quantity           string                  `json:"quantity"`
	Source             string                  `json:"source"`
	Status             types.SubscriptionState `json:"status"`
	SubscriptionID     string                  `json:"subscription_id"`
	SubscriptionPlanID string                  `json:"subscription_plan_id"`
	UnitPrice          string                  `json:"unit_price"`
	UserID             string                  `json:"user_id"`
	UpdateURL          string                  `json:"update_url"`
}

type SubscriptionUpdated struct {
	AlertBase
	CancelURL             string                  `json:"cancel_url"`
	CheckoutID            string                  `json:"checkout_id"`
	Email                 string                  `json:"email"`
	MarketingConsent      bool                    `json:"marketing_consent"`
	NewPrice              string                  `json:"new_price"`
	NewQuantity           string                  `json:"new_quantity"`
	NewUnitPrice          string                  `json:"new_unit_price"`
	NextBillDate          string                  `json:"next_bill_date"`
	OldPrice              string                  `json:"old_price"`
	OldQuantity           string                  `json:"old_quantity"`
	OldUnitPrice          string                  `json:"old_unit_price"`
	Currency              string                  `json:"currency"`
	CustomData            string                  `json:"custom_data"`
	Passthrough           string                  `json:"passthrough"`
	Status                types.SubscriptionState `json:"status"`
	SubscriptionID        string                  `json:"subscription_id"`
	SubscriptionPlanID    string                  `json:"subscription_plan_id"`
	UserID                string                  `json:"user_id"`
	OldNextBillDate       string                  `json:"old_next_bill_date"`
	OldStatus             types.SubscriptionState `json:"old_status"`
	OldSubscriptionPlanID string                  `json:"old_subscription_plan_id"`
	PausedAt              string                  `json:"paused_at,omitempty"`
	PausedFrom            string                  `json:"paused_from,omitempty"`
	PausedReason          string                  `json:"paused_reason,omitempty"`
	UpdateURL             string                  `json:"update_url"`
}

type SubscriptionCancelled struct {
	AlertBase
	CancellationEffectiveDate string                  `json:"cancellation_effective_date"`
	CheckoutID                string                  `json:"checkout_id"`
	Currency                  string                  `json:"currency"`
	Email                     string                  `json:"email"`
	MarketingConsent          bool                    `json:"marketing_consent"`
	Passthrough               string                  `json:"passthrough"`
	Quantity                  string                  `json:"quantity"`
	Status                    types.SubscriptionState `json:"status"`
	SubscriptionID            string                  `json:"subscription_id"`
	SubscriptionPlanID        string                  `json:"subscription_plan_id"`
	UnitPrice                 string                  `json:"unit_price"`
	UserID                    string                  `json:"user_id"`
}

type SubscriptionPaymentSucceeded struct {
	AlertBase
	BalanceCurrency       string                  `json:"balance_currency"`
	BalanceEarnings       string                  `json:"balance_earnings"`
	BalanceFee            string                  `json:"balance_fee"`
	BalanceGross          string                  `json:"balance_gross"`
	BalanceTax            string                  `json:"balance_tax"`
	CheckoutID            string                  `json:"checkout_id"`
	Country               string                  `json:"country"`
	Coupon                string                  `json:"coupon"`
	Currency              string                  `json:"currency"`
	CustomData            string                  `json:"custom_data"`
	CustomerName          string                  `json:"customer_name"`
	Earnings              string                  `json:"earnings"`
	Email                 string                  `json:"email"`
	Fee                   string                  `json:"fee"`
	InitialPayment        bool                    `json:"initial_payment"`
	Instalments           string                  `json:"instalments"`
	MarketingConsent      bool                    `json:"marketing_consent"`
	NextBillDate          string                  `json:"next_bill_date"`
	NextPaymentAmount     string                  `json:"next_payment_amount"`
	OrderID               string                  `json:"order_id"`
	Passthrough           string                  `json:"passthrough"`
	PaymentMethod         types.PaymentMethod     `json:"payment_method"`
	PaymentTax            string                  `json:"payment_tax"`
	PlanName              string                  `json:"plan_name"`
	Quantity              string                  `json:"quantity"`
	ReceiptURL            string                  `json:"receipt_url"`
	SaleGross             string                  `json:"sale_gross"`
	Status                types.SubscriptionState `json:"status"`
	SubscriptionID        string                  `json:"subscription_id"`
	SubscriptionPaymentID string                  `json:"subscription_payment_id"`
	SubscriptionPlanID    string                  `json:"subscription_plan_id"`
	UnitPrice             string                  `json:"unit_price"`
	UserID                string                  `json:"user_id"`
}

type SubscriptionPaymentFailed struct {
	AlertBase
	Amount                string                  `json:"amount"`
	CancelURL             string                  `json:"cancel_url"`
	CheckoutID            string                  `json:"checkout_id"`
	Currency              string                  `json:"currency"`
	CustomData            string                  `json:"custom_data"`
	Email                 string                  `json:"email"`
	MarketingConsent      bool                    `json:"marketing_consent"`
	NextRetryDate         string                  `json:"next_retry_date"`
	Passthrough           string                  `json:"passthrough"`
	Quantity              string                  `json:"quantity"`
	Status                types.SubscriptionState `json:"status"`
	SubscriptionID        string                  `json:"subscription_id"`
	SubscriptionPaymentID string                  `json:"subscription_payment_id"`
	SubscriptionPlanID    string                  `json:"subscription_plan_id"`
	UnitPrice             string                  `json:"unit_price"`
	UpdateURL             string                  `json:"update_url"`
	Instalments           string                  `json:"instalments"`
	OrderID               string                  `json:"order_id"`
	UserID                string                  `json:"user_id"`
	AttemptNumber         string                  `json:"attempt_number"`
}

// refundFields is shared by the two refund alerts.
type refundFields struct {
	Amount                  string           `json:"amount"`
	BalanceCurrency         string           `json:"balance_currency"`
	BalanceEarningsDecrease string           `json:"balance_earnings_decrease"`
	BalanceFeeRefund        string           `json:"balance_fee_refund"`
	BalanceGrossRefund      string           `json:"balance_gross_refund"`
	BalanceTaxRefund        string           `json:"balance_tax_refund"`
	CheckoutID              string           `json:"checkout_id"`
	Currency                string           `json:"currency"`
	CustomData              string           `json:"custom_data"`
	EarningsDecrease        string           `json:"earnings_decrease"`
	Email                   string           `json:"email"`
	FeeRefund               string           `json:"fee_refund"`
	GrossRefund             string           `json:"gross_refund"`
	MarketingConsent        bool             `json:"marketing_consent"`
	OrderID                 string           `json:"order_id"`
	Passthrough             string           `json:"passthrough"`
	Quantity                string           `json:"quantity"`
	RefundReason            string           `json:"refund_reason"`
	RefundType              types.RefundType `json:"refund_type"`
	TaxRefund               string           `json:"tax_refund"`
}

type SubscriptionPaymentRefunded struct {
	AlertBase
	refundFields
	InitialPayment        bool                    `json:"initial_payment"`
	Instalments           string                  `json:"instalments"`
	Status                types.SubscriptionState `json:"status"`
	SubscriptionID        string                  `json:"subscription_id"`
	SubscriptionPaymentID string                  `json:"subscription_payment_id"`
	SubscriptionPlanID    string                  `json:"subscription_plan_id"`
	UnitPrice             string                  `json:"unit_price"`
	UserID                string                  `json:"user_id"`
}

type PaymentSucceeded struct {
	AlertBase
	BalanceCurrency   string              `json:"balance_currency"`
	BalanceEarnings   string              `json:"balance_earnings"`
	BalanceFee        string              `json:"balance_fee"`
	BalanceGross      string              `json:"balance_gross"`
	BalanceTax        string              `json:"balance_tax"`
	CheckoutID        string              `json:"checkout_id"`
	Country           string              `json:"country"`
	Coupon            string              `json:"coupon"`
	Currency          string              `json:"currency"`
	CustomData        string              `json:"custom_data"`
	CustomerName      string              `json:"customer_name"`
	Earnings          string              `json:"earnings"`
	Email             string              `json:"email"`
	Fee               string              `json:"fee"`
	IP                string              `json:"ip"`
	MarketingConsent  bool                `json:"marketing_consent"`
	OrderID           string              `json:"order_id"`
	Passthrough       string              `json:"passthrough"`
	PaymentMethod     types.PaymentMethod `json:"payment_method"`
	PaymentTax        string              `json:"payment_tax"`
	ProductID         string              `json:"product_id"`
	ProductName       string              `json:"product_name"`
	Quantity          string              `json:"quantity"`
	ReceiptURL        string              `json:"receipt_url"`
	SaleGross         string              `json:"sale_gross"`
	UsedPriceOverride string              `json:"used_price_override"`
}

type PaymentRefunded struct {
	AlertBase
	refundFields
}

// LockerProcessed is the only alert without the shared base fields.
type LockerProcessed struct {
	CheckoutID       string `json:"checkout_id"`
	CheckoutRecovery bool   `json:"checkout_recovery"`
	Coupon           string `json:"coupon"`
	CustomData       string `json:"custom_data"`
	Download         string `json:"download"`
	Email            string `json:"email"`
	Instructions     string `json:"instructions"`
	License          string `json:"license"`
	MarketingConsent bool   `json:"marketing_consent"`
	OrderID          string `json:"order_id"`
	ProductID        string `json:"product_id"`
	Quantity         string `json:"quantity"`
	Source           string `json:"source"`
}

type disputeFields struct {
	Amount           string `json:"amount"`
	BalanceAmount    string `json:"balance_amount"`
	BalanceCurrency  string `json:"balance_currency"`
	BalanceFee       string `json:"balance_fee"`
	CheckoutID       string `json:"checkout_id"`
	Currency         string `json:"currency"`
	Email            string `json:"email"`
	FeeUSD           string `json:"fee_usd"`
	MarketingConsent bool   `json:"marketing_consent"`
	OrderID          string `json:"order_id"`
	Passthrough      string `json:"passthrough"`
	Status           string `json:"status"`
}

type PaymentDisputeCreated struct {
	AlertBase
	disputeFields
}

type PaymentDisputeClosed struct {
	AlertBase
	disputeFields
}

type highRiskFields struct {
	CaseID               string `json:"case_id"`
	CheckoutID           string `json:"checkout_id"`
	CreatedAt            string `json:"created_at"`
	CustomData           string `json:"custom_data"`
	CustomerEmailAddress string `json:"customer_email_address"`
	CustomerUserID       string `json:"customer_user_id"`
	MarketingConsent     bool   `json:"marketing_consent"`
	Passthrough          string `json:"passthrough"`
	ProductID            string `json:"product_id"`
	RiskScore            string `json:"risk_score"`
	// pending on creation; accepted or rejected on update.
	Status string `json:"status"`
}

type HighRiskTransactionCreated struct {
	AlertBase
	highRiskFields
}

type HighRiskTransactionUpdated struct {
	AlertBase
	highRiskFields
	OrderID string `json:"order_id"`
}

type transferFields struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	PayoutID string `json:"payout_id"`
	Status   string `json:"status"`
}

type TransferCreated struct {
	AlertBase
	transferFields
}

type TransferPaid struct {
	AlertBase
	transferFields
}

type NewAudienceMember struct {
	AlertBase
	CreatedAt        string `json:"created_at"`
	Email            string `json:"email"`
	MarketingConsent bool   `json:"marketing_consent"`
	Products         string `json:"products"`
	Source           string `json:"source"`
	// Deprecated: use MarketingConsent.
	Subscribed string `json:"subscribed"`
	UserID     string `json:"user_id"`
}

type UpdateAudienceMember struct {
	AlertBase
	NewCustomerEmail    string `json:"new_customer_email"`
	NewMarketingConsent bool   `json:"new_marketing_consent"`
	OldCustomerEmail    string `json:"old_customer_email"`
	OldMarketingConsent bool   `json:"old_marketing_consent"`
	Products            string `json:"products"`
	Source              string `json:"source"`
	UserID              string `json:"user_id"`
}

// invoiceFields is common to the three invoice alerts.
type invoiceFields struct {
	PaymentID                    string `json:"payment_id"`
	Amount                       string `json:"amount"`
	SaleGross                    string `json:"sale_gross"`
	TermDays                     string `json:"term_days"`
	Status                       string `json:"status"`
	PurchaseOrderNumber          string `json:"purchase_order_number"`
	InvoicedAt                   string `json:"invoiced_at"`
	Currency                     string `json:"currency"`
	ProductID                    string `json:"product_id"`
	ProductName                  string `json:"product_name"`
	ProductAdditionalInformation string `json:"product_additional_information"`
	CustomerName                 string `json:"customer_name"`
	Email                        string `json:"email"`
	CustomerVATNumber            string `json:"customer_vat_number"`
	CustomerCompanyNumber        string `json:"customer_company_number"`
	CustomerAddress              string `json:"customer_address"`
	CustomerCity                 string `json:"customer_city"`
	CustomerState                string `json:"customer_state"`
	CustomerZipcode              string `json:"customer_zipcode"`
	County                       string `json:"county"`
	ContractID                   string `json:"contract_id"`
	ContractStartDate            string `json:"contract_start_date"`
	Passthrough                  string `json:"passthrough"`
	DateCreated                  string `json:"date_created"`
	BalanceCurrency              string `json:"balance_currency"`
	PaymentTax                   string `json:"payment_tax"`
	Fee                          string `json:"fee"`
	Earnings                     string `json:"earnings"`
}

type InvoicePaid struct {
	AlertBase
	invoiceFields
	ContractEndDate string              `json:"contract_end_date"`
	PaymentMethod   types.PaymentMethod `json:"payment_method"`
	BalanceEarnings string              `json:"balance_earnings"`
	BalanceFee      string              `json:"balance_fee"`
	BalanceTax      string              `json:"balance_tax"`
	BalanceGross    string              `json:"balance_gross"`
	DateReconciled  string              `json:"date_reconciled"`
}

type InvoiceSent struct {
	AlertBase
	invoiceFields
	CustomerID string `json:"customer_id"`
}

type InvoiceOverdue struct {
	AlertBase
	invoiceFields
	CustomerID      string              `json:"customer_id"`
	ContractEndDate string              `json:"contract_end_date"`
	PaymentMethod   types.PaymentMethod `json:"payment_method"`
}

func (SubscriptionCreated) Name() AlertName          { return AlertSubscriptionCreated }
func (SubscriptionUpdated) Name() AlertName          { return AlertSubscriptionUpdated }
func (SubscriptionCancelled) Name() AlertName        { return AlertSubscriptionCancelled }
func (SubscriptionPaymentSucceeded) Name() AlertName { return AlertSubscriptionPaymentSucceeded }
func (SubscriptionPaymentFailed) Name() AlertName    { return AlertSubscriptionPaymentFailed }
func (SubscriptionPaymentRefunded) Name() AlertName  { return AlertSubscriptionPaymentRefunded }
func (PaymentSucceeded) Name() AlertName             { return AlertPaymentSucceeded }
func (PaymentRefunded) Name() AlertName              { return AlertPaymentRefunded }
func (LockerProcessed) Name() AlertName              { return AlertLockerProcessed }
func (PaymentDisputeCreated) Name() AlertName        { return AlertPaymentDisputeCreated }
func (PaymentDisputeClosed) Name() AlertName         { return AlertPaymentDisputeClosed }
func (HighRiskTransactionCreated) Name() AlertName   { return AlertHighRiskTransactionCreated }
func (HighRiskTransactionUpdated) Name() AlertName   { return AlertHighRiskTransactionUpdated }
func (TransferCreated) Name() AlertName              { return AlertTransferCreated }
func (TransferPaid) Name() AlertName                 { return AlertTransferPaid }
func (NewAudienceMember) Name() AlertName            { return AlertNewAudienceMember }
func (UpdateAudienceMember) Name() AlertName         { return AlertUpdateAudienceMember }
func (InvoicePaid) Name() AlertName                  { return AlertInvoicePaid }
func (InvoiceSent) Name() AlertName                  { return AlertInvoiceSent }
func (InvoiceOverdue) Name() AlertName               { return AlertInvoiceOverdue }

func (SubscriptionCreated) isAlert()          {}
func (SubscriptionUpdated) isAlert()          {}
func (SubscriptionCancelled) isAlert()        {}
func (SubscriptionPaymentSucceeded) isAlert() {}
func (SubscriptionPaymentFailed) isAlert()    {}
func (SubscriptionPaymentRefunded) isAlert()  {}
func (PaymentSucceeded) isAlert()             {}
func (PaymentRefunded) isAlert()              {}
func (LockerProcessed) isAlert()              {}
func (PaymentDisputeCreated) isAlert()        {}
func (PaymentDisputeClosed) isAlert()         {}
func (HighRiskTransactionCreated) isAlert()   {}
func (HighRiskTransactionUpdated) isAlert()   {}
func (TransferCreated) isAlert()              {}
func (TransferPaid) isAlert()                 {}
func (NewAudienceMember) isAlert()            {}
func (UpdateAudienceMember) isAlert()         {}
func (InvoicePaid) isAlert()                  {}
func (InvoiceSent) isAlert()                  {}
func (InvoiceOverdue) isAlert()               {}
