package webhook

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"paddle/internal/types"
)

// ErrUnknownAlert is returned by ParseAlert for an alert_name outside the
// known set.
var ErrUnknownAlert = types.NewAppError(types.ErrCodeWebhookAlertUnknown, "unknown alert_name", nil)

var alertFactories = map[AlertName]func() Alert{
	AlertSubscriptionCreated:          func() Alert { return &SubscriptionCreated{} },
	AlertSubscriptionUpdated:          func() Alert { return &SubscriptionUpdated{} },
	AlertSubscriptionCancelled:        func() Alert { return &SubscriptionCancelled{} },
	AlertSubscriptionPaymentSucceeded: func() Alert { return &SubscriptionPaymentSucceeded{} },
	AlertSubscriptionPaymentFailed:    func() Alert { return &SubscriptionPaymentFailed{} },
	AlertSubscriptionPaymentRefunded:  func() Alert { return &SubscriptionPaymentRefunded{} },
	AlertPaymentSucceeded:             func() Alert { return &PaymentSucceeded{} },
	AlertPaymentRefunded:              func() Alert { return &PaymentRefunded{} },
	AlertLockerProcessed:              func() Alert { return &LockerProcessed{} },
	AlertPaymentDisputeCreated:        func() Alert { return &PaymentDisputeCreated{} },
	AlertPaymentDisputeClosed:         func() Alert { return &PaymentDisputeClosed{} },
	AlertHighRiskTransactionCreated:   func() Alert { return &HighRiskTransactionCreated{} },
	AlertHighRiskTransactionUpdated:   func() Alert { return &HighRiskTransactionUpdated{} },
	AlertTransferCreated:              func() Alert { return &TransferCreated{} },
	AlertTransferPaid:                 func() Alert { return &TransferPaid{} },
	AlertNewAudienceMember:            func() Alert { return &NewAudienceMember{} },
	AlertUpdateAudienceMember:         func() Alert { return &UpdateAudienceMember{} },
	AlertInvoicePaid:                  func() Alert { return &InvoicePaid{} },
	AlertInvoiceSent:                  func() Alert { return &InvoiceSent{} },
	AlertInvoiceOverdue:               func() Alert { return &InvoiceOverdue{} },
}

// KnownAlert reports whether name is one of the alerts ParseAlert decodes.
func KnownAlert(name AlertName) bool {
	_, ok := alertFactories[name]
	return ok
}

// ParseAlert decodes p into the typed alert named by its alert_name. Form
// posts carry every value as a string, so decoding is weakly typed: "1" and
// "0" become bools and numbers become strings. The result is a pointer to
// one of the alert structs in this package.
//
// ParseAlert does not verify the signature.
func ParseAlert(p Payload) (Alert, error) {
	name, ok := p.AlertName()
	if !ok {
		return nil, ErrMissingAlertName
	}
	factory, ok := alertFactories[name]
	if !ok {
		return nil, ErrUnknownAlert.WithDetails(map[string]any{"alert_name": string(name)})
	}

	alert := factory()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           alert,
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
	})
	if err != nil {
		return nil, fmt.Errorf("build alert decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(p)); err != nil {
		return nil, types.NewAppError(types.ErrCodeWebhookAlertMalformed, "alert fields do not match "+string(name), err)
	}
	return alert, nil
}
