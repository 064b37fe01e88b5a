package webhook

import (
	"bytes"
	"encoding/json"
	"net/url"

	"paddle/internal/types"
)

// Field names every alert carries.
const (
	FieldSignature = "p_signature"
	FieldAlertName = "alert_name"
	FieldAlertID   = "alert_id"
	FieldEventTime = "event_time"
)

// Payload is a received webhook body as a flat key/value mapping. Values are
// whatever the transport produced: strings for form posts, and strings,
// bools, json.Number or nil for JSON bodies. Nothing in this package
// converts them, since the signature covers their exact representation.
type Payload map[string]any

// PayloadFromForm builds a Payload from a form-encoded body, taking the
// first value of each key.
func PayloadFromForm(values url.Values) Payload {
	p := make(Payload, len(values))
	for k, vs := range values {
		if len(vs) == 0 {
			p[k] = ""
			continue
		}
		p[k] = vs[0]
	}
	return p
}

// PayloadFromJSON decodes a flat JSON object. Numbers are kept as
// json.Number so integers are not widened to float64.
func PayloadFromJSON(body []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidBody, "webhook body is not a JSON object", err)
	}
	if p == nil {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidBody, "webhook body is null", nil)
	}
	return p, nil
}

// AlertName returns the alert_name field when it is a non-empty string.
func (p Payload) AlertName() (AlertName, bool) {
	s, ok := p[FieldAlertName].(string)
	if !ok || s == "" {
		return "", false
	}
	return AlertName(s), true
}

// AlertID returns the alert_id field rendered as a string. JSON bodies may
// carry it as a number.
func (p Payload) AlertID() string {
	switch v := p[FieldAlertID].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Signature returns the p_signature field when it is a non-empty string.
func (p Payload) Signature() (string, bool) {
	s, ok := p[FieldSignature].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Unsigned returns a copy of p without p_signature.
func (p Payload) Unsigned() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		if k == FieldSignature {
			continue
		}
		out[k] = v
	}
	return out
}
