package webhook

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // the vendor signs with SHA-1
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"sync"

	"paddle/internal/phpserial"
	"paddle/internal/types"
)

// Precondition failures. These are caller or configuration errors and are
// returned as errors; a signature that simply does not verify is not.
var (
	ErrMissingPublicKey = types.NewAppError(types.ErrCodeWebhookPublicKeyMissing, "no public key configured for webhook verification", nil)
	ErrMissingSignature = types.NewAppError(types.ErrCodeWebhookSignatureMissing, "payload has no p_signature", nil)
	ErrMissingAlertName = types.NewAppError(types.ErrCodeWebhookAlertNameMissing, "payload has no alert_name", nil)
)

// FailureReason explains why a signature did not verify.
type FailureReason string

const (
	ReasonNone                 FailureReason = ""
	ReasonBadSignatureEncoding FailureReason = "bad_signature_encoding"
	ReasonBadPublicKey         FailureReason = "bad_public_key"
	ReasonUnserializable       FailureReason = "unserializable_payload"
	ReasonSignatureMismatch    FailureReason = "signature_mismatch"
)

// Result is the outcome of a verification that passed its preconditions.
type Result struct {
	Valid  bool
	Reason FailureReason
}

// Verifier checks p_signature on webhook payloads against a vendor public
// key. The key is parsed on first use and cached; a Verifier is safe for
// concurrent use.
type Verifier struct {
	pem string

	once   sync.Once
	key    *rsa.PublicKey
	keyErr error
}

// NewVerifier returns a Verifier for the given PEM public key. An empty key
// is accepted; every verification will then fail with ErrMissingPublicKey.
func NewVerifier(publicKeyPEM string) *Verifier {
	return &Verifier{pem: publicKeyPEM}
}

// Verify reports whether p carries a valid vendor signature.
//
// Returns (true, nil) if the signature is valid, (false, nil) if it is not
// (including malformed signature or key material), or (false, err) when a
// precondition fails: no public key, or a payload without p_signature or
// alert_name.
func (v *Verifier) Verify(p Payload) (bool, error) {
	res, err := v.VerifyDetailed(p)
	if err != nil {
		return false, err
	}
	return res.Valid, nil
}

// VerifyDetailed is Verify with the reason for a failed verification.
func (v *Verifier) VerifyDetailed(p Payload) (Result, error) {
	if v == nil || strings.TrimSpace(v.pem) == "" {
		return Result{}, ErrMissingPublicKey
	}
	rawSig, ok := p[FieldSignature]
	if !ok || rawSig == nil || rawSig == "" {
		return Result{}, ErrMissingSignature
	}
	if name, ok := p[FieldAlertName]; !ok || name == nil || name == "" {
		return Result{}, ErrMissingAlertName
	}

	sigText, ok := rawSig.(string)
	if !ok {
		return Result{Reason: ReasonBadSignatureEncoding}, nil
	}
	sig, err := decodeSignature(sigText)
	if err != nil {
		return Result{Reason: ReasonBadSignatureEncoding}, nil
	}

	key, err := v.publicKey()
	if err != nil {
		return Result{Reason: ReasonBadPublicKey}, nil
	}

	msg, err := CanonicalBytes(p)
	if err != nil {
		return Result{Reason: ReasonUnserializable}, nil
	}

	digest := sha1.Sum(msg) //nolint:gosec
	if err := rsa.VerifyPKCS1v15(key, crypto.SHA1, digest[:], sig); err != nil {
		return Result{Reason: ReasonSignatureMismatch}, nil
	}
	return Result{Valid: true}, nil
}

func (v *Verifier) publicKey() (*rsa.PublicKey, error) {
	v.once.Do(func() {
		v.key, v.keyErr = ParsePublicKey(v.pem)
	})
	return v.key, v.keyErr
}

// Verify is a one-shot form of NewVerifier(publicKeyPEM).Verify(p).
func Verify(publicKeyPEM string, p Payload) (bool, error) {
	return NewVerifier(publicKeyPEM).Verify(p)
}

// CanonicalBytes returns the byte string the vendor signs: every field
// except p_signature, keys sorted in byte order, PHP-serialized.
func CanonicalBytes(p Payload) ([]byte, error) {
	return phpserial.Marshal(phpserial.SortedFromMap(p.Unsigned()))
}

// ParsePublicKey parses an RSA public key from PEM. Both "PUBLIC KEY"
// (PKIX) and "RSA PUBLIC KEY" (PKCS#1) blocks are accepted. Keys pasted
// into environment variables often carry literal "\n" sequences; those are
// expanded first.
func ParsePublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	text := strings.ReplaceAll(strings.TrimSpace(publicKeyPEM), `\n`, "\n")
	if text == "" {
		return nil, errors.New("public key is empty")
	}

	block, _ := pem.Decode([]byte(text))
	if block == nil {
		return nil, errors.New("public key is not PEM encoded")
	}

	switch block.Type {
	case "RSA PUBLIC KEY":
		key, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse PKCS#1 public key: %w", err)
		}
		return key, nil
	default:
		parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse PKIX public key: %w", err)
		}
		key, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("public key is %T, not RSA", parsed)
		}
		return key, nil
	}
}

// decodeSignature accepts padded and unpadded standard base64, ignoring
// whitespace introduced by line wrapping.
func decodeSignature(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	if sig, err := base64.StdEncoding.DecodeString(s); err == nil {
		return sig, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
