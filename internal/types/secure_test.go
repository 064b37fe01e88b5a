package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

const testSecret = "vendor-auth-code-0123456789abcdef"

func TestSecretStringFormatting(t *testing.T) {
	s := SecretString(testSecret)

	for _, verb := range []string{"%s", "%v", "%+v"} {
		out := fmt.Sprintf(verb, s)
		if strings.Contains(out, testSecret) {
			t.Errorf("fmt %s leaked the raw secret: %s", verb, out)
		}
		if out != redactedPlaceholder {
			t.Errorf("fmt %s = %q, want %q", verb, out, redactedPlaceholder)
		}
	}
}

func TestSecretStringMarshalJSONInStruct(t *testing.T) {
	cfg := struct {
		VendorID int          `json:"vendor_id"`
		AuthCode SecretString `json:"vendor_auth_code"`
	}{VendorID: 1234, AuthCode: SecretString(testSecret)}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if strings.Contains(string(data), testSecret) {
		t.Errorf("JSON leaked the raw secret: %s", data)
	}
	want := `{"vendor_id":1234,"vendor_auth_code":"***REDACTED***"}`
	if string(data) != want {
		t.Errorf("JSON = %s, want %s", data, want)
	}
}

func TestSecretStringSlog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logger.Info("client configured", "vendor_auth_code", SecretString(testSecret))

	if strings.Contains(buf.String(), testSecret) {
		t.Errorf("slog leaked the raw secret: %s", buf.String())
	}
	if !strings.Contains(buf.String(), redactedPlaceholder) {
		t.Errorf("slog output missing placeholder: %s", buf.String())
	}
}

func TestSecretStringUnmask(t *testing.T) {
	s := SecretString(testSecret)
	if s.Unmask() != testSecret {
		t.Errorf("Unmask() = %q, want %q", s.Unmask(), testSecret)
	}
	if s.IsZero() {
		t.Error("IsZero() = true for non-empty secret")
	}
	if !SecretString("").IsZero() {
		t.Error("IsZero() = false for empty secret")
	}
}
