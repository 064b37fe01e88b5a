package config

import (
	"os"
	"testing"
)

// unsetForTest removes key for the duration of the test. t.Setenv registers
// the restore; the Unsetenv then makes the variable truly absent.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unsetenv %s: %v", key, err)
	}
}
