package payments

import (
	"strings"
	"testing"
)

func TestNewTransactionID(t *testing.T) {
	id := NewTransactionID()
	if !strings.HasPrefix(id, "TXN-") {
		t.Fatalf("unexpected prefix: %s", id)
	}
	if !ValidTransactionID(id) {
		t.Fatalf("generated id failed validation: %s", id)
	}
	if id == NewTransactionID() {
		t.Fatal("expected distinct ids")
	}
}

func TestValidTransactionID(t *testing.T) {
	bad := []string{"", "TXN", "TXN-123", "abc-123-def", "TXN--abc", "TXN-123-"}
	for _, s := range bad {
		if ValidTransactionID(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}
