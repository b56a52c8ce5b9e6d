package confirm

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssuer(t *testing.T) {
	date := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	clock := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)

	newIssuer := func(secret string) *Issuer {
		i := NewIssuer(secret, time.Hour)
		i.now = func() time.Time { return clock }
		return i
	}

	t.Run("RoundTrip", func(t *testing.T) {
		i := newIssuer("secret")
		token, err := i.Issue("cy", date, "pending-1")
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}
		c, err := i.Verify(token)
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if c.Subject != "cy" || c.PendingID != "pending-1" || c.PlanDate != "2025-01-02" {
			t.Errorf("Unexpected claims %+v", c)
		}
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token, _ := newIssuer("secret").Issue("cy", date, "pending-1")
		if _, err := newIssuer("other").Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Error("Expected verification to fail with another secret")
		}
	})

	t.Run("Expired", func(t *testing.T) {
		i := newIssuer("secret")
		token, _ := i.Issue("cy", date, "pending-1")
		i.now = func() time.Time { return clock.Add(2 * time.Hour) }
		if _, err := i.Verify(token); err == nil {
			t.Error("Expected expired token to be rejected")
		}
	})

	t.Run("Tampered", func(t *testing.T) {
		i := newIssuer("secret")
		token, _ := i.Issue("cy", date, "pending-1")
		parts := strings.Split(token, ".")
		parts[1] = parts[1][:len(parts[1])-2] + "AA"
		if _, err := i.Verify(strings.Join(parts, ".")); err == nil {
			t.Error("Expected tampered token to be rejected")
		}
	})
}
