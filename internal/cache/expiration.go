package cache

import "time"

// Expiration records when an object entry was written and how long it lives.
type Expiration struct {
	insertedAt time.Time
	ttl        time.Duration
}

func newExpiration(now time.Time, ttl time.Duration) *Expiration {
	if ttl <= 0 {
		return nil
	}
	return &Expiration{insertedAt: now, ttl: ttl}
}

// IsExpired reports whether ttl has fully elapsed at now.
func (e *Expiration) IsExpired(now time.Time) bool {
	return now.Sub(e.insertedAt) >= e.ttl
}

// ExpiresAt is the first instant at which the entry counts as expired.
func (e *Expiration) ExpiresAt() time.Time {
	return e.insertedAt.Add(e.ttl)
}
