package auth

import "time"

// DefaultBucketVolume is the number of requests Reddit grants per window.
const DefaultBucketVolume = 600

// RateLimitBucket tracks the server-reported request quota. The pipeline
// drips it once per dispatched request and overwrites it whenever the server
// reports fresh numbers.
type RateLimitBucket struct {
	remaining int
	refillAt  time.Time
}

// NewRateLimitBucket returns a full bucket with a zero refill instant.
func NewRateLimitBucket() *RateLimitBucket {
	return &RateLimitBucket{remaining: DefaultBucketVolume}
}

// Drip consumes one request. The counter is not floored at zero.
func (b *RateLimitBucket) Drip() {
	b.remaining--
}

// Update overwrites the quota with values reported by the server.
func (b *RateLimitBucket) Update(remaining, secondsUntilRefill int) {
	b.UpdateAt(time.Now(), remaining, secondsUntilRefill)
}

// UpdateAt is Update with an explicit observation time.
func (b *RateLimitBucket) UpdateAt(now time.Time, remaining, secondsUntilRefill int) {
	b.remaining = remaining
	b.refillAt = now.Add(time.Duration(secondsUntilRefill) * time.Second)
}

// IsEmpty reports whether the quota is spent and has not yet refilled.
func (b *RateLimitBucket) IsEmpty() bool {
	return b.IsEmptyAt(time.Now())
}

// IsEmptyAt reports whether remaining <= 0 and the refill instant is after now.
func (b *RateLimitBucket) IsEmptyAt(now time.Time) bool {
	return b.remaining <= 0 && b.refillAt.After(now)
}

// Remaining returns the raw counter, which may be negative.
func (b *RateLimitBucket) Remaining() int { return b.remaining }

// RefillAt returns when the server will reset the quota.
func (b *RateLimitBucket) RefillAt() time.Time { return b.refillAt }
