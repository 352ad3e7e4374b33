package feed

import (
	"time"
)

// FreshnessWindow is how long a successful read keeps a feed fresh. A fresh
// feed is fetched conditionally (validators attached); a stale one gets an
// unconditional request. Staleness gates an optimization, not correctness.
const FreshnessWindow = 60 * time.Minute

// IsFresh reports whether the feed's last successful read is recent enough
// to prefer a conditional fetch. A feed that has never been read is stale,
// and so is one read exactly FreshnessWindow ago.
func IsFresh(lastReadAt *time.Time, now time.Time) bool {
	if lastReadAt == nil {
		return false
	}
	return now.Sub(*lastReadAt) < FreshnessWindow
}
