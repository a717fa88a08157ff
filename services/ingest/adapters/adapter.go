package adapters

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"crowdpulse/pkg/apify"
	"crowdpulse/pkg/models"
)

// DefaultLimit is the number of items requested from the scraping
// backend when no limit is configured.
const DefaultLimit = 50

// Backend is the actor-run scraping capability the adapters depend on.
// Satisfied by *apify.Client; tests substitute fakes.
type Backend interface {
	RunActor(ctx context.Context, actorID string, input interface{}) (*apify.ActorRun, error)
	ListItems(ctx context.Context, datasetID string) ([]json.RawMessage, error)
}

// Adapter turns one platform's raw scrape results into canonical Posts.
// Fetch returns either a fully-normalized batch or an error; items that
// cannot produce a valid identity are dropped, never half-mapped.
type Adapter interface {
	Platform() models.Platform
	Fetch(ctx context.Context, limit int) ([]models.Post, error)
}

// flexCount decodes engagement counters that sources deliver as
// numbers, numeric strings, or not at all. Anything unusable becomes 0.
type flexCount int

func (n *flexCount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		*n = 0
		return nil
	}
	*n = flexCount(int(f))
	return nil
}

// timeLayouts covers the timestamp formats the three platforms' actors
// are known to emit.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	time.RubyDate, // X createdAt: "Mon Jan 02 15:04:05 -0700 2006"
}

func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	// Some actors emit epoch seconds
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil && secs > 0 {
		return time.Unix(secs, 0).UTC()
	}
	return time.Time{}
}
