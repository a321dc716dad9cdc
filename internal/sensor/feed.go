// Package sensor fetches the upstream ThingSpeak feed and computes the
// read-only projections served by the sensor endpoints. Nothing here is
// persisted.
package sensor

import (
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
)

// FeedEntry is one row of the upstream feed. field1 is null for entries the
// device uploaded without a value. entry_id is a pointer so a missing field
// is distinguishable from a legitimate id of zero.
type FeedEntry struct {
	Field1    *string `json:"field1"`
	CreatedAt string  `json:"created_at"`
	EntryID   *int64  `json:"entry_id"`
}

// Channel describes the upstream channel.
type Channel struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// FeedPage is the decoded upstream response.
type FeedPage struct {
	Channel Channel     `json:"channel"`
	Feeds   []FeedEntry `json:"feeds"`
}

// Validate rejects payloads that do not conform to the expected feed shape.
// The error text propagates to the client in the 500 body.
func (p *FeedPage) Validate() error {
	if p.Channel.Name == "" {
		return errors.New("feed payload missing channel name")
	}
	for _, f := range p.Feeds {
		if f.CreatedAt == "" {
			return errors.New("feed entry missing created_at")
		}
		if f.EntryID == nil {
			return errors.New("feed entry missing entry_id")
		}
	}
	return nil
}

const noDescription = "No description available"

// ChannelInfo is the channel projection shared by both endpoint variants.
type ChannelInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Reading is a single parsed feed value.
type Reading struct {
	Value     float64 `json:"value"`
	Timestamp string  `json:"timestamp"`
}

// SummaryData carries the aggregate over the requested window.
type SummaryData struct {
	AverageValue  float64 `json:"averageValue"`
	LastTimestamp string  `json:"lastTimestamp"`
}

// Summary is the response of the aggregated endpoint.
type Summary struct {
	SensorData  SummaryData `json:"sensorData"`
	ChannelInfo ChannelInfo `json:"channelInfo"`
}

// RawSeries is the response of the raw (hourly) endpoint variant.
type RawSeries struct {
	SensorData  []Reading   `json:"sensorData"`
	ChannelInfo ChannelInfo `json:"channelInfo"`
}

func channelInfo(c Channel) ChannelInfo {
	desc := c.Description
	if desc == "" {
		desc = noDescription
	}
	return ChannelInfo{Name: c.Name, Description: desc}
}

// Summarize computes the mean of valid entries, rounded to two decimal
// places. Valid means field1 is present and parses to a number greater than
// zero. The last timestamp is that of the last valid entry in feed order as
// returned upstream, not necessarily chronological. An empty window yields
// average 0 and an empty timestamp.
func Summarize(page *FeedPage) Summary {
	var values []decimal.Decimal
	lastTimestamp := ""
	for _, f := range page.Feeds {
		if f.Field1 == nil {
			continue
		}
		v, err := strconv.ParseFloat(*f.Field1, 64)
		if err != nil || v <= 0 {
			continue
		}
		values = append(values, decimal.NewFromFloat(v))
		lastTimestamp = f.CreatedAt
	}

	avg := 0.0
	if len(values) > 0 {
		avg = decimal.Avg(values[0], values[1:]...).Round(2).InexactFloat64()
	}

	return Summary{
		SensorData:  SummaryData{AverageValue: avg, LastTimestamp: lastTimestamp},
		ChannelInfo: channelInfo(page.Channel),
	}
}

// Flatten maps every numeric-parseable entry, zero and negatives included,
// to a value/timestamp pair without aggregation.
func Flatten(page *FeedPage) RawSeries {
	readings := make([]Reading, 0, len(page.Feeds))
	for _, f := range page.Feeds {
		if f.Field1 == nil {
			continue
		}
		v, err := strconv.ParseFloat(*f.Field1, 64)
		if err != nil {
			continue
		}
		readings = append(readings, Reading{Value: v, Timestamp: f.CreatedAt})
	}
	return RawSeries{
		SensorData:  readings,
		ChannelInfo: channelInfo(page.Channel),
	}
}
