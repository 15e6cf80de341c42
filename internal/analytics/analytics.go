package analytics

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tweet-responder/internal/storage"
)

// DailyStats aggregates one day of reply outcomes.
type DailyStats struct {
	Date               string  `json:"date"`
	Attempts           int     `json:"attempts"`
	Succeeded          int     `json:"succeeded"`
	Failed             int     `json:"failed"`
	GenerationFailures int     `json:"generation_failures"`
	PublishFailures    int     `json:"publish_failures"`
	UniqueTweets       int     `json:"unique_tweets"`
	SuccessRate        float64 `json:"success_rate"`
}

// AnalyzeDay counts the outcomes whose timestamp falls on targetDate
// (in targetDate's location).
func AnalyzeDay(outcomes []storage.Outcome, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	stats := &DailyStats{Date: startOfDay.Format("2006-01-02")}
	tweets := make(map[string]struct{})

	for _, o := range outcomes {
		if o.Timestamp.Before(startOfDay) || !o.Timestamp.Before(endOfDay) {
			continue
		}
		stats.Attempts++
		tweets[o.ContentID] = struct{}{}
		if o.Success {
			stats.Succeeded++
			continue
		}
		stats.Failed++
		switch {
		case strings.HasPrefix(o.GeneratedReply, storage.GenerationFailedPrefix):
			stats.GenerationFailures++
		case strings.HasPrefix(o.GeneratedReply, storage.PublishFailedPrefix):
			stats.PublishFailures++
		}
	}

	stats.UniqueTweets = len(tweets)
	if stats.Attempts > 0 {
		stats.SuccessRate = float64(stats.Succeeded) / float64(stats.Attempts)
	}
	return stats
}

// GenerateReportSummary renders the stats as a short operator message.
func (ds *DailyStats) GenerateReportSummary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Reply activity for %s\n\n", ds.Date)
	fmt.Fprintf(&sb, "- Attempts: %d (%d unique tweets)\n", ds.Attempts, ds.UniqueTweets)
	fmt.Fprintf(&sb, "- Replies sent: %d\n", ds.Succeeded)
	fmt.Fprintf(&sb, "- Failed: %d", ds.Failed)
	if ds.Failed > 0 {
		fmt.Fprintf(&sb, " (generation: %d, publish: %d)", ds.GenerationFailures, ds.PublishFailures)
	}
	sb.WriteString("\n")
	if ds.Attempts > 0 {
		fmt.Fprintf(&sb, "- Success rate: %.0f%%\n", ds.SuccessRate*100)
	}
	return sb.String()
}

// ToJSON renders the stats as indented JSON.
func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
