package report

import (
	"fmt"
	"math"

	"github.com/fairyhunter13/ai-interview-reporter/internal/domain"
)

const highPerformerScore = 80

// Aggregate reduces the candidate list into the fleet-level summary.
// Zero candidates yields the all-zero default shape, never an error.
func Aggregate(candidates []domain.CandidateSummary) domain.ReportSummary {
	if len(candidates) == 0 {
		return domain.ZeroReportSummary()
	}

	var scoreSum, minuteSum float64
	sum := domain.ReportSummary{TotalCandidates: len(candidates)}
	for _, c := range candidates {
		scoreSum += c.Overall
		minuteSum += float64(c.DurationMinutes)
		switch c.Status {
		case domain.StatusShortlisted:
			sum.ShortlistedCount++
		case domain.StatusPending:
			sum.PendingCount++
		}
		if c.Overall >= highPerformerScore {
			sum.HighPerformerCount++
		}
		if c.Overall < pendingScore && c.Status != domain.StatusRejected {
			sum.NeedsReviewCount++
		}
	}
	n := float64(len(candidates))
	sum.AverageScore = fmt.Sprintf("%d%%", int(math.Round(scoreSum/n)))
	sum.AvgDuration = fmt.Sprintf("%dm", int(math.Round(minuteSum/n)))
	return sum
}
