package tasks

import (
	"fmt"

	"github.com/desertthunder/sptdl/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ListTracks Phase = iota
	FilterTracks
	Download
	Retry
	Skip
	Complete
)

func (p Phase) String() string {
	switch p {
	case ListTracks:
		return "list_tracks"
	case FilterTracks:
		return "filter_tracks"
	case Download:
		return "download"
	case Retry:
		return "retry"
	case Skip:
		return "skip"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func listTracksUpdate(source models.Source, service string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListTracks,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Fetching %s tracks from %s...", source.Kind, service),
		Data:    source,
	}
}

func foundTracksUpdate(source models.Source, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %s %s (%d tracks)", source.Kind, source.ID, count),
	}
}

func filterTracksUpdate(pending, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FilterTracks,
		Step:    total - pending,
		Total:   total,
		Message: fmt.Sprintf("%d already downloaded, %d to fetch", total-pending, pending),
	}
}

// downloadUpdate carries the attempt number in Data.
func downloadUpdate(step, total int, q models.Query, attempt int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Download,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Downloading %s | Track %d/%d", q.Text, step, total),
		Data:    attempt,
	}
}

// retryUpdate carries the failed attempt's error in Data.
func retryUpdate(step, total, next, attempts int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Retry,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Trying again... %d/%d", next, attempts),
		Data:    err,
	}
}

func skipUpdate(step, total int, outcome models.Outcome) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Skip,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Skipping %s after %d attempts (%s): %v", outcome.Query.Text, outcome.Attempts, outcome.Reason, outcome.Err),
		Data:    outcome,
	}
}

func completeUpdate(report *FetchReport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    report.Total,
		Total:   report.Total,
		Message: "Download finished.",
		Data:    report,
	}
}
