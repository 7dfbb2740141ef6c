package models

// FailureReason classifies why a download attempt did not produce a file.
type FailureReason int

const (
	ReasonNone FailureReason = iota
	ReasonNoResults
	ReasonSearch
	ReasonNoAudioStream
	ReasonResolve
	ReasonDownload
	ReasonFilesystem
	ReasonCancelled
)

func (r FailureReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNoResults:
		return "no_results"
	case ReasonSearch:
		return "search"
	case ReasonNoAudioStream:
		return "no_audio_stream"
	case ReasonResolve:
		return "resolve"
	case ReasonDownload:
		return "download"
	case ReasonFilesystem:
		return "filesystem"
	case ReasonCancelled:
		return "cancelled"
	default:
		return ""
	}
}

// Outcome is the final result for one query after all attempts.
type Outcome struct {
	Query    Query
	Path     string // written file, empty on failure
	Attempts int
	Reason   FailureReason
	Err      error // last error, nil on success
}

// OK reports whether the track was downloaded.
func (o Outcome) OK() bool {
	return o.Reason == ReasonNone && o.Err == nil
}
