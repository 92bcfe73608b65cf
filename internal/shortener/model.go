package shortener

// LinkRecord is one (identifier, long URL) pair read from the input file.
type LinkRecord struct {
	Identifier string
	LongURL    string
}

// Status tags an Outcome.
type Status uint8

const (
	Succeeded Status = iota + 1
	Failed
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the result of attempting to shorten one LinkRecord.
// ShortURL is set only when Status is Succeeded; Err only when Failed.
type Outcome struct {
	Record   LinkRecord
	Status   Status
	ShortURL string
	Err      error
}

// Success returns a succeeded Outcome for rec.
func Success(rec LinkRecord, shortURL string) Outcome {
	return Outcome{Record: rec, Status: Succeeded, ShortURL: shortURL}
}

// Failure returns a failed Outcome for rec.
func Failure(rec LinkRecord, err error) Outcome {
	return Outcome{Record: rec, Status: Failed, Err: err}
}

// Report is what a Processor run produced.
// len(Successes)+len(Failures) == Requests. Pending holds records never
// attempted because the run was canceled.
type Report struct {
	Successes []Outcome
	Failures  []Outcome
	Pending   []LinkRecord
	Requests  int
	Cooldowns int
}

// Retry returns every record that should go back into a retry file:
// failures first, in processing order, then the records never attempted.
func (r Report) Retry() []LinkRecord {
	out := make([]LinkRecord, 0, len(r.Failures)+len(r.Pending))
	for _, o := range r.Failures {
		out = append(out, o.Record)
	}
	return append(out, r.Pending...)
}
