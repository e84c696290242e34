package importer

// Status of one import outcome. "error" covers both real failures and a
// source collection that returned nothing, which keeps re-running safe:
// an empty source never wipes target data.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the uniform per-entity import outcome.
type Result struct {
	Status    Status `json:"status"`
	Added     int    `json:"added"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Message   string `json:"message,omitempty"`
}

func errorResult(msg string) Result {
	return Result{Status: StatusError, Message: msg}
}

// RunReport aggregates a full pipeline run. Details is keyed by entity
// name; a failed entity keeps its error Result there instead of aborting
// the run.
type RunReport struct {
	Status         Status            `json:"status"`
	TotalAdded     int               `json:"total_added"`
	TotalUpdated   int               `json:"total_updated"`
	TotalUnchanged int               `json:"total_unchanged"`
	Details        map[string]Result `json:"details"`
}

func newRunReport() RunReport {
	return RunReport{Status: StatusSuccess, Details: make(map[string]Result)}
}

// fold records one entity outcome into the report.
func (r *RunReport) fold(entity EntityType, res Result) {
	r.Details[entity.String()] = res
	if res.Status != StatusSuccess {
		return
	}
	r.TotalAdded += res.Added
	r.TotalUpdated += res.Updated
	r.TotalUnchanged += res.Unchanged
}
