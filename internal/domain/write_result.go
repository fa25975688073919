package domain

// WriteOutcome classifies how a write ended.
type WriteOutcome string

const (
	// WriteOK means every write of the operation was persisted.
	WriteOK WriteOutcome = "ok"
	// WriteWarning means the primary write was persisted but a dependent
	// write (for example the task behind a Manager note) was not.
	WriteWarning WriteOutcome = "warning"
	// WriteRolledBack means the primary write failed and the local
	// snapshot was restored.
	WriteRolledBack WriteOutcome = "rolled_back"
)

// WriteResult is returned by every mutating store operation.
type WriteResult struct {
	Outcome WriteOutcome `json:"outcome"`
	Message string       `json:"message,omitempty"`
	Err     error        `json:"-"`
}

// OK reports whether the primary write was persisted.
func (r WriteResult) OK() bool {
	return r.Outcome == WriteOK || r.Outcome == WriteWarning
}

func Written() WriteResult {
	return WriteResult{Outcome: WriteOK}
}

func WrittenWithWarning(msg string, err error) WriteResult {
	return WriteResult{Outcome: WriteWarning, Message: msg, Err: err}
}

func RolledBack(msg string, err error) WriteResult {
	return WriteResult{Outcome: WriteRolledBack, Message: msg, Err: err}
}
