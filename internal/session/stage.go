package session

// Stage is the session's position in the analysis lifecycle.
type Stage int

const (
	Idle Stage = iota
	FileSelected
	Uploading
	Processing
	Complete
	Error
)

var stageNames = [...]string{
	Idle:         "idle",
	FileSelected: "file_selected",
	Uploading:    "uploading",
	Processing:   "processing",
	Complete:     "complete",
	Error:        "error",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// InFlight reports whether a request is outstanding.
func (s Stage) InFlight() bool {
	return s == Uploading || s == Processing
}

// Terminal reports whether the stage ends an attempt.
func (s Stage) Terminal() bool {
	return s == Complete || s == Error
}
