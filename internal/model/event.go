package model

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// String returns the lowercase level name.
func (l ProgressLevel) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// ProgressEvent represents one observable step of a run.
//
// URL, Attempt and File are optional context; zero values mean "not
// applicable" for the event.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
	URL     string
	Attempt int
	File    string
}

// ProgressFunc receives progress events. It may be called from several
// goroutines at once.
type ProgressFunc func(ProgressEvent)

// Emit calls f with event if f is not nil.
func (f ProgressFunc) Emit(event ProgressEvent) {
	if f != nil {
		f(event)
	}
}
