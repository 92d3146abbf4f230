package store

// State is the lifecycle state of the store.
type State string

const (
	StateIdle      State = "IDLE"
	StateRecording State = "RECORDING"
	StateReading   State = "READING"
	StateError     State = "ERROR"
)

// ErrorKind is the latched diagnostic recorded when the store enters
// StateError. It stays set until Reset succeeds.
type ErrorKind string

const (
	KindNone             ErrorKind = "NONE"
	KindCannotInitialize ErrorKind = "CANNOT_INITIALIZE"
	KindCannotOpenFile   ErrorKind = "CANNOT_OPEN_FILE"
	KindCannotRemoveFile ErrorKind = "CANNOT_REMOVE_FILE"
	KindFileSystemError  ErrorKind = "FILESYSTEM_ERROR"
	KindTooManyFiles     ErrorKind = "TOO_MANY_FILES"
)

// Entry describes one recording found by List: its name and the current
// byte size of its file on the medium.
type Entry struct {
	Name string `json:"name" yaml:"name"`
	Size int64  `json:"size" yaml:"size"`
}
