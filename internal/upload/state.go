package upload

// State is the position of an activation in Idle -> AwaitingPresign -> Uploading -> Done,
// with Error reachable from AwaitingPresign and Uploading.
type State int

const (
	StateIdle State = iota
	StateAwaitingPresign
	StateUploading
	StateDone
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingPresign:
		return "awaiting-presign"
	case StateUploading:
		return "uploading"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	}
	return "unknown"
}
