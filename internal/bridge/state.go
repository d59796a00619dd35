package bridge

// State describes the bridge's position in the connection lifecycle.
type State int32

// Connection lifecycle states, in order.
const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateSubscribed
)

// String returns the lowercase state name for logs and health output.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateSubscribed:
		return "subscribed"
	default:
		return "unknown"
	}
}
