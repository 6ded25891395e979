package model

// Supported command names.
const (
	CommandMove = "move"
)

// CommandRequest is the structured command shape shared by every entry point.
type CommandRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// CommandResponse is the uniform reply returned for every request.
type CommandResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StreamError is sent on the duplex stream when a frame could not be turned
// into a command response.
type StreamError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Stream error categories.
const (
	StreamErrInvalidFormat = "Invalid command format"
	StreamErrInternal      = "Internal server error"
)

// DispatchState is the per-request state of the dispatcher.
type DispatchState int

const (
	StateReceived   DispatchState = iota
	StateValidated                // name and arguments accepted
	StateDispatched               // handed to the relay
	StateCompleted                // relay returned a successful reply
	StateRejected                 // validation failed before any I/O
	StateFailed                   // relay reported a transport or peer error
)

func (s DispatchState) String() string {
	switch s {
	case StateReceived:
		return "Received"
	case StateValidated:
		return "Validated"
	case StateDispatched:
		return "Dispatched"
	case StateCompleted:
		return "Completed"
	case StateRejected:
		return "Rejected"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
