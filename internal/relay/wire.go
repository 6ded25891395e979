package relay

import (
	"encoding/json"
	"errors"
	"fmt"

	"bullet-relay/server/internal/model"
)

// WireMessage is a single request frame sent to the simulator.
type WireMessage struct {
	Type     string     `json:"type"`
	Position [3]float64 `json:"position"`
}

// MoveMessage builds the wire message for a move command.
func MoveMessage(pos [3]float64) WireMessage {
	return WireMessage{Type: model.CommandMove, Position: pos}
}

// ErrMalformedReply marks a reply frame that is not a simulator result.
var ErrMalformedReply = errors.New("malformed simulator reply")

type peerReply struct {
	Success *bool   `json:"success"`
	Message string  `json:"message"`
	Error   *string `json:"error"`
}

// decodeReply turns a reply frame into a result. A non-nil error means the
// frame itself was unusable and the connection should not be trusted.
func decodeReply(frame []byte) (model.Result, error) {
	var reply peerReply
	if err := json.Unmarshal(frame, &reply); err != nil {
		return model.Result{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if reply.Error != nil {
		msg := *reply.Error
		if msg == "" {
			msg = "Unknown error"
		}
		return model.Failure(model.ResultPeerError, msg, errors.New(msg)), nil
	}
	if reply.Success == nil {
		return model.Result{}, fmt.Errorf("%w: missing success field", ErrMalformedReply)
	}
	resp := model.CommandResponse{Success: *reply.Success, Message: reply.Message}
	if !resp.Success {
		return model.Result{Kind: model.ResultPeerError, Response: resp, Err: errors.New(resp.Message)}, nil
	}
	return model.OK(resp), nil
}
