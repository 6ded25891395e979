package app

import (
	"context"
	"fmt"
	"log"

	"bullet-relay/server/internal/command"
	"bullet-relay/server/internal/model"
	"bullet-relay/server/internal/relay"
)

// Relay performs one exchange with the simulator.
type Relay interface {
	Send(ctx context.Context, msg relay.WireMessage) model.Result
}

// Dispatcher maps validated commands to wire messages.
type Dispatcher struct {
	relay Relay
}

// NewDispatcher creates a dispatcher that sends through r.
func NewDispatcher(r Relay) *Dispatcher {
	return &Dispatcher{relay: r}
}

// Handle runs a request through validation and the relay. It always returns
// a result; panics are converted into an internal error.
func (d *Dispatcher) Handle(ctx context.Context, req model.CommandRequest) (res model.Result) {
	ctx, id := model.EnsureRequestID(ctx)
	state := model.StateReceived

	transition := func(next model.DispatchState) {
		log.Printf("[DISPATCH] %s %s -> %s", id, state, next)
		state = next
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[DISPATCH] %s Error handling command: %v", id, r)
			err := fmt.Errorf("%v", r)
			res = model.Failure(model.ResultInternalError, "Error: "+err.Error(), err)
		}
	}()

	if !command.ValidateName(req.Name) {
		transition(model.StateRejected)
		return model.Failure(model.ResultValidationError, "Unknown command", fmt.Errorf("unknown command %q", req.Name))
	}

	switch req.Name {
	case model.CommandMove:
		pos, err := command.MovePosition(req.Arguments)
		if err != nil {
			transition(model.StateRejected)
			return model.Failure(model.ResultValidationError, "Invalid move command arguments", err)
		}
		transition(model.StateValidated)

		transition(model.StateDispatched)
		res = d.relay.Send(ctx, relay.MoveMessage(pos))
		if res.Kind == model.ResultOK {
			transition(model.StateCompleted)
		} else {
			transition(model.StateFailed)
		}
		return res
	}

	// ValidateName and the switch above disagree.
	transition(model.StateRejected)
	return model.Failure(model.ResultValidationError, "Unknown command", fmt.Errorf("unhandled command %q", req.Name))
}
