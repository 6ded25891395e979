package model

// ResultKind classifies where a request ended up.
type ResultKind int

const (
	ResultOK ResultKind = iota
	ResultValidationError
	ResultTranslationError
	ResultTransportError
	ResultPeerError
	ResultInternalError
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultValidationError:
		return "validation_error"
	case ResultTranslationError:
		return "translation_error"
	case ResultTransportError:
		return "transport_error"
	case ResultPeerError:
		return "peer_error"
	case ResultInternalError:
		return "internal_error"
	default:
		return "unknown"
	}
}

// Result is passed by value between components and only collapsed to the
// external shape by the front ends.
type Result struct {
	Kind     ResultKind
	Response CommandResponse
	Err      error
}

// OK wraps a response produced by the simulator.
func OK(resp CommandResponse) Result {
	return Result{Kind: ResultOK, Response: resp}
}

// Failure builds a failed result carrying message as the response text.
func Failure(kind ResultKind, message string, err error) Result {
	return Result{
		Kind:     kind,
		Response: CommandResponse{Success: false, Message: message},
		Err:      err,
	}
}

// Succeeded reports whether the simulator accepted the command.
func (r Result) Succeeded() bool {
	return r.Kind == ResultOK && r.Response.Success
}
