package translate

import (
	"bytes"
	"encoding/json"
	"io"

	"bullet-relay/server/internal/command"
	"bullet-relay/server/internal/model"
)

// Decode checks the JSON produced by a text-understanding service and turns
// it into a request. Extra argument keys are left for the dispatcher to
// reject.
func Decode(raw []byte) (model.CommandRequest, error) {
	raw = stripFences(raw)

	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return model.CommandRequest{}, wrapError(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return model.CommandRequest{}, parseError("Extra data after JSON object")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return model.CommandRequest{}, parseError("Invalid command structure")
	}
	nameVal, okName := obj["name"]
	argsVal, okArgs := obj["arguments"]
	if !okName || !okArgs {
		return model.CommandRequest{}, parseError("Invalid command structure")
	}
	if name, _ := nameVal.(string); name != model.CommandMove {
		return model.CommandRequest{}, parseError("Only move commands are supported")
	}
	args, ok := argsVal.(map[string]any)
	if !ok {
		return model.CommandRequest{}, parseError("Invalid command structure")
	}

	pos, ok := args["position"]
	if !ok {
		return model.CommandRequest{}, parseError("Missing position argument")
	}
	list, ok := pos.([]any)
	if !ok || len(list) != 3 {
		return model.CommandRequest{}, parseError("Position must be a list of three numbers")
	}
	if _, ok := command.Coordinates(list); !ok {
		return model.CommandRequest{}, parseError("Position coordinates must be numbers")
	}

	return model.CommandRequest{Name: model.CommandMove, Arguments: args}, nil
}

// stripFences removes a surrounding ``` or ```json block.
func stripFences(raw []byte) []byte {
	raw = bytes.TrimSpace(raw)
	if !bytes.HasPrefix(raw, []byte("```")) {
		return raw
	}
	raw = bytes.TrimPrefix(raw, []byte("```"))
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		raw = raw[i+1:]
	}
	raw = bytes.TrimSuffix(bytes.TrimSpace(raw), []byte("```"))
	return bytes.TrimSpace(raw)
}
