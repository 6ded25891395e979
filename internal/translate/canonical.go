package translate

import (
	"encoding/json"
	"fmt"
	"strconv"

	"bullet-relay/server/internal/command"
	"bullet-relay/server/internal/model"
)

// directions maps unit vectors to the phrase understood by every translator.
var directions = map[[3]float64]string{
	{1, 0, 0}:  "right",
	{-1, 0, 0}: "left",
	{0, 1, 0}:  "forward",
	{0, -1, 0}: "backward",
	{0, 0, 1}:  "up",
	{0, 0, -1}: "down",
}

// PhraseFor renders a position as the canonical free-text move command.
func PhraseFor(pos [3]float64) string {
	if dir, ok := directions[pos]; ok {
		return "move " + dir + " 1 meter"
	}
	return fmt.Sprintf("move to position (%s, %s, %s)",
		formatCoord(pos[0]), formatCoord(pos[1]), formatCoord(pos[2]))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Canonicalize rewrites a structured stream frame into free text so that
// every frame goes through the same translation path. Frames that are not
// JSON or not a recognized command shape are returned unchanged.
//
// Recognized shapes are the wire form {"type":"move","position":[...]} and
// the schema form {"name":"move","arguments":{"position":[...]}}.
func Canonicalize(frame string) (string, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(frame), &obj); err != nil || obj == nil {
		return frame, nil
	}

	var pos any
	switch {
	case obj["type"] != nil:
		if obj["type"] != model.CommandMove {
			return frame, nil
		}
		p, ok := obj["position"]
		if !ok {
			return frame, nil
		}
		pos = p
	case obj["name"] != nil:
		if obj["name"] != model.CommandMove {
			return frame, nil
		}
		args, ok := obj["arguments"].(map[string]any)
		if !ok {
			return frame, nil
		}
		p, ok := args["position"]
		if !ok {
			return frame, nil
		}
		pos = p
	default:
		return frame, nil
	}

	coords, ok := command.Coordinates(pos)
	if !ok {
		return "", parseError("Position must be a list of three numbers")
	}
	return PhraseFor(coords), nil
}
