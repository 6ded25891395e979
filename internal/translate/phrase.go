package translate

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"bullet-relay/server/internal/data"
	"bullet-relay/server/internal/model"
)

const number = `[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`

var (
	directionRe = regexp.MustCompile(`^move\s+(right|left|forward|backward|up|down)(?:\s+(` + number + `)\s*(?:m|meters?|metres?)?)?$`)
	positionRe  = regexp.MustCompile(`^move\s+to\s+(?:position\s+)?\(?\s*(` + number + `)\s*,\s*(` + number + `)\s*,\s*(` + number + `)\s*\)?$`)
	waypointRe  = regexp.MustCompile(`^move\s+to\s+(?:waypoint\s+)?([a-z0-9_-]+)$`)
)

var directionVectors = map[string][3]float64{}

func init() {
	for vec, name := range directions {
		directionVectors[name] = vec
	}
}

// WaypointStore resolves named positions.
type WaypointStore interface {
	GetWaypoint(ctx context.Context, name string) (*data.Waypoint, error)
}

// Phrase understands the canonical phrases locally, without a language
// model. Waypoints may be nil.
type Phrase struct {
	Waypoints WaypointStore
}

// NewPhrase creates a phrase translator.
func NewPhrase(w WaypointStore) *Phrase {
	return &Phrase{Waypoints: w}
}

func (p *Phrase) Translate(ctx context.Context, text string) (model.CommandRequest, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.TrimRight(s, ".!")
	s = strings.Join(strings.Fields(s), " ")

	if m := directionRe.FindStringSubmatch(s); m != nil {
		dist := 1.0
		if m[2] != "" {
			f, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				return model.CommandRequest{}, wrapError(err)
			}
			dist = f
		}
		vec := directionVectors[m[1]]
		return moveRequest([3]float64{vec[0] * dist, vec[1] * dist, vec[2] * dist}), nil
	}

	if m := positionRe.FindStringSubmatch(s); m != nil {
		var pos [3]float64
		for i := 0; i < 3; i++ {
			f, err := strconv.ParseFloat(m[i+1], 64)
			if err != nil {
				return model.CommandRequest{}, wrapError(err)
			}
			pos[i] = f
		}
		return moveRequest(pos), nil
	}

	if m := waypointRe.FindStringSubmatch(s); m != nil && p.Waypoints != nil {
		wp, err := p.Waypoints.GetWaypoint(ctx, m[1])
		if errors.Is(err, data.ErrWaypointNotFound) {
			// Not ours; a fallback translator may still understand it.
			return model.CommandRequest{}, &Error{Detail: fmt.Sprintf("Unknown waypoint %q", m[1]), Err: ErrNoMatch}
		}
		if err != nil {
			return model.CommandRequest{}, wrapError(err)
		}
		return moveRequest(wp.Position), nil
	}

	return model.CommandRequest{}, &Error{Detail: fmt.Sprintf("Unrecognized command %q", text), Err: ErrNoMatch}
}

func moveRequest(pos [3]float64) model.CommandRequest {
	// -0 from scaling a zero component prints as "-0"; normalize it.
	for i := range pos {
		if pos[i] == 0 {
			pos[i] = 0
		}
	}
	return model.CommandRequest{
		Name:      model.CommandMove,
		Arguments: map[string]any{"position": []any{pos[0], pos[1], pos[2]}},
	}
}
