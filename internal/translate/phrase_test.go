package translate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"bullet-relay/server/internal/command"
	"bullet-relay/server/internal/data"
)

type stubWaypoints map[string][3]float64

func (s stubWaypoints) GetWaypoint(_ context.Context, name string) (*data.Waypoint, error) {
	pos, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", data.ErrWaypointNotFound, name)
	}
	return &data.Waypoint{Name: name, Position: pos}, nil
}

func TestPhraseTranslate(t *testing.T) {
	p := NewPhrase(stubWaypoints{"home": {0, 0, 0.5}})
	cases := map[string][3]float64{
		"move right 1 meter":             {1, 0, 0},
		"Move Left 2 meters.":            {-2, 0, 0},
		"move forward":                   {0, 1, 0},
		"move backward 0.5m":             {0, -0.5, 0},
		"move up 3":                      {0, 0, 3},
		"move   down 1   metre":          {0, 0, -1},
		"move to position (1, 2, 3)":     {1, 2, 3},
		"move to (-1.5,0,2e1)":           {-1.5, 0, 20},
		"move to 4, 5, 6":                {4, 5, 6},
		"move to home":                   {0, 0, 0.5},
		"move to waypoint HOME":          {0, 0, 0.5},
		"move to position (0.5, -1, 3)":  {0.5, -1, 3},
	}
	for text, want := range cases {
		req, err := p.Translate(context.Background(), text)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", text, err)
		}
		pos, err := command.MovePosition(req.Arguments)
		if err != nil {
			t.Fatalf("%q: arguments invalid: %v", text, err)
		}
		if req.Name != "move" || pos != want {
			t.Fatalf("%q: expected %v, got %v", text, want, pos)
		}
	}
}

func TestPhraseRoundTripsCanonicalPhrases(t *testing.T) {
	p := NewPhrase(nil)
	for vec := range directions {
		text := PhraseFor(vec)
		req, err := p.Translate(context.Background(), text)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", text, err)
		}
		pos, _ := command.MovePosition(req.Arguments)
		if pos != vec {
			t.Fatalf("%q: expected %v, got %v", text, vec, pos)
		}
	}
}

func TestPhraseNoMatch(t *testing.T) {
	p := NewPhrase(nil)
	for _, text := range []string{"", "jump", "please go somewhere nice", "move to home"} {
		_, err := p.Translate(context.Background(), text)
		if !errors.Is(err, ErrNoMatch) {
			t.Fatalf("%q: expected ErrNoMatch, got %v", text, err)
		}
	}
}

func TestPhraseUnknownWaypoint(t *testing.T) {
	p := NewPhrase(stubWaypoints{})
	_, err := p.Translate(context.Background(), "move to attic")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected unknown waypoint to be a no-match, got %v", err)
	}
	if err.Error() != `Command parsing error: Unknown waypoint "attic"` {
		t.Fatalf("unexpected message: %s", err)
	}
}
