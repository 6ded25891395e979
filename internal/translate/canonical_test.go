package translate

import (
	"errors"
	"testing"
)

func TestCanonicalizeDirections(t *testing.T) {
	cases := map[string]string{
		`{"type":"move","position":[1,0,0]}`:   "move right 1 meter",
		`{"type":"move","position":[-1,0,0]}`:  "move left 1 meter",
		`{"type":"move","position":[0,1,0]}`:   "move forward 1 meter",
		`{"type":"move","position":[0,-1,0]}`:  "move backward 1 meter",
		`{"type":"move","position":[0,0,1]}`:   "move up 1 meter",
		`{"type":"move","position":[0,0,-1]}`:  "move down 1 meter",
		`{"type":"move","position":[2,0,0]}`:   "move to position (2, 0, 0)",
		`{"type":"move","position":[0.5,-1,3]}`: "move to position (0.5, -1, 3)",
		`{"name":"move","arguments":{"position":[0,0,1]}}`: "move up 1 meter",
	}
	for frame, want := range cases {
		got, err := Canonicalize(frame)
		if err != nil {
			t.Fatalf("frame %s: unexpected error %v", frame, err)
		}
		if got != want {
			t.Fatalf("frame %s: expected %q, got %q", frame, want, got)
		}
	}
}

func TestCanonicalizePassesThroughUnrecognized(t *testing.T) {
	frames := []string{
		"move right 2 meters",
		`["not","an","object"]`,
		`{"type":"rotate","position":[1,0,0]}`,
		`{"type":"move"}`,
		`{"hello":"world"}`,
		`{"name":"move"}`,
		`null`,
	}
	for _, frame := range frames {
		got, err := Canonicalize(frame)
		if err != nil {
			t.Fatalf("frame %s: unexpected error %v", frame, err)
		}
		if got != frame {
			t.Fatalf("frame %s: expected passthrough, got %q", frame, got)
		}
	}
}

func TestCanonicalizeRejectsBadPosition(t *testing.T) {
	for _, frame := range []string{
		`{"type":"move","position":[1,0]}`,
		`{"type":"move","position":"up"}`,
		`{"name":"move","arguments":{"position":[1,"a",0]}}`,
	} {
		_, err := Canonicalize(frame)
		var terr *Error
		if !errors.As(err, &terr) {
			t.Fatalf("frame %s: expected translation error, got %v", frame, err)
		}
	}
}
