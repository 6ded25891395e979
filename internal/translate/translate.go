// Package translate turns free text into structured commands.
package translate

import (
	"context"
	"errors"
	"fmt"

	"bullet-relay/server/internal/model"
)

// Translator converts a free-text command into a structured request.
type Translator interface {
	Translate(ctx context.Context, text string) (model.CommandRequest, error)
}

// ErrNoMatch is returned by the phrase translator for text it does not
// understand.
var ErrNoMatch = errors.New("unrecognized command")

// Error is a translation failure. Its message is shown to the caller.
type Error struct {
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return "Command parsing error: " + e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

func parseError(detail string) error {
	return &Error{Detail: detail}
}

func wrapError(err error) error {
	var terr *Error
	if errors.As(err, &terr) {
		return err
	}
	return &Error{Detail: err.Error(), Err: err}
}

// Modes accepted by New.
const (
	ModeLLM    = "llm"
	ModePhrase = "phrase"
	ModeAuto   = "auto"
)

// New selects a translator for mode. llm may be nil when no API key is
// configured; auto then degrades to phrase only.
func New(mode string, phrase *Phrase, llm Translator) (Translator, error) {
	switch mode {
	case ModePhrase:
		return phrase, nil
	case ModeLLM:
		if llm == nil {
			return nil, fmt.Errorf("translator mode %q requires an API key", mode)
		}
		return llm, nil
	case ModeAuto, "":
		if llm == nil {
			return phrase, nil
		}
		return &Fallback{Primary: phrase, Secondary: llm}, nil
	default:
		return nil, fmt.Errorf("unknown translator mode %q", mode)
	}
}

// Fallback asks Secondary only when Primary reports ErrNoMatch.
type Fallback struct {
	Primary   Translator
	Secondary Translator
}

func (f *Fallback) Translate(ctx context.Context, text string) (model.CommandRequest, error) {
	req, err := f.Primary.Translate(ctx, text)
	if errors.Is(err, ErrNoMatch) {
		return f.Secondary.Translate(ctx, text)
	}
	return req, err
}
