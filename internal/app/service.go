package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"bullet-relay/server/internal/model"
	"bullet-relay/server/internal/translate"
)

// Service joins text translation and command dispatch. Both front ends go
// through it.
type Service struct {
	Translator translate.Translator
	Dispatcher *Dispatcher
}

// NewService creates a new application service.
func NewService(t translate.Translator, d *Dispatcher) *Service {
	return &Service{
		Translator: t,
		Dispatcher: d,
	}
}

// HandleText translates free text and dispatches the resulting command.
// A translation failure never reaches the simulator.
func (s *Service) HandleText(ctx context.Context, text string) (res model.Result) {
	ctx, id := model.EnsureRequestID(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[DISPATCH] %s Error handling command: %v", id, r)
			err := fmt.Errorf("%v", r)
			res = model.Failure(model.ResultInternalError, "Error: "+err.Error(), err)
		}
	}()

	req, err := s.Translator.Translate(ctx, text)
	if err != nil {
		log.Printf("[DISPATCH] %s Translation failed: %v", id, err)
		var terr *translate.Error
		if errors.As(err, &terr) {
			return model.Failure(model.ResultTranslationError, terr.Error(), err)
		}
		return model.Failure(model.ResultTranslationError, (&translate.Error{Detail: err.Error()}).Error(), err)
	}
	log.Printf("[DISPATCH] %s Parsed command: %s %v", id, req.Name, req.Arguments)
	return s.Dispatcher.Handle(ctx, req)
}
