package ws

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"bullet-relay/server/internal/model"
	"bullet-relay/server/internal/translate"
)

// TextHandler runs free text through translation and dispatch.
type TextHandler interface {
	HandleText(ctx context.Context, text string) model.Result
}

// Handler handles a single WebSocket connection.
type Handler struct {
	Conn   *websocket.Conn
	App    TextHandler
	SendMu sync.Mutex
}

// NewHandler creates a new WebSocket handler.
func NewHandler(conn *websocket.Conn, app TextHandler) *Handler {
	return &Handler{
		Conn: conn,
		App:  app,
	}
}

// Send writes one JSON frame.
func (h *Handler) Send(v any) error {
	h.SendMu.Lock()
	defer h.SendMu.Unlock()
	return h.Conn.WriteJSON(v)
}

// Loop reads frames until the client goes away. Frames are handled in
// order; a failing frame only produces an error reply.
func (h *Handler) Loop(ctx context.Context) {
	defer h.Conn.Close()

	for {
		mt, frame, err := h.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Printf("[WS] Read error: %v", err)
			} else {
				log.Printf("[WS] Client disconnected")
			}
			return
		}
		var reply any
		if mt == websocket.TextMessage {
			reply = h.handleFrame(ctx, string(frame))
		} else {
			reply = model.StreamError{Error: model.StreamErrInvalidFormat, Details: "text frames only"}
		}
		if err := h.Send(reply); err != nil {
			log.Printf("[WS] Write error: %v", err)
			return
		}
	}
}

func (h *Handler) handleFrame(ctx context.Context, frame string) (reply any) {
	ctx, id := model.EnsureRequestID(ctx)
	log.Printf("[WS] %s Received command: %s", id, frame)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WS] %s Unexpected error: %v", id, r)
			reply = model.StreamError{Error: model.StreamErrInternal, Details: fmt.Sprint(r)}
		}
	}()

	text, err := translate.Canonicalize(frame)
	if err != nil {
		return streamError(err)
	}
	if text != frame {
		log.Printf("[WS] %s Canonicalized to %q", id, text)
	}

	res := h.App.HandleText(ctx, text)
	log.Printf("[WS] %s Command result: %s %+v", id, res.Kind, res.Response)
	return Reply(res)
}

// Reply collapses a result into the frame sent back on the stream.
func Reply(res model.Result) any {
	switch res.Kind {
	case model.ResultTranslationError:
		return model.StreamError{Error: model.StreamErrInvalidFormat, Details: res.Response.Message}
	case model.ResultInternalError:
		return model.StreamError{Error: model.StreamErrInternal, Details: res.Response.Message}
	default:
		return res.Response
	}
}

func streamError(err error) model.StreamError {
	var terr *translate.Error
	if errors.As(err, &terr) {
		return model.StreamError{Error: model.StreamErrInvalidFormat, Details: terr.Error()}
	}
	return model.StreamError{Error: model.StreamErrInternal, Details: err.Error()}
}
