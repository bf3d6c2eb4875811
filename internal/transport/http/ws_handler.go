package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"truthschool-funnel/internal/app"
	"truthschool-funnel/internal/domain"
	"truthschool-funnel/internal/flow"
)

// WSHandler serves one waitlist flow per WebSocket connection. The connection
// is the page visit: closing it ends the visit and cancels any pending redirect.
type WSHandler struct {
	service  *app.FunnelService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(service *app.FunnelService, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type emailPayload struct {
	Value string `json:"value"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Value      string `json:"value"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type visitPayload struct {
	ID string `json:"id"`
}

type redirectPayload struct {
	Target string `json:"target"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs a fresh flow until the client disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	enqueue := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-closeSignals:
		}
	}

	// The countdown may navigate from its own goroutine, so redirects go
	// through the same queue as everything else.
	nav := flow.NavigatorFunc(func(target string) {
		enqueue(outboundMessage[any]{Type: "redirect", Payload: redirectPayload{Target: target}})
	})

	ctx, cancelCtx := context.WithCancel(r.Context())
	defer cancelCtx()

	visit, err := h.service.Open(ctx, nav)
	if err != nil {
		h.log.Error().Err(err).Msg("visit not opened")
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	log := h.log.With().Str("visit", visit.ID).Logger()

	updates, unsubscribe := visit.Flow.Subscribe()

	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-send:
				if err := conn.WriteJSON(msg); err != nil {
					log.Debug().Err(err).Msg("ws write error")
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	machine := visit.Flow.Machine()
	go func() {
		defer close(updatesDone)
		for {
			select {
			case state, ok := <-updates:
				if !ok {
					return
				}
				enqueue(outboundMessage[any]{Type: "state", Payload: machine.View(state)})
			case <-closeSignals:
				return
			}
		}
	}()

	enqueue(outboundMessage[any]{Type: "visit", Payload: visitPayload{ID: visit.ID}})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.service.Touch(ctx, visit.ID)
		if err := h.handle(ctx, visit.Flow, inbound); err != nil {
			log.Debug().Err(err).Str("type", inbound.Type).Msg("action rejected")
			enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		}
	}

	cancelCtx()
	close(closeSignals)
	h.service.Close(visit.ID)
	unsubscribe()
	<-updatesDone
	<-writerDone
}

var (
	errUnsupportedMessage = errors.New("unsupported message type")
	errInvalidPayload     = errors.New("invalid payload")
)

func (h *WSHandler) handle(ctx context.Context, c *flow.Controller, in inboundMessage) error {
	switch in.Type {
	case "email":
		var payload emailPayload
		if err := json.Unmarshal(in.Payload, &payload); err != nil {
			return fmt.Errorf("email: %w", errInvalidPayload)
		}
		return c.SetEmail(payload.Value)
	case "submitEmail":
		return c.SubmitEmail(ctx)
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(in.Payload, &payload); err != nil {
			return fmt.Errorf("answer: %w", errInvalidPayload)
		}
		return c.Answer(domain.QuestionID(payload.QuestionID), payload.Value)
	case "next":
		return c.Next(ctx)
	case "continue":
		return c.Continue()
	case "skip":
		return c.Skip()
	default:
		return errUnsupportedMessage
	}
}
