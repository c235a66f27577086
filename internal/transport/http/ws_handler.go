package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// WSHandler bridges one browser (the presentation layer) to one quiz
// session over a websocket. The browser sends intents; every session
// transition comes back as an event to re-render from.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
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

type selectPayload struct {
	Choice string `json:"choice"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type idlePayload struct {
	LastSettings *domain.Settings `json:"lastSettings,omitempty"`
}

// connState is the per-connection session slot. The read loop and the async
// start goroutine both touch it.
type connState struct {
	mu        sync.Mutex
	session   *app.Session
	cancelSub func()
	settings  domain.Settings
}

func (c *connState) swap(session *app.Session, cancelSub func(), settings domain.Settings) (*app.Session, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	old, oldCancel := c.session, c.cancelSub
	c.session, c.cancelSub, c.settings = session, cancelSub, settings
	return old, oldCancel
}

func (c *connState) current() (*app.Session, domain.Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session, c.settings
}

// ServeWS upgrades the request and runs the intent/event loop until the
// client disconnects. Disconnecting mid-session counts as quitting.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	state := &connState{}
	defer func() {
		// The socket owns the session; a vanished client must not leave a
		// countdown running.
		h.service.Cancel()
		if old, oldCancel := state.swap(nil, nil, domain.Settings{}); old != nil {
			old.Quit()
			oldCancel()
		}
	}()

	send <- outboundMessage[any]{Type: "idle", Payload: h.idlePayload(r.Context())}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		switch inbound.Type {
		case "start", "restart":
			var settings domain.Settings
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &settings); err != nil {
					send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid settings payload"}}
					continue
				}
			} else if _, prev := state.current(); inbound.Type == "restart" {
				settings = prev
			}
			h.startSession(r.Context(), state, settings, send)
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid select payload"}}
				continue
			}
			if session, _ := state.current(); session != nil {
				session.Select(payload.Choice)
			}
		case "submit":
			if session, _ := state.current(); session != nil {
				session.Submit()
			}
		case "skip":
			if session, _ := state.current(); session != nil {
				session.Skip()
			}
		case "next":
			if session, _ := state.current(); session != nil {
				session.Advance()
			}
		case "quit":
			h.service.Cancel()
			if old, oldCancel := state.swap(nil, nil, domain.Settings{}); old != nil {
				old.Quit()
				oldCancel()
			}
			send <- outboundMessage[any]{Type: "idle", Payload: h.idlePayload(r.Context())}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(send)
	<-writerDone
}

// startSession fetches questions off the read loop so a quit can abandon an
// in-flight fetch; a superseded start applies nothing.
func (h *WSHandler) startSession(ctx context.Context, state *connState, settings domain.Settings, send chan<- outboundMessage[any]) {
	if old, oldCancel := state.swap(nil, nil, domain.Settings{}); old != nil {
		old.Quit()
		oldCancel()
	}

	go func() {
		session, err := h.service.Start(ctx, settings)
		if err != nil {
			if errors.Is(err, domain.ErrStartSuperseded) {
				return
			}
			safeSend(send, outboundMessage[any]{Type: "error", Payload: errorPayload{Message: userMessage(err)}})
			return
		}

		events, cancelSub := session.Subscribe()
		if old, oldCancel := state.swap(session, cancelSub, settings); old != nil {
			old.Quit()
			oldCancel()
		}

		for event := range events {
			safeSend(send, outboundMessage[any]{Type: string(event.Kind), Payload: event})
		}
	}()
}

func (h *WSHandler) idlePayload(ctx context.Context) idlePayload {
	if settings, ok := h.service.LastSettings(ctx); ok {
		return idlePayload{LastSettings: &settings}
	}
	return idlePayload{}
}

// safeSend tolerates the send channel closing while an event pump or a late
// start result is still in flight.
func safeSend(send chan<- outboundMessage[any], msg outboundMessage[any]) {
	defer func() { _ = recover() }()
	send <- msg
}

// userMessage maps internal errors onto user-facing text without leaking
// detail. Distinct cases mirror the recoverable error taxonomy.
func userMessage(err error) string {
	var rangeErr *domain.RangeError
	var apiErr *domain.APIError
	switch {
	case errors.As(err, &rangeErr):
		return rangeErr.Error()
	case errors.Is(err, domain.ErrEmptyResult):
		return "no questions found for these filters, try different settings"
	case errors.Is(err, domain.ErrFetchTimeout):
		return "the question service took too long to respond, please retry"
	case errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return "something went wrong, please try again"
	}
}
