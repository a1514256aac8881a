package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
)

// FallbackMessage is returned when the bot produced no reply.
const FallbackMessage = "What can I help you with?"

var validate = validator.New()

// Config is read with the HTTP prefix.
type Config struct {
	Addr            string        `default:":8080"`
	ReadTimeout     time.Duration `split_words:"true" default:"10s"`
	WriteTimeout    time.Duration `split_words:"true" default:"30s"`
	ShutdownTimeout time.Duration `split_words:"true" default:"15s"`
}

// ChatService answers free-text chat messages.
type ChatService interface {
	HandleMessage(ctx context.Context, sessionID string, text string) ([]string, error)
}

type Server struct {
	chat  ChatService
	turns contractx.TurnHandler

	now   func() time.Time
	newID func() string
}

func NewServer(chat ChatService, turns contractx.TurnHandler) *Server {
	return &Server{
		chat:  chat,
		turns: turns,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// RegisterRoutes wires the chat front-end, the dialogue code hook and the
// health probe.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Use(logRequests)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	if s.chat != nil {
		r.HandleFunc("/chatbot", s.chatHandler).Methods(http.MethodPost)
	}
	if s.turns != nil {
		r.HandleFunc("/dialogue/turn", s.turnHandler).Methods(http.MethodPost)
	}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.RegisterRoutes(r)
	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	text := req.Text()
	if text == "" {
		writeError(w, http.StatusBadRequest, "message text is required")
		return
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = s.newID()
	}

	ctx := r.Context()
	replies, err := s.chat.HandleMessage(ctx, sessionID, text)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("session_id", sessionID).Msg("chat message failed")
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	if len(replies) == 0 {
		replies = []string{FallbackMessage}
	}

	ts := s.now().UnixMilli()
	out := ChatResponse{SessionID: sessionID, Messages: make([]ChatMessage, 0, len(replies))}
	for _, reply := range replies {
		out.Messages = append(out.Messages, ChatMessage{
			Type: MessageTypeUnstructured,
			Unstructured: Unstructured{
				ID:        s.newID(),
				Text:      reply,
				Timestamp: ts,
			},
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) turnHandler(w http.ResponseWriter, r *http.Request) {
	var req contractx.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "schema validation failed: "+err.Error())
		return
	}

	ctx := r.Context()
	resp, err := s.turns.HandleTurn(ctx, req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, contractx.ErrSubmitFailed):
		log.Ctx(ctx).Error().Err(err).Str("session_id", req.SessionID).Msg("reservation submit failed")
		writeJSON(w, http.StatusOK, contractx.Close(
			req.SessionState.SessionAttributes,
			req.Intent(),
			contractx.IntentStateFailed,
			contractx.FailureMessage,
		))
	case errors.Is(err, contractx.ErrValidation), errors.Is(err, contractx.ErrUnsupportedIntent):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Ctx(ctx).Error().Err(err).Str("session_id", req.SessionID).Msg("dialogue turn failed")
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Code: status, Message: message})
}
