package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/SAP-F-2025/proficiency-service/internal/services"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
	"github.com/SAP-F-2025/proficiency-service/internal/validator"
)

const liveWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveMessage is the envelope for both directions of the live channel.
// Server: tick, tab_switch, error. Client: hidden, visible.
type LiveMessage struct {
	Type             string `json:"type"`
	SessionID        string `json:"session_id,omitempty"`
	RemainingSeconds int    `json:"remaining_seconds,omitempty"`
	State            string `json:"state,omitempty"`
	Expired          bool   `json:"expired,omitempty"`
	AwaySeconds      int    `json:"away_seconds,omitempty"`
	Message          string `json:"message,omitempty"`
}

type LiveHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewLiveHandler(sessionService services.SessionService, validator *validator.Validator, logger utils.Logger) *LiveHandler {
	return &LiveHandler{
		BaseHandler:    NewBaseHandler(logger, validator),
		sessionService: sessionService,
	}
}

// Live streams countdown ticks and receives page visibility changes
// @Router /sessions/{id}/live [get]
func (h *LiveHandler) Live(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	live, err := h.sessionService.Live(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer live.Cancel()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.LogError(c, err, "Failed to upgrade to websocket", "session_id", id)
		return
	}
	defer conn.Close()

	h.LogRequest(c, "Live channel connected", "session_id", id)

	var writeMu sync.Mutex
	send := func(msg LiveMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
		return conn.WriteJSON(msg)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup

	// Ticks -> WebSocket. The channel closes when the session leaves InProgress.
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer conn.Close()
		for {
			select {
			case <-done:
				return
			case tick, ok := <-live.Ticks:
				if !ok {
					_ = send(LiveMessage{Type: "closed", SessionID: id})
					return
				}
				if err := send(LiveMessage{
					Type:             "tick",
					SessionID:        tick.SessionID,
					RemainingSeconds: tick.RemainingSeconds,
					State:            string(tick.State),
					Expired:          tick.Expired,
				}); err != nil {
					return
				}
			}
		}
	}()

	// WebSocket -> visibility tracker
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.LogWarn(c, "Live channel read error", "session_id", id, "error", err)
			}
			break
		}

		var msg LiveMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = send(LiveMessage{Type: "error", Message: "invalid message format"})
			continue
		}

		switch msg.Type {
		case "hidden":
			live.Hidden()
		case "visible":
			away, counted, err := live.Shown()
			if err != nil {
				_ = send(LiveMessage{Type: "error", Message: err.Error()})
				continue
			}
			if counted {
				_ = send(LiveMessage{Type: "tab_switch", SessionID: id, AwaySeconds: int(away.Seconds())})
			}
		default:
			_ = send(LiveMessage{Type: "error", Message: "unknown message type " + msg.Type})
		}
	}

	close(done)
	wg.Wait()
	h.LogRequest(c, "Live channel closed", "session_id", id)
}
