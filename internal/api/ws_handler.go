package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/kemalcalak/Resume-Builder/internal/api/middleware"
	"github.com/kemalcalak/Resume-Builder/internal/tasks"
)

const wsAuthTimeout = 10 * time.Second

// WsHandler authenticates a websocket with its first message and then relays
// the owner's Redis notifications.
type WsHandler struct {
	redisClient    *redis.Client
	verifier       middleware.TokenVerifier
	logger         *slog.Logger
	upgrader       websocket.Upgrader
	allowedOrigins []string
}

// NewWsHandler builds a WsHandler. With no allowed origins only same-host origins pass.
func NewWsHandler(redisClient *redis.Client, verifier middleware.TokenVerifier, logger *slog.Logger, allowedOrigins []string) *WsHandler {
	h := &WsHandler{
		redisClient:    redisClient,
		verifier:       verifier,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *WsHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(h.allowedOrigins) == 0 {
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// HandleConnection upgrades the request and runs the read and relay loops.
func (h *WsHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	baseLog := h.logger.With(slog.String("client_ip", c.ClientIP()))

	ownerCh := make(chan string, 1)
	errCh := make(chan error, 2)

	_ = conn.SetReadDeadline(time.Now().Add(wsAuthTimeout))
	go h.readLoop(ctx, conn, ownerCh, errCh, cancel, baseLog)

	var ownerID string
	select {
	case <-ctx.Done():
		return
	case err := <-errCh:
		baseLog.Warn("websocket authentication failed", slog.Any("error", err))
		return
	case ownerID = <-ownerCh:
	}

	ownerLog := baseLog.With(slog.String("owner_id", ownerID))
	go h.subscribeLoop(ctx, conn, ownerID, errCh, cancel, ownerLog)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		ownerLog.Info("websocket connection closed", slog.Any("error", err))
	}
}

func report(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
}

func (h *WsHandler) readLoop(
	ctx context.Context,
	conn *websocket.Conn,
	ownerCh chan<- string,
	errCh chan<- error,
	cancel context.CancelFunc,
	log *slog.Logger,
) {
	authenticated := false
	fail := func(code int, text string, err error) {
		writeClose(conn, code, text)
		report(errCh, err)
		cancel()
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			fail(websocket.CloseAbnormalClosure, "read error", fmt.Errorf("read message: %w", err))
			return
		}
		if authenticated {
			// Clients send nothing after auth; reading only detects disconnects.
			continue
		}

		var authMsg wsAuthMessage
		if err := json.Unmarshal(message, &authMsg); err != nil {
			fail(websocket.ClosePolicyViolation, "invalid auth payload", fmt.Errorf("decode auth payload: %w", err))
			return
		}
		if authMsg.Type != "auth" || authMsg.Token == "" {
			fail(websocket.ClosePolicyViolation, "auth required", errors.New("invalid auth message"))
			return
		}

		identity, err := h.verifier.Verify(authMsg.Token)
		if err != nil {
			fail(websocket.ClosePolicyViolation, "unauthorized", fmt.Errorf("verify token: %w", err))
			return
		}

		authenticated = true
		_ = conn.SetReadDeadline(time.Time{})
		ownerCh <- identity.Subject
		log.Info("websocket authenticated", slog.String("owner_id", identity.Subject))
	}
}

func writeClose(conn *websocket.Conn, code int, text string) {
	deadline := time.Now().Add(5 * time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
}

func (h *WsHandler) subscribeLoop(
	ctx context.Context,
	conn *websocket.Conn,
	ownerID string,
	errCh chan<- error,
	cancel context.CancelFunc,
	log *slog.Logger,
) {
	channel := tasks.NotifyChannel(ownerID)
	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer pubsub.Close()

	log.Info("subscribed to redis channel", slog.String("channel", channel))

	ch := pubsub.Channel()
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				report(errCh, errors.New("pubsub channel closed"))
				cancel()
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				report(errCh, fmt.Errorf("write message: %w", err))
				cancel()
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
				report(errCh, fmt.Errorf("write ping: %w", err))
				cancel()
				return
			}
		}
	}
}
