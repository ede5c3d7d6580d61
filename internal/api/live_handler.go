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
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"resumePreview/internal/auth"
	"resumePreview/internal/exporter"
	"resumePreview/internal/metrics"
	"resumePreview/internal/photo"
	"resumePreview/internal/photo/objecturl"
	"resumePreview/internal/preview"
	"resumePreview/internal/resume"
)

const (
	liveAuthTimeout     = 10 * time.Second
	livePingInterval    = 30 * time.Second
	liveWriteTimeout    = 5 * time.Second
	defaultLiveMsgBytes = 4 << 20
)

// 客户端消息类型。
const (
	liveMsgAuth   = "auth"
	liveMsgUpdate = "update"
	liveMsgResize = "resize"
	liveMsgMount  = "mount"
)

// LiveHandler 处理实时预览连接：客户端先发送 auth，之后推送记录与容器宽度，
// 服务端对每条消息回一帧；导出完成等通知通过 Redis 频道转发。
type LiveHandler struct {
	redisClient    redis.UniversalClient
	authService    *auth.AuthService
	blobs          *objecturl.Store
	photos         photoLinker
	logger         *slog.Logger
	upgrader       websocket.Upgrader
	allowedOrigins []string
	maxMsgBytes    int64
}

// NewLiveHandler 构造实时预览处理器。blobs 为 nil 时二进制照片以 data URI 内联。
func NewLiveHandler(
	redisClient redis.UniversalClient,
	authService *auth.AuthService,
	blobs *objecturl.Store,
	photos photoLinker,
	logger *slog.Logger,
	allowedOrigins []string,
	maxMsgBytes int64,
) *LiveHandler {
	if maxMsgBytes <= 0 {
		maxMsgBytes = defaultLiveMsgBytes
	}
	h := &LiveHandler{
		redisClient:    redisClient,
		authService:    authService,
		blobs:          blobs,
		photos:         photos,
		logger:         logger,
		allowedOrigins: allowedOrigins,
		maxMsgBytes:    maxMsgBytes,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *LiveHandler) checkOrigin(r *http.Request) bool {
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

type liveInbound struct {
	Type   string         `json:"type"`
	Token  string         `json:"token,omitempty"`
	Record *resume.Record `json:"record,omitempty"`
	Width  float64        `json:"width,omitempty"`
}

type liveOutbound struct {
	Type  string         `json:"type"`
	Frame *preview.Frame `json:"frame,omitempty"`
	Error string         `json:"error,omitempty"`
}

// liveConn 串行化写操作，gorilla/websocket 不允许并发写。
type liveConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *liveConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	return c.conn.WriteJSON(v)
}

func (c *liveConn) writeText(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *liveConn) ping() error {
	return c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(liveWriteTimeout))
}

func (c *liveConn) close(code int, text string) {
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(liveWriteTimeout))
}

// HandleConnection 升级连接，鉴权后进入读循环。
// GET /v1/preview/live
func (h *LiveHandler) HandleConnection(c *gin.Context) {
	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer raw.Close()
	raw.SetReadLimit(h.maxMsgBytes)
	conn := &liveConn{conn: raw}

	baseLog := h.logger.With(slog.String("client_ip", c.ClientIP()))

	userID, err := h.authenticate(raw)
	if err != nil {
		baseLog.Warn("live preview authentication failed", slog.Any("error", err))
		conn.close(websocket.ClosePolicyViolation, "unauthorized")
		return
	}
	log := baseLog.With(slog.Uint64("user_id", uint64(userID)))
	log.Info("live preview authenticated")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := preview.NewSession(h.allocator(), preview.WithLogger(log), preview.WithHooks(metrics.PreviewHooks()))
	metrics.SessionOpened()
	defer func() {
		session.Close()
		metrics.SessionClosed()
	}()

	// 首帧在挂载前发出：未缩放、不含照片。
	first := session.Render()
	if err := conn.writeJSON(liveOutbound{Type: "frame", Frame: &first}); err != nil {
		log.Info("write first frame failed", slog.Any("error", err))
		return
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		if err := h.forwardNotifications(ctx, conn, userID, log); err != nil && !errors.Is(err, context.Canceled) {
			log.Info("notification loop stopped", slog.Any("error", err))
			// 让阻塞中的读循环返回。
			_ = raw.Close()
		}
	}()

	err = h.readLoop(ctx, raw, conn, session, userID)
	cancel()
	wg.Wait()
	if err != nil {
		log.Info("live preview closed", slog.Any("error", err))
	} else {
		log.Info("live preview closed")
	}
}

func (h *LiveHandler) allocator() photo.Allocator {
	if h.blobs == nil {
		return photo.InlineAllocator{}
	}
	return h.blobs
}

// authenticate 读取第一条消息，要求是携带访问令牌的 auth 消息。
func (h *LiveHandler) authenticate(conn *websocket.Conn) (uint, error) {
	_ = conn.SetReadDeadline(time.Now().Add(liveAuthTimeout))
	defer conn.SetReadDeadline(time.Time{})

	var msg liveInbound
	if err := conn.ReadJSON(&msg); err != nil {
		return 0, fmt.Errorf("decode auth payload: %w", err)
	}
	if msg.Type != liveMsgAuth || msg.Token == "" {
		return 0, errors.New("auth message required")
	}
	claims, err := h.authService.ValidateAccessToken(msg.Token)
	if err != nil {
		return 0, fmt.Errorf("validate token: %w", err)
	}
	return claims.UserID, nil
}

func (h *LiveHandler) readLoop(ctx context.Context, raw *websocket.Conn, conn *liveConn, session *preview.Session, userID uint) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, payload, err := raw.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		var msg liveInbound
		if err := json.Unmarshal(payload, &msg); err != nil {
			if werr := conn.writeJSON(liveOutbound{Type: "error", Error: "invalid message"}); werr != nil {
				return werr
			}
			continue
		}

		switch msg.Type {
		case liveMsgUpdate:
			if msg.Record == nil {
				if err := conn.writeJSON(liveOutbound{Type: "error", Error: "record required"}); err != nil {
					return err
				}
				continue
			}
			session.Update(h.photos.link(ctx, userID, *msg.Record))
		case liveMsgResize:
			if !session.Resize(msg.Width) {
				continue
			}
		case liveMsgMount:
			session.Mount()
		default:
			if err := conn.writeJSON(liveOutbound{Type: "error", Error: "unknown message type"}); err != nil {
				return err
			}
			continue
		}

		frame := session.Render()
		if err := conn.writeJSON(liveOutbound{Type: "frame", Frame: &frame}); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
	}
}

// forwardNotifications 把 user_notify:<uid> 上的消息原样推给客户端，并定期发送 ping。
func (h *LiveHandler) forwardNotifications(ctx context.Context, conn *liveConn, userID uint, log *slog.Logger) error {
	channel := exporter.NotifyChannel(userID)
	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	ticker := time.NewTicker(livePingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return errors.New("pubsub channel closed")
			}
			log.Info("forwarding notification", slog.String("channel", channel))
			if err := conn.writeText([]byte(msg.Payload)); err != nil {
				return fmt.Errorf("write notification: %w", err)
			}
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return fmt.Errorf("write ping: %w", err)
			}
		}
	}
}
