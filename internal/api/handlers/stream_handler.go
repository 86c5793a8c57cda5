package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"

	"github.com/se360/ride-dispatch/internal/auth"
	"github.com/se360/ride-dispatch/internal/events"
	"github.com/se360/ride-dispatch/internal/stream"
	"github.com/se360/ride-dispatch/pkg/logger"
	"github.com/se360/ride-dispatch/pkg/monitoring"
	"github.com/se360/ride-dispatch/pkg/websocket"
)

// StreamHandler owns the driver location stream endpoint. The
// handshake is rejected before the upgrade when the credential is
// missing, invalid, or not a driver; no presence state is touched on
// any rejected handshake.
type StreamHandler struct {
	Verifier   auth.Verifier
	Hub        *websocket.Hub
	Presence   stream.Presence
	Publisher  events.Publisher
	Monitoring *monitoring.NewRelicApp
	Logger     *logger.Logger
	upgrader   gorilla.Upgrader
}

// NewStreamHandler creates the stream handler with its dependencies
func NewStreamHandler(
	verifier auth.Verifier,
	hub *websocket.Hub,
	presence stream.Presence,
	publisher events.Publisher,
	mon *monitoring.NewRelicApp,
	log *logger.Logger,
	readBufferSize, writeBufferSize int,
) *StreamHandler {
	return &StreamHandler{
		Verifier:   verifier,
		Hub:        hub,
		Presence:   presence,
		Publisher:  publisher,
		Monitoring: mon,
		Logger:     log,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleStream handles GET /v1/drivers/stream
func (h *StreamHandler) HandleStream(c *gin.Context) {
	identity, err := h.authenticate(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	driverID, err := uuid.Parse(identity.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "credential subject is not a driver ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Error("Failed to upgrade to WebSocket", logger.Err(err))
		return
	}

	// The request context dies with the handler; the session outlives it.
	ctx := context.WithoutCancel(c.Request.Context())

	session := stream.NewSession(driverID, h.Presence, h.Publisher, h.Monitoring, h.Logger)
	if err := session.Open(ctx); err != nil {
		h.Logger.Error("Failed to open driver session", logger.Err(err))
		conn.Close()
		return
	}

	client := websocket.NewClient(h.Hub, conn, driverID.String(), h.Logger)
	h.Hub.Register(client)

	go client.WritePump()
	go func() {
		client.ReadPump(func(data []byte) error {
			return session.HandleMessage(ctx, data)
		})
		session.Close(ctx)
	}()
}

// authenticate extracts and verifies the driver credential from the
// Authorization header or the token query parameter
func (h *StreamHandler) authenticate(c *gin.Context) (*auth.Identity, error) {
	credential := ""
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		credential = strings.TrimPrefix(header, "Bearer ")
	} else if token := c.Query("token"); token != "" {
		credential = token
	}
	if credential == "" {
		return nil, auth.ErrMissingToken
	}

	identity, err := h.Verifier.Verify(credential)
	if err != nil {
		return nil, err
	}
	if identity.Role != auth.RoleDriver {
		return nil, auth.ErrRoleForbidden
	}
	return identity, nil
}
