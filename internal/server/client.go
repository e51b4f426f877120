package server

import (
	"context"
	"errors"
	"time"

	"keeper-server/internal/engine"
	"keeper-server/pkg/api"
	"keeper-server/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	handshakeWait  = 10 * time.Second
	maxMessageSize = 512
)

var errBadHandshake = errors.New("first frame must be a HELLO")

// Client - посредник между Websocket и движком партии
type Client struct {
	Game      *engine.Service
	Conn      *websocket.Conn
	SessionID string
	SeatColor int

	readLimit int64
}

func NewClient(game *engine.Service, conn *websocket.Conn, readLimit int64) *Client {
	if readLimit <= 0 {
		readLimit = maxMessageSize
	}
	return &Client{
		Game:      game,
		Conn:      conn,
		SessionID: uuid.NewString(),
		readLimit: readLimit,
	}
}

func (c *Client) log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": "ws_client",
		"session":   c.SessionID,
		"seat":      c.SeatColor,
	})
}

// handshake ждёт HELLO и подключает сессию к месту.
func (c *Client) handshake(ctx context.Context) (<-chan []byte, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(handshakeWait)); err != nil {
		return nil, err
	}
	kind, data, err := c.Conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	if kind != websocket.BinaryMessage {
		return nil, errBadHandshake
	}

	msg, err := api.Decode(data)
	if err != nil {
		return nil, err
	}
	hello, ok := msg.(*api.Hello)
	if !ok {
		return nil, errBadHandshake
	}
	if err := hello.Validate(); err != nil {
		return nil, err
	}

	c.SeatColor = int(hello.Color)
	return c.Game.Join(ctx, c.SessionID, c.SeatColor)
}

// readPump читает команды от клиента. Запускает writePump после рукопожатия.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		if err := c.Conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("failed to close websocket connection")
		}
	}()

	c.Conn.SetReadLimit(c.readLimit)

	// 1. HANDSHAKE (HELLO)
	frames, err := c.handshake(ctx)
	if err != nil {
		c.log().WithError(err).Warn("Handshake failed")
		_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.Conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
		return
	}
	defer c.Game.Leave(c.SessionID)

	c.log().Info("Client joined")

	// 2. ПОДПИСКА НА ОБНОВЛЕНИЯ
	go c.writePump(frames)

	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// 3. ЦИКЛ ЧТЕНИЯ КОМАНД
	for {
		kind, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log().WithError(err).Warn("WS read error")
			}
			break
		}
		if kind != websocket.BinaryMessage {
			continue
		}

		// Битый кадр отбрасывается целиком, соединение живёт дальше
		msg, err := api.Decode(data)
		if err != nil {
			c.log().WithError(err).Debug("Dropped malformed frame")
			continue
		}
		if err := c.Game.ProcessCommand(ctx, engine.Command{SessionID: c.SessionID, Msg: msg}); err != nil {
			break
		}
	}
	c.log().Info("Client disconnected")
}

// writePump отправляет кадры клиенту + Ping
func (c *Client) writePump(frames <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.Conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case frame, ok := <-frames:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logger.Log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.Conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				logger.Log.WithError(err).Debug("write frame failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
