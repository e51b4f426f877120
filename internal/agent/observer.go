package agent

import (
	"context"
	"fmt"

	"keeper-server/pkg/api"
	"keeper-server/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Observer подключается к серверу как обычный клиент, представляется
// местом Color и ведёт Mirror по входящим кадрам.
//
// Жизненный цикл:
//  1. Run -> Dial, отправка HELLO.
//  2. Каждый кадр уходит в Mirror.Apply; битые кадры пропускаются.
//  3. После каждого TICK вызывается OnTick (из горутины Run).
//  4. Отмена ctx или закрытие соединения сервером завершают Run.
type Observer struct {
	URL    string
	Color  int
	Mirror *Mirror

	// OnTick получает зеркало после каждой пачки обновлений.
	OnTick func(m *Mirror)
}

func NewObserver(url string, color int) *Observer {
	return &Observer{URL: url, Color: color, Mirror: NewMirror()}
}

func (o *Observer) log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": "observer",
		"seat":      o.Color,
	})
}

// Run блокируется до отмены ctx или разрыва соединения.
func (o *Observer) Run(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, o.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", o.URL, err)
	}
	defer conn.Close()

	hello, err := api.Encode(&api.Hello{Color: int32(o.Color)})
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, hello); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}

	// ReadMessage не знает про ctx: закрываем соединение сами
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		case <-stop:
		}
	}()

	o.log().WithField("url", o.URL).Info("Observer connected")

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}
		if kind != websocket.BinaryMessage || len(data) == 0 {
			continue
		}

		if err := o.Mirror.Apply(data); err != nil {
			o.log().WithError(err).Debug("Frame skipped")
			continue
		}
		if api.MessageType(data[0]) == api.MsgTick && o.OnTick != nil {
			o.OnTick(o.Mirror)
		}
	}
}
