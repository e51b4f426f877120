package agent

import (
	"errors"
	"fmt"

	"keeper-server/internal/codec"
	"keeper-server/internal/core/types/enums"
	"keeper-server/internal/domain"
	"keeper-server/pkg/api"
	"keeper-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

var ErrNoWelcome = errors.New("agent: frame before WELCOME")

// Mirror - клиентская копия партии. Карта создаётся с isServer=false:
// upkeep на ней не работает, золото кучек неизвестно (его шлют только
// в SeatState). Не потокобезопасен.
type Mirror struct {
	Color int

	gm      *domain.GameMap
	seats   map[int]api.SeatState
	tick    int
	winners []int
}

func NewMirror() *Mirror {
	return &Mirror{seats: make(map[int]api.SeatState)}
}

// Apply разбирает один кадр сервера и применяет его к зеркалу.
func (m *Mirror) Apply(frame []byte) error {
	msg, err := api.Decode(frame)
	if err != nil {
		return err
	}

	if w, ok := msg.(*api.Welcome); ok {
		m.Color = int(w.Color)
		m.gm = domain.NewGameMap(int(w.Width), int(w.Height), false)
		m.seats = make(map[int]api.SeatState)
		m.tick = 0
		m.winners = nil
		return nil
	}
	if m.gm == nil {
		return fmt.Errorf("%w: %s", ErrNoWelcome, msg.Type())
	}

	switch v := msg.(type) {
	case *api.AddObject:
		return m.applyAdd(v)

	case *api.RemoveObject:
		obj := m.gm.ObjectByName(v.Name)
		if obj == nil {
			logger.Log.WithField("object", v.Name).Debug("Mirror: remove of unknown object")
			return nil
		}
		m.gm.RemoveRoomObject(obj)

	case *api.SeatState:
		m.seats[int(v.Color)] = *v
		m.applySeat(v)

	case *api.Tick:
		m.tick = int(v.Tick)

	case *api.Victory:
		m.winners = append(m.winners, int(v.Color))

	default:
		logger.Log.WithField("type", msg.Type().String()).Debug("Mirror: ignored message")
	}
	return nil
}

// applyAdd: сначала разбираем тело в черновик, чтобы узнать имя. Известный
// объект обновляется на месте, новый регистрируется с серверным именем.
func (m *Mirror) applyAdd(v *api.AddObject) error {
	scratch, err := domain.NewObjectOfType(enums.ObjectType(v.ObjectType))
	if err != nil {
		return err
	}
	if err := scratch.DecodeFromWire(nil, codec.FromBytes(v.Body)); err != nil {
		return fmt.Errorf("add object: %w", err)
	}

	if existing := m.gm.ObjectByName(scratch.Name()); existing != nil {
		return existing.DecodeFromWire(m.gm, codec.FromBytes(v.Body))
	}

	if err := m.gm.AddObject(scratch); err != nil {
		return err
	}
	if err := m.gm.PlaceObject(scratch, scratch.Position()); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"object": scratch.Name(),
			"pos":    scratch.Position(),
		}).WithError(err).Warn("Mirror: object outside the map")
		m.gm.RemoveRoomObject(scratch)
		return err
	}
	return nil
}

func (m *Mirror) applySeat(v *api.SeatState) {
	seat := m.gm.Seat(int(v.Color))
	if seat == nil {
		seat = domain.NewSeat(int(v.Color), "")
		if err := m.gm.AddSeat(seat); err != nil {
			return
		}
	}
	seat.Mana = v.Mana
	seat.HP = v.HP
	seat.Gold = int(v.Gold)
}

// GameMap возвращает зеркальную карту, nil до WELCOME.
func (m *Mirror) GameMap() *domain.GameMap {
	return m.gm
}

func (m *Mirror) Tick() int {
	return m.tick
}

func (m *Mirror) SeatState(color int) (api.SeatState, bool) {
	st, ok := m.seats[color]
	return st, ok
}

func (m *Mirror) Winners() []int {
	return append([]int(nil), m.winners...)
}
