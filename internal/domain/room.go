package domain

import (
	"fmt"

	"keeper-server/internal/codec"
	"keeper-server/internal/core/types/enums"
)

// Room - стационарная постройка на нескольких клетках. Набор типов закрыт:
// реализации встраивают baseRoom и создаются через NewRoom.
type Room interface {
	ID() RoomID
	Type() enums.RoomType
	Seat() *Seat
	Tiles() []*Tile
	CoversTile(t *Tile) bool

	// Состояние, специфичное для типа, в потоке сохранения (после списка клеток).
	// Decode получает клетки записи: комната читается целиком до AddRoom.
	EncodeStateForSave(w *codec.StreamWriter)
	DecodeStateFromSave(r *codec.StreamReader, tiles []*Tile) error

	base() *baseRoom
}

type baseRoom struct {
	id       RoomID
	roomType enums.RoomType
	seat     *Seat
	tiles    []*Tile
}

func (r *baseRoom) ID() RoomID           { return r.id }
func (r *baseRoom) Type() enums.RoomType { return r.roomType }
func (r *baseRoom) Seat() *Seat          { return r.seat }
func (r *baseRoom) base() *baseRoom      { return r }

// Tiles возвращает клетки комнаты в порядке добавления.
func (r *baseRoom) Tiles() []*Tile {
	out := make([]*Tile, len(r.tiles))
	copy(out, r.tiles)
	return out
}

func (r *baseRoom) CoversTile(t *Tile) bool {
	if t == nil {
		return false
	}
	for _, own := range r.tiles {
		if own == t {
			return true
		}
	}
	return false
}

func (r *baseRoom) EncodeStateForSave(*codec.StreamWriter) {}

func (r *baseRoom) DecodeStateFromSave(*codec.StreamReader, []*Tile) error { return nil }

// Dormitory - комната без хранилища (логово существ).
type Dormitory struct {
	baseRoom
}

func NewDormitory(seat *Seat) *Dormitory {
	return &Dormitory{baseRoom{roomType: enums.RoomTypeDormitory, seat: seat}}
}

// RoomOptions - параметры, общие для всех фабрик комнат.
type RoomOptions struct {
	MaxGoldPerTile int // 0 - без ограничения
}

var roomFactories = map[enums.RoomType]func(seat *Seat, opts RoomOptions) Room{
	enums.RoomTypeTreasury: func(seat *Seat, opts RoomOptions) Room {
		return NewTreasury(seat, opts.MaxGoldPerTile)
	},
	enums.RoomTypeDormitory: func(seat *Seat, _ RoomOptions) Room {
		return NewDormitory(seat)
	},
}

// NewRoom создаёт комнату по тегу типа.
func NewRoom(roomType enums.RoomType, seat *Seat, opts RoomOptions) (Room, error) {
	factory, ok := roomFactories[roomType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoomType, roomType)
	}
	return factory(seat, opts), nil
}
