package api

import (
	"errors"
	"fmt"

	"keeper-server/internal/codec"
)

// MessageType - первый байт каждого бинарного кадра websocket.
type MessageType uint8

const (
	MsgUnknown MessageType = 0

	// --- СЕРВЕР -> КЛИЕНТ ---
	MsgWelcome      MessageType = 1
	MsgAddObject    MessageType = 2
	MsgRemoveObject MessageType = 3
	MsgSeatState    MessageType = 4
	MsgTick         MessageType = 5
	MsgVictory      MessageType = 6

	// --- КЛИЕНТ -> СЕРВЕР ---
	MsgHello  MessageType = 32
	MsgPickup MessageType = 33
	MsgDrop   MessageType = 34
)

var messageTypeToString = map[MessageType]string{
	MsgWelcome:      "WELCOME",
	MsgAddObject:    "ADD_OBJECT",
	MsgRemoveObject: "REMOVE_OBJECT",
	MsgSeatState:    "SEAT_STATE",
	MsgTick:         "TICK",
	MsgVictory:      "VICTORY",
	MsgHello:        "HELLO",
	MsgPickup:       "PICKUP",
	MsgDrop:         "DROP",
}

func (t MessageType) String() string {
	if val, ok := messageTypeToString[t]; ok {
		return val
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(t))
}

var (
	ErrUnknownMessage = errors.New("api: unknown message type")
	ErrTrailingBytes  = errors.New("api: trailing bytes after message")
)

// Message - любое сообщение каталога. Тело пишется после байта типа.
type Message interface {
	Type() MessageType
	encodeBody(p *codec.Packet)
	decodeBody(p *codec.Packet) error
}

// --- СЕРВЕР -> КЛИЕНТ ---

// Welcome отправляется один раз после Hello: какое место выдано и размер карты.
type Welcome struct {
	Color  int32
	Width  int32
	Height int32
}

// AddObject - появление или перемещение объекта. Body - wire-кодировка
// самого объекта (для кучки золота: имя и позиция), разбирает её домен.
type AddObject struct {
	ObjectType uint8
	Body       []byte
}

// RemoveObject - объект уничтожен или ушёл из видимости.
type RemoveObject struct {
	Name string
}

// SeatState - полное состояние места. Золото клиенты узнают только отсюда.
type SeatState struct {
	Color     int32
	Mana      float64
	HP        float64
	Gold      int32
	Pending   int32
	Completed int32
}

// Tick - номер тика, после которого отправлена пачка обновлений.
type Tick struct {
	Tick int32
}

// Victory - место выполнило все цели.
type Victory struct {
	Color int32
}

// --- КЛИЕНТ -> СЕРВЕР ---

// Hello - рукопожатие: запрошенный цвет места.
type Hello struct {
	Color int32
}

// Pickup - взять объект по имени в руку хранителя.
type Pickup struct {
	Name string
}

// Drop - положить последний взятый объект на клетку.
type Drop struct {
	X int32
	Y int32
}

func (Welcome) Type() MessageType      { return MsgWelcome }
func (AddObject) Type() MessageType    { return MsgAddObject }
func (RemoveObject) Type() MessageType { return MsgRemoveObject }
func (SeatState) Type() MessageType    { return MsgSeatState }
func (Tick) Type() MessageType         { return MsgTick }
func (Victory) Type() MessageType      { return MsgVictory }
func (Hello) Type() MessageType        { return MsgHello }
func (Pickup) Type() MessageType       { return MsgPickup }
func (Drop) Type() MessageType         { return MsgDrop }

func (m Welcome) encodeBody(p *codec.Packet) {
	p.WriteInt32(m.Color)
	p.WriteInt32(m.Width)
	p.WriteInt32(m.Height)
}

func (m *Welcome) decodeBody(p *codec.Packet) (err error) {
	if m.Color, err = p.ReadInt32(); err != nil {
		return err
	}
	if m.Width, err = p.ReadInt32(); err != nil {
		return err
	}
	m.Height, err = p.ReadInt32()
	return err
}

func (m AddObject) encodeBody(p *codec.Packet) {
	p.WriteUint8(m.ObjectType)
	p.WriteBytes(m.Body)
}

func (m *AddObject) decodeBody(p *codec.Packet) (err error) {
	if m.ObjectType, err = p.ReadUint8(); err != nil {
		return err
	}
	m.Body = p.ReadRest()
	return nil
}

func (m RemoveObject) encodeBody(p *codec.Packet) {
	p.WriteString(m.Name)
}

func (m *RemoveObject) decodeBody(p *codec.Packet) (err error) {
	m.Name, err = p.ReadString()
	return err
}

func (m SeatState) encodeBody(p *codec.Packet) {
	p.WriteInt32(m.Color)
	p.WriteFloat64(m.Mana)
	p.WriteFloat64(m.HP)
	p.WriteInt32(m.Gold)
	p.WriteInt32(m.Pending)
	p.WriteInt32(m.Completed)
}

func (m *SeatState) decodeBody(p *codec.Packet) (err error) {
	if m.Color, err = p.ReadInt32(); err != nil {
		return err
	}
	if m.Mana, err = p.ReadFloat64(); err != nil {
		return err
	}
	if m.HP, err = p.ReadFloat64(); err != nil {
		return err
	}
	if m.Gold, err = p.ReadInt32(); err != nil {
		return err
	}
	if m.Pending, err = p.ReadInt32(); err != nil {
		return err
	}
	m.Completed, err = p.ReadInt32()
	return err
}

func (m Tick) encodeBody(p *codec.Packet) {
	p.WriteInt32(m.Tick)
}

func (m *Tick) decodeBody(p *codec.Packet) (err error) {
	m.Tick, err = p.ReadInt32()
	return err
}

func (m Victory) encodeBody(p *codec.Packet) {
	p.WriteInt32(m.Color)
}

func (m *Victory) decodeBody(p *codec.Packet) (err error) {
	m.Color, err = p.ReadInt32()
	return err
}

func (m Hello) encodeBody(p *codec.Packet) {
	p.WriteInt32(m.Color)
}

func (m *Hello) decodeBody(p *codec.Packet) (err error) {
	m.Color, err = p.ReadInt32()
	return err
}

func (m Pickup) encodeBody(p *codec.Packet) {
	p.WriteString(m.Name)
}

func (m *Pickup) decodeBody(p *codec.Packet) (err error) {
	m.Name, err = p.ReadString()
	return err
}

func (m Drop) encodeBody(p *codec.Packet) {
	p.WriteInt32(m.X)
	p.WriteInt32(m.Y)
}

func (m *Drop) decodeBody(p *codec.Packet) (err error) {
	if m.X, err = p.ReadInt32(); err != nil {
		return err
	}
	m.Y, err = p.ReadInt32()
	return err
}
