package api

import (
	"fmt"

	"keeper-server/internal/codec"
)

var messageFactories = map[MessageType]func() Message{
	MsgWelcome:      func() Message { return &Welcome{} },
	MsgAddObject:    func() Message { return &AddObject{} },
	MsgRemoveObject: func() Message { return &RemoveObject{} },
	MsgSeatState:    func() Message { return &SeatState{} },
	MsgTick:         func() Message { return &Tick{} },
	MsgVictory:      func() Message { return &Victory{} },
	MsgHello:        func() Message { return &Hello{} },
	MsgPickup:       func() Message { return &Pickup{} },
	MsgDrop:         func() Message { return &Drop{} },
}

// Encode собирает кадр: байт типа, затем тело. Сообщения передаются
// указателями (&api.Tick{...}), как их и возвращает Decode.
func Encode(m Message) ([]byte, error) {
	p := codec.NewPacket()
	p.WriteUint8(uint8(m.Type()))
	m.encodeBody(p)
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type(), err)
	}
	return p.Bytes(), nil
}

// Decode разбирает кадр целиком. Возвращает указатель на структуру
// сообщения (*Hello, *AddObject, ...). Лишние байты в конце - ошибка.
func Decode(data []byte) (Message, error) {
	p := codec.FromBytes(data)
	raw, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}

	msgType := MessageType(raw)
	factory, ok := messageFactories[msgType]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMessage, raw)
	}

	msg := factory()
	if err := msg.decodeBody(p); err != nil {
		return nil, fmt.Errorf("decode %s: %w", msgType, err)
	}
	if p.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %s has %d extra", ErrTrailingBytes, msgType, p.Remaining())
	}
	return msg, nil
}
