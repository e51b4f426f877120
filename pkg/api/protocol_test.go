package api

import (
	"errors"
	"reflect"
	"testing"

	"keeper-server/internal/codec"
)

func TestEncodeDecode(t *testing.T) {
	messages := []Message{
		&Welcome{Color: 2, Width: 40, Height: 30},
		&AddObject{ObjectType: 1, Body: []byte{1, 2, 3}},
		&RemoveObject{Name: "Treasury_7"},
		&SeatState{Color: 1, Mana: 1500.5, HP: 1000, Gold: 320, Pending: 2, Completed: 1},
		&Tick{Tick: 42},
		&Victory{Color: 3},
		&Hello{Color: 1},
		&Pickup{Name: "Treasury_1"},
		&Drop{X: 4, Y: 9},
	}

	for _, msg := range messages {
		t.Run(msg.Type().String(), func(t *testing.T) {
			data, err := Encode(msg)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if MessageType(data[0]) != msg.Type() {
				t.Errorf("type byte = %d, want %d", data[0], msg.Type())
			}

			got, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, msg) {
				t.Errorf("Decode() = %+v, want %+v", got, msg)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	full, _ := Encode(&SeatState{Color: 1, Gold: 5})
	tick, _ := Encode(&Tick{Tick: 1})

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, codec.ErrTruncatedPacket},
		{"unknown type", []byte{200, 0}, ErrUnknownMessage},
		{"truncated body", full[:len(full)-3], codec.ErrTruncatedPacket},
		{"trailing bytes", append(tick, 0xFF), ErrTrailingBytes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
			if msg != nil {
				t.Error("failed decode returned a message")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Validator
		wantErr bool
	}{
		{"hello ok", &Hello{Color: 1}, false},
		{"hello zero", &Hello{Color: 0}, true},
		{"pickup ok", &Pickup{Name: "Treasury_3"}, false},
		{"pickup empty", &Pickup{}, true},
		{"pickup spaces", &Pickup{Name: "gold pile"}, true},
		{"drop ok", &Drop{X: 0, Y: 3}, false},
		{"drop negative", &Drop{X: -1, Y: 3}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.msg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
