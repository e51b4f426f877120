package enums

import "strings"

// RoomType - тег типа комнаты.
type RoomType uint8

const (
	RoomTypeUnknown RoomType = iota
	RoomTypeTreasury
	RoomTypeDormitory
)

var roomTypeToString = map[RoomType]string{
	RoomTypeTreasury:  "treasury",
	RoomTypeDormitory: "dormitory",
}

var roomTypeStringToType = map[string]RoomType{
	"treasury":  RoomTypeTreasury,
	"dormitory": RoomTypeDormitory,
}

func (r RoomType) String() string {
	if val, ok := roomTypeToString[r]; ok {
		return val
	}
	return "unknown"
}

func ParseRoomType(s string) RoomType {
	if val, ok := roomTypeStringToType[strings.ToLower(s)]; ok {
		return val
	}
	return RoomTypeUnknown
}
