package enums

import "strings"

// TileType - тип клетки карты.
type TileType uint8

const (
	TileTypeUnknown TileType = iota
	TileTypeDirt
	TileTypeGold
	TileTypeRock
	TileTypeWater
	TileTypeLava
	TileTypeClaimed
)

var tileTypeToString = map[TileType]string{
	TileTypeDirt:    "dirt",
	TileTypeGold:    "gold",
	TileTypeRock:    "rock",
	TileTypeWater:   "water",
	TileTypeLava:    "lava",
	TileTypeClaimed: "claimed",
}

var tileTypeStringToType = map[string]TileType{
	"dirt":    TileTypeDirt,
	"gold":    TileTypeGold,
	"rock":    TileTypeRock,
	"water":   TileTypeWater,
	"lava":    TileTypeLava,
	"claimed": TileTypeClaimed,
}

func (t TileType) String() string {
	if val, ok := tileTypeToString[t]; ok {
		return val
	}
	return "unknown"
}

func ParseTileType(s string) TileType {
	if val, ok := tileTypeStringToType[strings.ToLower(s)]; ok {
		return val
	}
	return TileTypeUnknown
}
