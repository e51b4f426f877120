package domain

import (
	"fmt"

	"keeper-server/internal/core/types"
	"keeper-server/internal/core/types/enums"

	"github.com/go-gl/mathgl/mgl64"
)

// RoomID - дескриптор комнаты в арене GameMap. 0 - комнаты нет.
type RoomID int

const NoRoom RoomID = 0

// Tile - одна клетка карты. Захват, покрывающая комната и резиденты
// хранятся как дескрипторы; разрешаются через владеющий GameMap.
type Tile struct {
	X        int            `json:"x"`
	Y        int            `json:"y"`
	Type     enums.TileType `json:"type"`
	Fullness float64        `json:"fullness"` // 0 - клетка пустая и проходимая

	SeatColor int    `json:"seat,omitempty"` // Захватившее место, 0 - никто
	RoomID    RoomID `json:"room,omitempty"` // Покрывающая комната (слабая ссылка)

	residents []types.ObjectID
	gm        *GameMap
}

// Index - индекс клетки в плоском массиве карты
func (t *Tile) Index() int {
	return t.Y*t.gm.width + t.X
}

// Center возвращает мировую позицию центра клетки.
func (t *Tile) Center() mgl64.Vec3 {
	return TileCenter(t.X, t.Y)
}

// Seat возвращает захватившее место или nil.
func (t *Tile) Seat() *Seat {
	if t.SeatColor == 0 {
		return nil
	}
	return t.gm.Seat(t.SeatColor)
}

// CoveringRoom возвращает комнату, которая стоит на клетке, или nil.
func (t *Tile) CoveringRoom() Room {
	return t.gm.Room(t.RoomID)
}

// IsClaimed - клетка захвачена каким-то местом.
func (t *Tile) IsClaimed() bool {
	return t.Type == enums.TileTypeClaimed && t.Seat() != nil
}

// IsClaimedForSeat - клетка захвачена местом seat или его союзником.
func (t *Tile) IsClaimedForSeat(seat *Seat) bool {
	if !t.IsClaimed() {
		return false
	}
	return t.Seat().IsAlliedSeat(seat)
}

// Claim помечает клетку как захваченную местом seat.
func (t *Tile) Claim(seat *Seat) {
	t.Type = enums.TileTypeClaimed
	t.Fullness = 0
	t.SeatColor = seat.Color
}

// AddTreasuryObject ставит объект в центр клетки через GameMap.PlaceObject,
// так что объект числится только здесь.
func (t *Tile) AddTreasuryObject(obj MapObject) error {
	return t.gm.PlaceObject(obj, t.Center())
}

// RemoveTreasuryObject снимает объект с клетки, если он числится на ней.
// Объект остаётся в реестре в состоянии Unplaced.
func (t *Tile) RemoveTreasuryObject(obj MapObject) bool {
	return t.gm.unplaceFrom(t, obj)
}

func (t *Tile) addResident(id types.ObjectID) {
	for _, other := range t.residents {
		if other == id {
			return
		}
	}
	t.residents = append(t.residents, id)
}

func (t *Tile) removeResident(id types.ObjectID) bool {
	for i, other := range t.residents {
		if other == id {
			t.residents = append(t.residents[:i], t.residents[i+1:]...)
			return true
		}
	}
	return false
}

// Residents возвращает копию списка резидентов (порядок регистрации).
func (t *Tile) Residents() []types.ObjectID {
	out := make([]types.ObjectID, len(t.residents))
	copy(out, t.residents)
	return out
}

// HasResident проверяет, числится ли объект на клетке.
func (t *Tile) HasResident(id types.ObjectID) bool {
	for _, other := range t.residents {
		if other == id {
			return true
		}
	}
	return false
}

func (t *Tile) String() string {
	return fmt.Sprintf("tile[%d,%d:%s]", t.X, t.Y, t.Type)
}

// DisplayTile безопасно форматирует клетку для логов, включая nil.
func DisplayTile(t *Tile) string {
	if t == nil {
		return "nullptr"
	}
	return t.String()
}
