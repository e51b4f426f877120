package domain

import (
	"fmt"

	"keeper-server/internal/codec"
	"keeper-server/internal/core/types/enums"
	"keeper-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// TreasuryObjectFormat - порядок полей кучки золота в потоке сохранения:
// три координаты позиции, затем количество золота.
const TreasuryObjectFormat = "position\tvalue"

const treasuryObjectPrefix = "Treasury_"

// TreasuryObject - кучка золота на полу. Переносится в руке хранителя и
// каждый тик стекает в сокровищницу, на клетке которой лежит.
type TreasuryObject struct {
	baseObject
	gold int
}

// NewTreasuryObject создаёт кучку с начальным количеством золота.
// Декодеры используют NewTreasuryObject(0) и заполняют поля из потока.
func NewTreasuryObject(gold int) *TreasuryObject {
	return &TreasuryObject{
		baseObject: newBaseObject(enums.ObjectTypeTreasury, treasuryObjectPrefix),
		gold:       gold,
	}
}

func (o *TreasuryObject) Gold() int {
	return o.gold
}

func (o *TreasuryObject) AddGold(amount int) {
	o.gold += amount
}

// MergeGold забирает всё золото из other, оставляя его пустым.
func (o *TreasuryObject) MergeGold(other *TreasuryObject) {
	if other == nil || other == o {
		return
	}
	o.gold += other.gold
	other.gold = 0
}

func (o *TreasuryObject) Format() string {
	return TreasuryObjectFormat
}

func (o *TreasuryObject) logFields() logrus.Fields {
	return logrus.Fields{
		"object": o.name,
		"id":     o.id,
		"pos":    o.pos,
	}
}

// OnUpkeep - золото стекает в покрывающую сокровищницу; что не влезло,
// остаётся в кучке. Пустая кучка снимается с клетки и из реестра.
func (o *TreasuryObject) OnUpkeep(gm *GameMap) {
	if !o.IsOnMap() {
		return
	}

	tile := gm.TileAtPosition(o.pos)
	if !logger.AssertTrue(tile != nil, "treasury object on map without tile", o.logFields()) {
		return
	}

	if o.gold > 0 {
		if treasury, ok := tile.CoveringRoom().(*Treasury); ok {
			o.gold -= treasury.DepositGold(o.gold, tile)
		}
	}

	if o.gold > 0 {
		return
	}

	tile.RemoveTreasuryObject(o)
	gm.RemoveRoomObject(o)
}

func (o *TreasuryObject) TryPickup(gm *GameMap, seat *Seat, isEditorMode bool) bool {
	if !o.IsOnMap() {
		return false
	}

	// Пустая кучка на сервере уже ждёт удаления
	if gm.IsServerGameMap() && o.gold <= 0 {
		return false
	}

	tile := gm.TileAtPosition(o.pos)
	if !logger.AssertTrue(tile != nil, "treasury object on map without tile", o.logFields()) {
		return false
	}

	if isEditorMode {
		return true
	}
	return tile.IsClaimedForSeat(seat)
}

func (o *TreasuryObject) Pickup(gm *GameMap) {
	if err := gm.LiftObject(o); err != nil {
		logger.AssertTrue(false, "treasury object pickup failed", logrus.Fields{
			"object": o.name,
			"error":  err,
		})
	}
}

func (o *TreasuryObject) TryDrop(seat *Seat, tile *Tile, isEditorMode bool) bool {
	if tile == nil || tile.Fullness > 0 {
		return false
	}

	if isEditorMode {
		switch tile.Type {
		case enums.TileTypeDirt, enums.TileTypeGold, enums.TileTypeClaimed:
			return true
		}
		return false
	}

	return tile.IsClaimedForSeat(seat)
}

// EncodeForSave пишет поля в порядке TreasuryObjectFormat.
func (o *TreasuryObject) EncodeForSave(w *codec.StreamWriter) {
	w.WriteVec3(o.pos)
	w.WriteInt(o.gold)
}

// DecodeFromSave заполняет позицию и золото. Объект остаётся Unplaced:
// на клетку его ставит загрузчик уровня.
func (o *TreasuryObject) DecodeFromSave(r *codec.StreamReader) error {
	pos, err := r.ReadVec3()
	if err != nil {
		return fmt.Errorf("treasury object position: %w", err)
	}
	gold, err := r.ReadInt()
	if err != nil {
		return fmt.Errorf("treasury object value: %w", err)
	}
	o.pos = pos
	o.gold = gold
	return nil
}

// EncodeForWire пишет имя и позицию. Золото по сети с объектом не уходит:
// клиенты видят его суммой в состоянии места.
func (o *TreasuryObject) EncodeForWire(p *codec.Packet) {
	p.WriteString(o.name)
	p.WriteVec3(o.pos)
}

// DecodeFromWire применяет имя и позицию (появление или перемещение).
// Золото не трогается. Поля читаются и проверяются целиком до применения:
// обрезанный пакет или позиция вне карты ничего не меняют.
func (o *TreasuryObject) DecodeFromWire(gm *GameMap, p *codec.Packet) error {
	name, err := p.ReadString()
	if err != nil {
		return fmt.Errorf("treasury object name: %w", err)
	}
	pos, err := p.ReadVec3()
	if err != nil {
		return fmt.Errorf("treasury object position: %w", err)
	}

	if gm == nil || !gm.isRegistered(o) {
		o.name = name
		o.pos = pos
		return nil
	}

	if gm.TileAtPosition(pos) == nil {
		logger.AssertTrue(false, "wire position outside the map", logrus.Fields{"object": o.name, "pos": pos})
		return fmt.Errorf("%w: %v", ErrNoTile, pos)
	}
	if name != o.name {
		if err := gm.RenameObject(o, name); err != nil {
			return err
		}
	}
	return gm.PlaceObject(o, pos)
}
