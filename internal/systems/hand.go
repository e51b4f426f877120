package systems

import (
	"errors"
	"fmt"

	"keeper-server/internal/core/types"
	"keeper-server/internal/domain"
)

// MaxHandSize - сколько объектов хранитель держит в руке одновременно.
const MaxHandSize = 16

var (
	ErrHandFull     = errors.New("рука полна")
	ErrHandEmpty    = errors.New("в руке ничего нет")
	ErrNoSuchObject = errors.New("объект не найден")
	ErrRefused      = errors.New("действие запрещено")
)

// Hand - рука хранителя места: объекты, снятые с карты, в порядке взятия.
type Hand struct {
	SeatColor int
	objects   []types.ObjectID
}

func NewHand(seatColor int) *Hand {
	return &Hand{SeatColor: seatColor}
}

func (h *Hand) Len() int {
	return len(h.objects)
}

// Objects возвращает копию содержимого руки.
func (h *Hand) Objects() []types.ObjectID {
	out := make([]types.ObjectID, len(h.objects))
	copy(out, h.objects)
	return out
}

func (h *Hand) Contains(id types.ObjectID) bool {
	for _, other := range h.objects {
		if other == id {
			return true
		}
	}
	return false
}

// --- PICKUP ---

// TryPickup берёт объект с карты в руку. Проверка правил - у самого объекта.
func TryPickup(gm *domain.GameMap, hand *Hand, seat *domain.Seat, obj domain.MapObject, isEditorMode bool) (string, error) {
	if obj == nil {
		return "", ErrNoSuchObject
	}
	if len(hand.objects) >= MaxHandSize {
		return "", ErrHandFull
	}
	if !obj.TryPickup(gm, seat, isEditorMode) {
		return "", fmt.Errorf("%w: %s", ErrRefused, obj.Name())
	}

	obj.Pickup(gm)
	if obj.State() != domain.StatePickedUp {
		return "", fmt.Errorf("%w: %s", ErrRefused, obj.Name())
	}
	hand.objects = append(hand.objects, obj.ID())

	return fmt.Sprintf("%s берёт %s.", seat, obj.Name()), nil
}

// --- DROP ---

// TryDrop кладёт последний взятый объект в центр клетки.
func TryDrop(gm *domain.GameMap, hand *Hand, seat *domain.Seat, tile *domain.Tile, isEditorMode bool) (string, error) {
	if len(hand.objects) == 0 {
		return "", ErrHandEmpty
	}

	last := len(hand.objects) - 1
	obj := gm.Object(hand.objects[last])
	if obj == nil {
		// Объект уничтожен, пока лежал в руке
		hand.objects = hand.objects[:last]
		return "", ErrNoSuchObject
	}

	if !obj.TryDrop(seat, tile, isEditorMode) {
		return "", fmt.Errorf("%w: %s на %s", ErrRefused, obj.Name(), domain.DisplayTile(tile))
	}
	if err := tile.AddTreasuryObject(obj); err != nil {
		return "", err
	}
	hand.objects = hand.objects[:last]

	if pile, ok := obj.(*domain.TreasuryObject); ok {
		if into := mergePiles(gm, tile, pile); into != nil {
			return fmt.Sprintf("%s высыпает %s в %s на %s.", seat, pile.Name(), into.Name(), tile), nil
		}
	}
	return fmt.Sprintf("%s кладёт %s на %s.", seat, obj.Name(), tile), nil
}

// mergePiles ссыпает золото брошенной кучки в первую кучку, что уже лежит
// на клетке. Опустевшая брошенная кучка снимается с карты сразу.
func mergePiles(gm *domain.GameMap, tile *domain.Tile, dropped *domain.TreasuryObject) *domain.TreasuryObject {
	for _, id := range tile.Residents() {
		other, ok := gm.Object(id).(*domain.TreasuryObject)
		if !ok || other == dropped || !other.IsOnMap() {
			continue
		}
		other.MergeGold(dropped)
		tile.RemoveTreasuryObject(dropped)
		gm.RemoveRoomObject(dropped)
		return other
	}
	return nil
}
