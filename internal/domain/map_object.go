package domain

import (
	"fmt"

	"keeper-server/internal/codec"
	"keeper-server/internal/core/types"
	"keeper-server/internal/core/types/enums"

	"github.com/go-gl/mathgl/mgl64"
)

// ObjectState - стадия жизненного цикла объекта на карте.
type ObjectState uint8

const (
	StateUnplaced  ObjectState = iota // создан, позиции ещё нет
	StateOnMap                        // числится на клетке, участвует в upkeep
	StatePickedUp                     // в руке хранителя, не симулируется
	StateDestroyed                    // снят с реестра
)

var objectStateToString = map[ObjectState]string{
	StateUnplaced:  "unplaced",
	StateOnMap:     "on_map",
	StatePickedUp:  "picked_up",
	StateDestroyed: "destroyed",
}

func (s ObjectState) String() string {
	if val, ok := objectStateToString[s]; ok {
		return val
	}
	return "unknown"
}

// MapObject - подвижный объект карты. Набор реализаций закрыт: каждая
// встраивает baseObject и регистрируется в objectFactories по тегу типа.
type MapObject interface {
	ID() types.ObjectID
	Name() string
	Type() enums.ObjectType
	Position() mgl64.Vec3
	State() ObjectState
	IsOnMap() bool

	// Симуляция, вызывается только из тика.
	OnUpkeep(gm *GameMap)
	TryPickup(gm *GameMap, seat *Seat, isEditorMode bool) bool
	Pickup(gm *GameMap)
	TryDrop(seat *Seat, tile *Tile, isEditorMode bool) bool

	// Формат сохранения (порядок полей) и две кодировки.
	Format() string
	EncodeForSave(w *codec.StreamWriter)
	DecodeFromSave(r *codec.StreamReader) error
	EncodeForWire(p *codec.Packet)
	DecodeFromWire(gm *GameMap, p *codec.Packet) error

	base() *baseObject
}

// baseObject - общая часть всех объектов. Поля меняет только GameMap.
type baseObject struct {
	id      types.ObjectID
	objType enums.ObjectType
	prefix  string // префикс имени, к нему GameMap дописывает счётчик
	name    string
	pos     mgl64.Vec3
	state   ObjectState
	tileIdx int // клетка, в резидентах которой числится объект; -1 - нигде
}

func newBaseObject(objType enums.ObjectType, prefix string) baseObject {
	return baseObject{objType: objType, prefix: prefix, tileIdx: -1}
}

func (b *baseObject) ID() types.ObjectID     { return b.id }
func (b *baseObject) Name() string           { return b.name }
func (b *baseObject) Type() enums.ObjectType { return b.objType }
func (b *baseObject) Position() mgl64.Vec3   { return b.pos }
func (b *baseObject) State() ObjectState     { return b.state }
func (b *baseObject) IsOnMap() bool          { return b.state == StateOnMap }
func (b *baseObject) base() *baseObject      { return b }

var objectFactories = map[enums.ObjectType]func() MapObject{
	enums.ObjectTypeTreasury: func() MapObject { return NewTreasuryObject(0) },
}

// NewObjectOfType создаёт пустой объект для декодеров (сохранение и сеть).
func NewObjectOfType(objType enums.ObjectType) (MapObject, error) {
	factory, ok := objectFactories[objType]
	if !ok {
		return nil, fmt.Errorf("%w: %d", codec.ErrUnknownObjectType, objType)
	}
	return factory(), nil
}

// DescribeObject - короткая строка для логов.
func DescribeObject(obj MapObject) string {
	if obj == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%s %s %v)", obj.Name(), obj.Type(), obj.State(), obj.ID())
}
