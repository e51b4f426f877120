package domain

import (
	"fmt"
	"sort"
	"strconv"

	"keeper-server/internal/core/types"
	"keeper-server/internal/core/types/enums"
	"keeper-server/pkg/logger"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

// GameMap владеет всеми сущностями партии: клетками, местами, комнатами
// и объектами. Остальные ссылаются друг на друга только дескрипторами.
// Не потокобезопасен: мутирует его одна горутина тика.
type GameMap struct {
	width    int
	height   int
	isServer bool
	tick     int

	tiles []Tile // плоский массив, индекс y*width + x
	seats map[int]*Seat
	rooms []Room // rooms[0] зарезервирован под NoRoom

	slots    []objectSlot
	freeList []uint32
	byName   map[string]types.ObjectID
	counters map[string]int // счётчики имён по префиксу

	winners map[int]bool
}

type objectSlot struct {
	gen uint16
	obj MapObject
}

// TickReport - что изменилось за один тик (для рассылки и журнала).
type TickReport struct {
	Tick      int
	Destroyed []string
	Completed []GoalCompletion
	Winners   []int
}

type GoalCompletion struct {
	SeatColor int
	Goal      string
}

// NewGameMap создаёт карту из клеток dirt. isServer отличает
// авторитетную карту от клиентского зеркала.
func NewGameMap(width, height int, isServer bool) *GameMap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	gm := &GameMap{
		width:    width,
		height:   height,
		isServer: isServer,
		tiles:    make([]Tile, width*height),
		seats:    make(map[int]*Seat),
		rooms:    []Room{nil},
		byName:   make(map[string]types.ObjectID),
		counters: make(map[string]int),
		winners:  make(map[int]bool),
	}
	for i := range gm.tiles {
		gm.tiles[i] = Tile{
			X:    i % width,
			Y:    i / width,
			Type: enums.TileTypeDirt,
			gm:   gm,
		}
	}
	return gm
}

func (gm *GameMap) Width() int  { return gm.width }
func (gm *GameMap) Height() int { return gm.height }

func (gm *GameMap) IsServerGameMap() bool {
	return gm.isServer
}

// CurrentTick - номер последнего выполненного тика.
func (gm *GameMap) CurrentTick() int {
	return gm.tick
}

// --- Клетки ---

func (gm *GameMap) TileAt(x, y int) *Tile {
	if x < 0 || y < 0 || x >= gm.width || y >= gm.height {
		return nil
	}
	return &gm.tiles[y*gm.width+x]
}

// TileAtPosition возвращает клетку под мировой позицией или nil.
func (gm *GameMap) TileAtPosition(v mgl64.Vec3) *Tile {
	x, y := TileCoords(v)
	return gm.TileAt(x, y)
}

// Tiles возвращает все клетки в порядке индекса.
func (gm *GameMap) Tiles() []*Tile {
	out := make([]*Tile, len(gm.tiles))
	for i := range gm.tiles {
		out[i] = &gm.tiles[i]
	}
	return out
}

func (gm *GameMap) ownsTile(t *Tile) bool {
	return t != nil && t.gm == gm && gm.TileAt(t.X, t.Y) == t
}

// --- Места ---

func (gm *GameMap) AddSeat(s *Seat) error {
	if s.Color <= 0 {
		return fmt.Errorf("%w: %d", ErrBadSeatColor, s.Color)
	}
	if _, exists := gm.seats[s.Color]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateSeat, s.Color)
	}
	gm.seats[s.Color] = s
	return nil
}

func (gm *GameMap) Seat(color int) *Seat {
	return gm.seats[color]
}

// Seats возвращает места по возрастанию цвета.
func (gm *GameMap) Seats() []*Seat {
	out := make([]*Seat, 0, len(gm.seats))
	for _, s := range gm.seats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Color < out[j].Color })
	return out
}

// --- Комнаты ---

// AddRoom регистрирует комнату и ставит её на клетки.
func (gm *GameMap) AddRoom(room Room, tiles ...*Tile) (RoomID, error) {
	b := room.base()
	if b.id != NoRoom {
		return NoRoom, fmt.Errorf("room %d already registered", b.id)
	}
	for _, t := range tiles {
		if err := gm.checkRoomTile(t); err != nil {
			return NoRoom, err
		}
	}

	b.id = RoomID(len(gm.rooms))
	gm.rooms = append(gm.rooms, room)
	for _, t := range tiles {
		if t.RoomID == b.id {
			continue // повтор в аргументах
		}
		t.RoomID = b.id
		b.tiles = append(b.tiles, t)
	}
	return b.id, nil
}

// AddRoomTile расширяет уже зарегистрированную комнату.
func (gm *GameMap) AddRoomTile(room Room, t *Tile) error {
	b := room.base()
	if gm.Room(b.id) != room {
		return fmt.Errorf("room %d is not registered", b.id)
	}
	if err := gm.checkRoomTile(t); err != nil {
		return err
	}
	t.RoomID = b.id
	b.tiles = append(b.tiles, t)
	return nil
}

func (gm *GameMap) checkRoomTile(t *Tile) error {
	if !gm.ownsTile(t) {
		return ErrForeignTile
	}
	if t.RoomID != NoRoom {
		return fmt.Errorf("%w: %s", ErrTileAlreadyInUse, t)
	}
	return nil
}

// Room разрешает дескриптор комнаты; NoRoom и чужие id дают nil.
func (gm *GameMap) Room(id RoomID) Room {
	if id <= NoRoom || int(id) >= len(gm.rooms) {
		return nil
	}
	return gm.rooms[id]
}

// Rooms возвращает комнаты в порядке регистрации.
func (gm *GameMap) Rooms() []Room {
	out := make([]Room, 0, len(gm.rooms)-1)
	for _, r := range gm.rooms[1:] {
		out = append(out, r)
	}
	return out
}

// --- Объекты ---

// AddObject регистрирует объект в реестре. Пустое имя заменяется на
// Prefix_N. Объект остаётся Unplaced до PlaceObject.
func (gm *GameMap) AddObject(obj MapObject) error {
	b := obj.base()
	if gm.isRegistered(obj) {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, b.name)
	}

	name := b.name
	if name == "" {
		name = gm.NextObjectName(b.prefix)
	}
	if _, taken := gm.byName[name]; taken {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	var index uint32
	if n := len(gm.freeList); n > 0 {
		index = gm.freeList[n-1]
		gm.freeList = gm.freeList[:n-1]
	} else {
		index = uint32(len(gm.slots))
		gm.slots = append(gm.slots, objectSlot{})
	}

	slot := &gm.slots[index]
	slot.gen++
	if slot.gen == 0 {
		slot.gen = 1 // 0 зарезервирован под NilObjectID
	}
	slot.obj = obj

	b.id = types.PackObjectID(uint8(b.objType), slot.gen, index)
	b.name = name
	b.state = StateUnplaced
	b.tileIdx = -1
	gm.byName[name] = b.id
	return nil
}

// SpawnObject - AddObject и PlaceObject одним шагом. При ошибке
// размещения объект снимается с реестра.
func (gm *GameMap) SpawnObject(obj MapObject, v mgl64.Vec3) error {
	if err := gm.AddObject(obj); err != nil {
		return err
	}
	if err := gm.PlaceObject(obj, v); err != nil {
		gm.RemoveRoomObject(obj)
		return err
	}
	return nil
}

// NextObjectName возвращает свободное имя вида Prefix_N.
func (gm *GameMap) NextObjectName(prefix string) string {
	for {
		gm.counters[prefix]++
		name := prefix + strconv.Itoa(gm.counters[prefix])
		if _, taken := gm.byName[name]; !taken {
			return name
		}
	}
}

// RenameObject меняет имя зарегистрированного объекта.
func (gm *GameMap) RenameObject(obj MapObject, name string) error {
	if !gm.isRegistered(obj) {
		return ErrNotRegistered
	}
	b := obj.base()
	if name == b.name {
		return nil
	}
	if _, taken := gm.byName[name]; taken {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	delete(gm.byName, b.name)
	b.name = name
	gm.byName[name] = b.id
	return nil
}

// Object разрешает дескриптор; устаревшее поколение даёт nil.
func (gm *GameMap) Object(id types.ObjectID) MapObject {
	if id.IsNil() {
		return nil
	}
	index := id.Index()
	if int(index) >= len(gm.slots) {
		return nil
	}
	slot := gm.slots[index]
	if slot.gen != id.Generation() {
		return nil
	}
	return slot.obj
}

func (gm *GameMap) ObjectByName(name string) MapObject {
	id, ok := gm.byName[name]
	if !ok {
		return nil
	}
	return gm.Object(id)
}

func (gm *GameMap) isRegistered(obj MapObject) bool {
	return obj != nil && gm.Object(obj.ID()) == obj
}

// Objects возвращает живые объекты по возрастанию индекса слота.
func (gm *GameMap) Objects() []MapObject {
	out := make([]MapObject, 0, len(gm.slots)-len(gm.freeList))
	for _, slot := range gm.slots {
		if slot.obj != nil {
			out = append(out, slot.obj)
		}
	}
	return out
}

// PlaceObject переносит объект на клетку под v: снимает со старой клетки
// и ставит на новую за один вызов. Без клетки ничего не меняется.
func (gm *GameMap) PlaceObject(obj MapObject, v mgl64.Vec3) error {
	if !gm.isRegistered(obj) {
		return ErrNotRegistered
	}
	b := obj.base()

	tile := gm.TileAtPosition(v)
	if !logger.AssertTrue(tile != nil, "no tile for object position", logrus.Fields{
		"object": b.name,
		"pos":    v,
	}) {
		return fmt.Errorf("%w: %v", ErrNoTile, v)
	}

	gm.detach(b)
	b.pos = v
	b.tileIdx = tile.Index()
	b.state = StateOnMap
	tile.addResident(b.id)
	return nil
}

func (gm *GameMap) unplaceFrom(t *Tile, obj MapObject) bool {
	if !gm.isRegistered(obj) {
		return false
	}
	b := obj.base()
	if b.tileIdx != t.Index() {
		return false
	}
	gm.detach(b)
	b.state = StateUnplaced
	return true
}

// LiftObject снимает объект с клетки (в руку хранителя).
func (gm *GameMap) LiftObject(obj MapObject) error {
	if !gm.isRegistered(obj) {
		return ErrNotRegistered
	}
	b := obj.base()
	if b.state != StateOnMap {
		return fmt.Errorf("%w: %s is %s", ErrNotOnMap, b.name, b.state)
	}
	gm.detach(b)
	b.state = StatePickedUp
	return nil
}

// RemoveRoomObject снимает объект с клетки и из реестра. Повторный вызов
// ничего не делает.
func (gm *GameMap) RemoveRoomObject(obj MapObject) bool {
	if !gm.isRegistered(obj) {
		return false
	}
	b := obj.base()
	gm.detach(b)

	index := b.id.Index()
	gm.slots[index].obj = nil
	gm.freeList = append(gm.freeList, index)
	delete(gm.byName, b.name)
	b.state = StateDestroyed
	return true
}

func (gm *GameMap) detach(b *baseObject) {
	if b.tileIdx >= 0 && b.tileIdx < len(gm.tiles) {
		gm.tiles[b.tileIdx].removeResident(b.id)
	}
	b.tileIdx = -1
}

// --- Тик ---

// DoUpkeep выполняет один тик: upkeep объектов по порядку слотов, затем
// пересчёт ресурсов мест и проверку целей. На клиентской карте ничего не делает.
func (gm *GameMap) DoUpkeep() TickReport {
	if !gm.isServer {
		return TickReport{Tick: gm.tick}
	}

	gm.tick++
	report := TickReport{Tick: gm.tick}

	for _, obj := range gm.Objects() {
		if !obj.IsOnMap() {
			continue
		}
		obj.OnUpkeep(gm)
		if obj.State() == StateDestroyed {
			report.Destroyed = append(report.Destroyed, obj.Name())
		}
	}

	gm.refreshSeats()

	for _, seat := range gm.Seats() {
		before := seat.NumCompletedGoals()
		done := seat.CheckAllGoals()
		for i := before; i < seat.NumCompletedGoals(); i++ {
			report.Completed = append(report.Completed, GoalCompletion{
				SeatColor: seat.Color,
				Goal:      seat.CompletedGoal(i).Name(),
			})
		}
		if done && seat.NumCompletedGoals() > 0 && !gm.winners[seat.Color] {
			gm.winners[seat.Color] = true
			report.Winners = append(report.Winners, seat.Color)
		}
	}

	return report
}

// refreshSeats пересчитывает производные поля мест: золото в своих
// сокровищницах и число захваченных клеток.
func (gm *GameMap) refreshSeats() {
	gold := make(map[int]int, len(gm.seats))
	claimed := make(map[int]int, len(gm.seats))

	for _, r := range gm.rooms[1:] {
		treasury, ok := r.(*Treasury)
		if !ok || treasury.Seat() == nil {
			continue
		}
		gold[treasury.Seat().Color] += treasury.TotalGold()
	}
	for i := range gm.tiles {
		t := &gm.tiles[i]
		if t.IsClaimed() {
			claimed[t.SeatColor]++
		}
	}

	for color, s := range gm.seats {
		s.Gold = gold[color]
		s.ClaimedTiles = claimed[color]
	}
}

// CheckResidency проверяет, что каждый объект на карте числится ровно
// на одной клетке (той, что под его позицией), а остальные - ни на одной.
func (gm *GameMap) CheckResidency() error {
	seen := make(map[types.ObjectID]int)
	for i := range gm.tiles {
		t := &gm.tiles[i]
		for _, id := range t.residents {
			obj := gm.Object(id)
			if obj == nil {
				return fmt.Errorf("%w: stale resident %v on %s", ErrResidency, id, t)
			}
			if !obj.IsOnMap() {
				return fmt.Errorf("%w: %s is %s but listed on %s", ErrResidency, obj.Name(), obj.State(), t)
			}
			if gm.TileAtPosition(obj.Position()) != t {
				return fmt.Errorf("%w: %s listed on %s away from its position", ErrResidency, obj.Name(), t)
			}
			seen[id]++
		}
	}

	for _, obj := range gm.Objects() {
		n := seen[obj.ID()]
		if obj.IsOnMap() && n != 1 {
			return fmt.Errorf("%w: %s listed on %d tiles", ErrResidency, obj.Name(), n)
		}
	}
	return nil
}
