package domain

import (
	"errors"
	"testing"

	"keeper-server/internal/core/types"

	"github.com/go-gl/mathgl/mgl64"
)

func TestGameMap_AddObject_Names(t *testing.T) {
	gm := NewGameMap(3, 3, true)

	a := NewTreasuryObject(1)
	b := NewTreasuryObject(2)
	if err := gm.AddObject(a); err != nil {
		t.Fatal(err)
	}
	if err := gm.AddObject(b); err != nil {
		t.Fatal(err)
	}
	if a.Name() != "Treasury_1" || b.Name() != "Treasury_2" {
		t.Errorf("names = %s, %s", a.Name(), b.Name())
	}
	if a.State() != StateUnplaced {
		t.Errorf("State() = %s, want unplaced", a.State())
	}

	if err := gm.AddObject(a); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("AddObject twice error = %v", err)
	}

	clash := NewTreasuryObject(0)
	clash.name = "Treasury_1"
	if err := gm.AddObject(clash); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("AddObject(duplicate name) error = %v", err)
	}
	if !clash.ID().IsNil() {
		t.Error("rejected object got an id")
	}
}

func TestGameMap_StaleHandle(t *testing.T) {
	gm := NewGameMap(3, 3, true)
	a := NewTreasuryObject(1)
	if err := gm.SpawnObject(a, TileCenter(1, 1)); err != nil {
		t.Fatal(err)
	}
	oldID := a.ID()
	gm.RemoveRoomObject(a)

	b := NewTreasuryObject(2)
	if err := gm.AddObject(b); err != nil {
		t.Fatal(err)
	}
	if b.ID().Index() != oldID.Index() {
		t.Fatalf("slot not reused: %v vs %v", b.ID(), oldID)
	}
	if gm.Object(oldID) != nil {
		t.Error("stale id resolved after slot reuse")
	}
	if gm.Object(b.ID()) != MapObject(b) {
		t.Error("new id does not resolve")
	}
	if gm.Object(types.NilObjectID) != nil {
		t.Error("nil id resolved")
	}
	if gm.RemoveRoomObject(a) {
		t.Error("second RemoveRoomObject reported success")
	}
}

func TestGameMap_PlaceObject(t *testing.T) {
	gm := NewGameMap(4, 4, true)
	obj := NewTreasuryObject(10)

	if err := gm.PlaceObject(obj, TileCenter(1, 1)); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("PlaceObject(unregistered) error = %v", err)
	}
	if err := gm.SpawnObject(obj, TileCenter(1, 1)); err != nil {
		t.Fatal(err)
	}

	// Позиция внутри клетки округляется к ближайшему центру
	if err := gm.PlaceObject(obj, mgl64.Vec3{2.4, 2.6, 0}); err != nil {
		t.Fatal(err)
	}
	if !gm.TileAt(2, 3).HasResident(obj.ID()) || gm.TileAt(1, 1).HasResident(obj.ID()) {
		t.Error("residency not moved")
	}

	// Вне карты: no-op
	before := obj.Position()
	if err := gm.PlaceObject(obj, mgl64.Vec3{-5, 1, 0}); !errors.Is(err, ErrNoTile) {
		t.Fatalf("PlaceObject(off map) error = %v", err)
	}
	if obj.Position() != before || !obj.IsOnMap() || !gm.TileAt(2, 3).HasResident(obj.ID()) {
		t.Error("failed placement changed the object")
	}

	if err := gm.CheckResidency(); err != nil {
		t.Error(err)
	}
}

func TestGameMap_SpawnOffMapRollsBack(t *testing.T) {
	gm := NewGameMap(2, 2, true)
	obj := NewTreasuryObject(10)
	if err := gm.SpawnObject(obj, TileCenter(9, 9)); !errors.Is(err, ErrNoTile) {
		t.Fatalf("SpawnObject off map error = %v", err)
	}
	if len(gm.Objects()) != 0 {
		t.Error("failed spawn left the object registered")
	}
}

func TestGameMap_ResidencyExclusive(t *testing.T) {
	gm, _ := newTestMap(t, true, 0)
	var objs []*TreasuryObject
	for i := 0; i < 6; i++ {
		objs = append(objs, spawnGold(t, gm, 10, i%5, 3))
	}

	moves := []struct{ obj, x, y int }{{0, 4, 4}, {1, 0, 0}, {0, 1, 1}, {2, 2, 1}, {3, 3, 3}}
	for _, m := range moves {
		if err := gm.PlaceObject(objs[m.obj], TileCenter(m.x, m.y)); err != nil {
			t.Fatal(err)
		}
		if err := gm.CheckResidency(); err != nil {
			t.Fatalf("after move: %v", err)
		}
	}

	objs[4].Pickup(gm)
	gm.RemoveRoomObject(objs[5])
	for i := 0; i < 3; i++ {
		gm.DoUpkeep()
		if err := gm.CheckResidency(); err != nil {
			t.Fatalf("tick %d: %v", gm.CurrentTick(), err)
		}
	}

	for _, obj := range objs {
		onTiles := 0
		for _, tile := range gm.Tiles() {
			if tile.HasResident(obj.ID()) {
				onTiles++
			}
		}
		want := 0
		if obj.IsOnMap() {
			want = 1
		}
		if onTiles != want {
			t.Errorf("%s (%s) listed on %d tiles, want %d", obj.Name(), obj.State(), onTiles, want)
		}
	}
}

func TestGameMap_DoUpkeep_Report(t *testing.T) {
	gm, treasury := newTestMap(t, true, 0)
	seat := gm.Seat(1)
	seat.AddGoal(&GoldGoal{Target: 150})
	seat.AddGoal(&ClaimGoal{Target: 2})

	a := spawnGold(t, gm, 100, 1, 1)
	spawnGold(t, gm, 25, 4, 4)

	report := gm.DoUpkeep()
	if report.Tick != 1 {
		t.Errorf("Tick = %d", report.Tick)
	}
	if len(report.Destroyed) != 1 || report.Destroyed[0] != a.Name() {
		t.Errorf("Destroyed = %v, want [%s]", report.Destroyed, a.Name())
	}
	if seat.Gold != 100 || seat.ClaimedTiles != 2 {
		t.Errorf("seat gold=%d claimed=%d, want 100/2", seat.Gold, seat.ClaimedTiles)
	}
	if len(report.Completed) != 1 || report.Completed[0] != (GoalCompletion{SeatColor: 1, Goal: "claim"}) {
		t.Errorf("Completed = %v", report.Completed)
	}
	if len(report.Winners) != 0 {
		t.Errorf("Winners = %v, want none", report.Winners)
	}

	spawnGold(t, gm, 60, 2, 1)
	report = gm.DoUpkeep()
	if treasury.TotalGold() != 160 {
		t.Errorf("TotalGold() = %d", treasury.TotalGold())
	}
	if len(report.Winners) != 1 || report.Winners[0] != 1 {
		t.Fatalf("Winners = %v, want [1]", report.Winners)
	}

	// Победитель сообщается один раз
	report = gm.DoUpkeep()
	if len(report.Winners) != 0 || len(report.Completed) != 0 {
		t.Errorf("repeated report: %+v", report)
	}

	// Места без целей не побеждают
	if gm.Seat(2).NumCompletedGoals() != 0 {
		t.Error("seat 2 has completed goals")
	}
}

func TestGameMap_DoUpkeep_ClientNoop(t *testing.T) {
	gm, treasury := newTestMap(t, false, 0)
	obj := spawnGold(t, gm, 100, 1, 1)

	report := gm.DoUpkeep()
	if report.Tick != 0 || obj.Gold() != 100 || treasury.TotalGold() != 0 {
		t.Errorf("client upkeep changed state: %+v", report)
	}
}

func TestGameMap_RenameObject(t *testing.T) {
	gm := NewGameMap(2, 2, false)
	a := NewTreasuryObject(0)
	b := NewTreasuryObject(0)
	_ = gm.AddObject(a)
	_ = gm.AddObject(b)

	if err := gm.RenameObject(a, b.Name()); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("rename onto taken name error = %v", err)
	}
	if err := gm.RenameObject(a, "Treasury_3"); err != nil {
		t.Fatal(err)
	}
	if gm.ObjectByName("Treasury_1") != nil || gm.ObjectByName("Treasury_3") != MapObject(a) {
		t.Error("registry not updated on rename")
	}

	// Имя, занятое переименованием, пропускается счётчиком
	c := NewTreasuryObject(0)
	_ = gm.AddObject(c)
	if c.Name() != "Treasury_4" {
		t.Errorf("next name = %s, want Treasury_4", c.Name())
	}
}

func TestTile_Accessors(t *testing.T) {
	gm, treasury := newTestMap(t, true, 0)
	tile := gm.TileAt(1, 1)

	if tile.CoveringRoom() != Room(treasury) {
		t.Error("CoveringRoom() mismatch")
	}
	if gm.TileAt(0, 0).CoveringRoom() != nil {
		t.Error("bare tile has a room")
	}
	if !tile.IsClaimedForSeat(gm.Seat(3)) || tile.IsClaimedForSeat(gm.Seat(2)) {
		t.Error("IsClaimedForSeat ignores alliances")
	}
	if gm.TileAt(5, 0) != nil || gm.TileAt(0, -1) != nil {
		t.Error("TileAt out of bounds must be nil")
	}
	if DisplayTile(nil) != "nullptr" {
		t.Error("DisplayTile(nil)")
	}
}

func TestTile_TreasuryObjectResidency(t *testing.T) {
	gm, _ := newTestMap(t, true, 0)
	obj := spawnGold(t, gm, 10, 1, 1)
	from, to := gm.TileAt(1, 1), gm.TileAt(3, 3)

	if err := to.AddTreasuryObject(obj); err != nil {
		t.Fatalf("AddTreasuryObject() error = %v", err)
	}
	if from.HasResident(obj.ID()) || !to.HasResident(obj.ID()) || obj.Position() != to.Center() {
		t.Errorf("object not moved: pos=%v", obj.Position())
	}
	if err := gm.CheckResidency(); err != nil {
		t.Error(err)
	}

	if from.RemoveTreasuryObject(obj) {
		t.Error("removed from a tile it does not stand on")
	}
	if !to.RemoveTreasuryObject(obj) || obj.State() != StateUnplaced || to.HasResident(obj.ID()) {
		t.Errorf("after remove: state=%s", obj.State())
	}
	if err := gm.CheckResidency(); err != nil {
		t.Error(err)
	}

	stranger := NewTreasuryObject(1)
	if err := to.AddTreasuryObject(stranger); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("unregistered object error = %v", err)
	}
}
