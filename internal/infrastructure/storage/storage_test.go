package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"keeper-server/internal/core/types/enums"
	"keeper-server/internal/domain"
	"keeper-server/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

const sampleLevel = `# keeper level
6	4
[Seats]
# color faction startingX startingY colourValue mana HP
1	Keepers	1	1	1	0	0	1	500	1000
2	Ravens	4	2	0	0	1	1	250	1000
[/Seats]
[Tiles]
# x y type fullness seat
1	1	claimed	0	1
2	1	claimed	0	1
0	0	rock	1	0
5	3	gold	1	0
[/Tiles]
[Rooms]
# type seat numTiles [x y]... state
treasury	1	2	1	1	2	1	40	0
[/Rooms]
[MapObjects]
# type position value
treasury	3	2	0	120
treasury	1	1	0	15
[/MapObjects]
`

func TestReadLevel(t *testing.T) {
	gm, err := ReadLevel(strings.NewReader(sampleLevel), LoadOptions{IsServer: true})
	if err != nil {
		t.Fatalf("ReadLevel() error = %v", err)
	}

	if gm.Width() != 6 || gm.Height() != 4 {
		t.Errorf("size = %dx%d", gm.Width(), gm.Height())
	}
	if len(gm.Seats()) != 2 || gm.Seat(2).Faction != "Ravens" || gm.Seat(1).Mana != 500 {
		t.Errorf("seats = %v", gm.Seats())
	}
	if tile := gm.TileAt(0, 0); tile.Type != enums.TileTypeRock || tile.Fullness != 1 {
		t.Errorf("tile (0,0) = %s fullness %v", tile, tile.Fullness)
	}
	if !gm.TileAt(2, 1).IsClaimedForSeat(gm.Seat(1)) {
		t.Error("tile (2,1) not claimed for seat 1")
	}

	treasury, ok := gm.TileAt(1, 1).CoveringRoom().(*domain.Treasury)
	if !ok {
		t.Fatalf("tile (1,1) room = %T", gm.TileAt(1, 1).CoveringRoom())
	}
	if treasury.GoldInTile(gm.TileAt(1, 1)) != 40 || treasury.Seat() != gm.Seat(1) {
		t.Errorf("treasury gold = %d", treasury.GoldInTile(gm.TileAt(1, 1)))
	}

	objs := gm.Objects()
	if len(objs) != 2 {
		t.Fatalf("objects = %d, want 2", len(objs))
	}
	pile := objs[0].(*domain.TreasuryObject)
	if pile.Gold() != 120 || !pile.IsOnMap() || !gm.TileAt(3, 2).HasResident(pile.ID()) {
		t.Errorf("pile = %s gold %d", domain.DescribeObject(pile), pile.Gold())
	}
	if err := gm.CheckResidency(); err != nil {
		t.Error(err)
	}
}

func TestLevel_RoundTrip(t *testing.T) {
	src, err := ReadLevel(strings.NewReader(sampleLevel), LoadOptions{IsServer: true})
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"match.level", "match.level.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "saves", name)
			if err := SaveFile(path, src); err != nil {
				t.Fatalf("SaveFile() error = %v", err)
			}

			got, err := LoadFile(path, LoadOptions{IsServer: true})
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}

			var want, have bytes.Buffer
			if err := WriteLevel(&want, src); err != nil {
				t.Fatal(err)
			}
			if err := WriteLevel(&have, got); err != nil {
				t.Fatal(err)
			}
			if want.String() != have.String() {
				t.Errorf("round trip differs:\n%s\nvs\n%s", want.String(), have.String())
			}
		})
	}
}

func TestLevel_CompressedOnDisk(t *testing.T) {
	gm, err := ReadLevel(strings.NewReader(sampleLevel), LoadOptions{IsServer: true})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "match.level.zst")
	if err := SaveFile(path, gm); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Магическое число кадра zstd
	if !bytes.HasPrefix(raw, []byte{0x28, 0xB5, 0x2F, 0xFD}) {
		t.Errorf("file does not start with zstd magic: % x", raw[:4])
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestReadLevel_DiscardsBrokenRecords(t *testing.T) {
	level := `4	4
[Seats]
1	Keepers	0	0	1	1	1	1	0	100
2	Ravens	0	0
0	Rogues	0	0	1	1	1	1	0	100
[/Seats]
[Tiles]
1	1	claimed	0	1
2	2	marble	0	0
3	3	claimed	0	9
[/Tiles]
[Rooms]
[/Rooms]
[MapObjects]
treasury	1	1	0	50
treasury	2	2	0
treasury	2	2	0	10	99
dragon	0	0	0	1
treasury	9	9	0	10
[/MapObjects]
`
	gm, err := ReadLevel(strings.NewReader(level), LoadOptions{IsServer: true})
	if err != nil {
		t.Fatalf("ReadLevel() error = %v", err)
	}
	if len(gm.Seats()) != 1 {
		t.Errorf("seats = %d, want 1 (short and colorless seats discarded)", len(gm.Seats()))
	}
	if gm.TileAt(2, 2).Type != enums.TileTypeDirt || gm.TileAt(3, 3).SeatColor != 0 {
		t.Error("broken tile records were applied")
	}
	if n := len(gm.Objects()); n != 1 {
		t.Errorf("objects = %d, want 1", n)
	}
	if err := gm.CheckResidency(); err != nil {
		t.Error(err)
	}
}

func TestReadLevel_DiscardsBrokenRooms(t *testing.T) {
	level := `4	4
[Seats]
1	Keepers	0	0	1	1	1	1	0	100
[/Seats]
[Tiles]
0	0	claimed	0	1
1	0	claimed	0	1
2	0	claimed	0	1
[/Tiles]
[Rooms]
treasury	1	2	0	0	1	0	40
dormitory	1	1	1	0	7
treasury	1	1	2	0	-5
treasury	1	1	2	0	25
[/Rooms]
[MapObjects]
[/MapObjects]
`
	gm, err := ReadLevel(strings.NewReader(level), LoadOptions{IsServer: true})
	if err != nil {
		t.Fatalf("ReadLevel() error = %v", err)
	}

	if n := len(gm.Rooms()); n != 1 {
		t.Fatalf("rooms = %d, want 1 (only the complete record)", n)
	}
	for _, x := range []int{0, 1} {
		if room := gm.TileAt(x, 0).CoveringRoom(); room != nil {
			t.Errorf("tile (%d,0) covered by discarded %s room", x, room.Type())
		}
	}
	treasury, ok := gm.TileAt(2, 0).CoveringRoom().(*domain.Treasury)
	if !ok || treasury.TotalGold() != 25 {
		t.Errorf("surviving room = %T", gm.TileAt(2, 0).CoveringRoom())
	}
}

func TestReadLevel_StructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  error
	}{
		{"empty", "", ErrBadHeader},
		{"bad size", "0\t5\n", ErrBadHeader},
		{"huge", "99999\t2\n", ErrBadHeader},
		{"missing section", "2\t2\n[Tiles]\n[/Tiles]\n", ErrBadSection},
		{"unclosed", "2\t2\n[Seats]\n1\tKeepers\t0\t0\t1\t1\t1\t1\t0\t0\n", ErrUnclosedSection},
		{"trailing", "2\t2\n[Seats]\n[/Seats]\n[Tiles]\n[/Tiles]\n[Rooms]\n[/Rooms]\n[MapObjects]\n[/MapObjects]\nextra\n", ErrBadSection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadLevel(strings.NewReader(tt.level), LoadOptions{IsServer: true})
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadLevel() error = %v, want %v", err, tt.want)
			}
		})
	}
}
