package dungeon

import (
	"fmt"

	"keeper-server/internal/core/types/enums"
	"keeper-server/internal/domain"
)

// Rect - прямоугольник клеток, включая края
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.W && r.X+r.W > other.X &&
		r.Y < other.Y+other.H && r.Y+r.H > other.Y
}

// each обходит клетки прямоугольника построчно
func (r Rect) each(fn func(x, y int)) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			fn(x, y)
		}
	}
}

type seatSpec struct {
	color   int
	faction string
}

type claimSpec struct {
	color int
	area  Rect
}

type roomSpec struct {
	roomType enums.RoomType
	color    int
	area     Rect
}

type goldSpec struct {
	gold, x, y int
}

// LevelBuilder предоставляет fluent API для сборки карт (тесты, утилиты).
// Ошибки копятся и возвращаются из Build.
type LevelBuilder struct {
	width    int
	height   int
	isServer bool
	border   bool
	opts     domain.RoomOptions

	seats  []seatSpec
	claims []claimSpec
	rooms  []roomSpec
	gold   []goldSpec
}

// NewLevel создает новый builder для авторитетной карты
func NewLevel(width, height int) *LevelBuilder {
	return &LevelBuilder{
		width:    width,
		height:   height,
		isServer: true,
	}
}

// AsClient собирает клиентскую карту (upkeep выключен)
func (b *LevelBuilder) AsClient() *LevelBuilder {
	b.isServer = false
	return b
}

// WithRockBorder обносит карту скалой
func (b *LevelBuilder) WithRockBorder() *LevelBuilder {
	b.border = true
	return b
}

func (b *LevelBuilder) WithRoomOptions(opts domain.RoomOptions) *LevelBuilder {
	b.opts = opts
	return b
}

func (b *LevelBuilder) WithSeat(color int, faction string) *LevelBuilder {
	b.seats = append(b.seats, seatSpec{color: color, faction: faction})
	return b
}

// Claim захватывает прямоугольник местом color
func (b *LevelBuilder) Claim(color int, area Rect) *LevelBuilder {
	b.claims = append(b.claims, claimSpec{color: color, area: area})
	return b
}

// WithRoom ставит комнату места color на прямоугольник
func (b *LevelBuilder) WithRoom(roomType enums.RoomType, color int, area Rect) *LevelBuilder {
	b.rooms = append(b.rooms, roomSpec{roomType: roomType, color: color, area: area})
	return b
}

// SpawnGold кладёт кучку золота в центр клетки
func (b *LevelBuilder) SpawnGold(gold, x, y int) *LevelBuilder {
	b.gold = append(b.gold, goldSpec{gold: gold, x: x, y: y})
	return b
}

// Build собирает карту. Порядок: клетки, места, захват, комнаты, объекты.
func (b *LevelBuilder) Build() (*domain.GameMap, error) {
	gm := domain.NewGameMap(b.width, b.height, b.isServer)

	if b.border {
		for _, t := range gm.Tiles() {
			if t.X == 0 || t.Y == 0 || t.X == b.width-1 || t.Y == b.height-1 {
				t.Type = enums.TileTypeRock
				t.Fullness = 1
			}
		}
	}

	for _, s := range b.seats {
		if err := gm.AddSeat(domain.NewSeat(s.color, s.faction)); err != nil {
			return nil, err
		}
	}

	for _, c := range b.claims {
		seat := gm.Seat(c.color)
		if seat == nil {
			return nil, fmt.Errorf("claim: %w: %d", domain.ErrNoSeat, c.color)
		}
		var err error
		c.area.each(func(x, y int) {
			t := gm.TileAt(x, y)
			if t == nil {
				err = fmt.Errorf("claim (%d,%d): %w", x, y, domain.ErrNoTile)
				return
			}
			t.Claim(seat)
		})
		if err != nil {
			return nil, err
		}
	}

	for _, r := range b.rooms {
		seat := gm.Seat(r.color)
		if seat == nil {
			return nil, fmt.Errorf("room: %w: %d", domain.ErrNoSeat, r.color)
		}
		room, err := domain.NewRoom(r.roomType, seat, b.opts)
		if err != nil {
			return nil, err
		}
		var tiles []*domain.Tile
		r.area.each(func(x, y int) {
			if t := gm.TileAt(x, y); t != nil {
				tiles = append(tiles, t)
			}
		})
		if len(tiles) != r.area.W*r.area.H {
			return nil, fmt.Errorf("room %s at %+v: %w", r.roomType, r.area, domain.ErrNoTile)
		}
		if _, err := gm.AddRoom(room, tiles...); err != nil {
			return nil, err
		}
	}

	for _, g := range b.gold {
		if err := gm.SpawnObject(domain.NewTreasuryObject(g.gold), domain.TileCenter(g.x, g.y)); err != nil {
			return nil, fmt.Errorf("gold at (%d,%d): %w", g.x, g.y, err)
		}
	}
	return gm, nil
}
