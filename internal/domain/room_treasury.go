package domain

import (
	"fmt"
	"sort"

	"keeper-server/internal/codec"
	"keeper-server/internal/core/types/enums"
	"keeper-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Treasury - сокровищница: хранит золото по клеткам с ограничением на клетку.
// Меняется только через DepositGold/WithdrawGold из тика симуляции.
type Treasury struct {
	baseRoom
	maxGoldPerTile int         // 0 - без ограничения
	goldInTile     map[int]int // Index клетки -> золото
}

func NewTreasury(seat *Seat, maxGoldPerTile int) *Treasury {
	if maxGoldPerTile < 0 {
		maxGoldPerTile = 0
	}
	return &Treasury{
		baseRoom:       baseRoom{roomType: enums.RoomTypeTreasury, seat: seat},
		maxGoldPerTile: maxGoldPerTile,
		goldInTile:     make(map[int]int),
	}
}

func (r *Treasury) MaxGoldPerTile() int {
	return r.maxGoldPerTile
}

// GoldInTile - сколько золота лежит на клетке комнаты.
func (r *Treasury) GoldInTile(t *Tile) int {
	if t == nil {
		return 0
	}
	return r.goldInTile[t.Index()]
}

func (r *Treasury) TotalGold() int {
	total := 0
	for _, g := range r.goldInTile {
		total += g
	}
	return total
}

// EmptyStorageSpace - свободное место во всей комнате, -1 если без ограничения.
func (r *Treasury) EmptyStorageSpace() int {
	if r.maxGoldPerTile == 0 {
		return -1
	}
	return len(r.tiles)*r.maxGoldPerTile - r.TotalGold()
}

func (r *Treasury) freeSpace(t *Tile) int {
	if r.maxGoldPerTile == 0 {
		return -1
	}
	free := r.maxGoldPerTile - r.goldInTile[t.Index()]
	if free < 0 {
		return 0
	}
	return free
}

// DepositGold кладёт золото сначала на запрошенную клетку, остаток - на
// остальные клетки комнаты. Возвращает, сколько принято; может быть меньше
// запрошенного, остаток остаётся у вызывающего.
func (r *Treasury) DepositGold(amount int, tile *Tile) int {
	if amount <= 0 {
		return 0
	}
	if !logger.AssertTrue(r.CoversTile(tile), "deposit on tile outside treasury", logrus.Fields{
		"room": r.id,
		"tile": DisplayTile(tile),
	}) {
		return 0
	}

	deposited := r.depositOn(tile, amount)
	for _, t := range r.tiles {
		if deposited == amount {
			break
		}
		if t == tile {
			continue
		}
		deposited += r.depositOn(t, amount-deposited)
	}
	return deposited
}

func (r *Treasury) depositOn(t *Tile, amount int) int {
	free := r.freeSpace(t)
	if free >= 0 && amount > free {
		amount = free
	}
	if amount > 0 {
		r.goldInTile[t.Index()] += amount
	}
	return amount
}

// WithdrawGold забирает до amount золота, начиная с самых полных клеток.
func (r *Treasury) WithdrawGold(amount int) int {
	if amount <= 0 {
		return 0
	}

	tiles := r.Tiles()
	sort.SliceStable(tiles, func(i, j int) bool {
		return r.goldInTile[tiles[i].Index()] > r.goldInTile[tiles[j].Index()]
	})

	taken := 0
	for _, t := range tiles {
		if taken == amount {
			break
		}
		have := r.goldInTile[t.Index()]
		take := amount - taken
		if take > have {
			take = have
		}
		r.setGold(t, have-take)
		taken += take
	}
	return taken
}

func (r *Treasury) setGold(t *Tile, gold int) {
	if gold <= 0 {
		delete(r.goldInTile, t.Index())
		return
	}
	r.goldInTile[t.Index()] = gold
}

// EncodeStateForSave пишет золото по клеткам в порядке Tiles().
func (r *Treasury) EncodeStateForSave(w *codec.StreamWriter) {
	for _, t := range r.tiles {
		w.WriteInt(r.goldInTile[t.Index()])
	}
}

// DecodeStateFromSave читает золото по клеткам в порядке tiles. Всё
// читается во временную таблицу: при ошибке состояние не меняется.
func (r *Treasury) DecodeStateFromSave(rd *codec.StreamReader, tiles []*Tile) error {
	gold := make([]int, len(tiles))
	for i, t := range tiles {
		g, err := rd.ReadInt()
		if err != nil {
			return fmt.Errorf("treasury gold at %s: %w", t, err)
		}
		if g < 0 {
			return fmt.Errorf("treasury gold at %s: negative %d", t, g)
		}
		gold[i] = g
	}
	for i, t := range tiles {
		r.setGold(t, gold[i])
	}
	return nil
}
