package storage

import (
	"errors"
	"fmt"
	"io"

	"keeper-server/internal/codec"
	"keeper-server/internal/core/types/enums"
	"keeper-server/internal/domain"
	"keeper-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

var (
	ErrBadHeader       = errors.New("storage: bad level header")
	ErrBadSection      = errors.New("storage: unexpected section")
	ErrUnclosedSection = errors.New("storage: section not closed")
	errExtraFields     = errors.New("extra fields in record")
)

// MaxLevelSide - предел ширины и высоты карты.
const MaxLevelSide = 4096

// LoadOptions - параметры построения карты из файла.
type LoadOptions struct {
	IsServer bool
	Room     domain.RoomOptions
}

// ReadLevel строит карту из текстового формата уровня. Битая запись
// (место, клетка, комната, объект) пишется в лог и отбрасывается; битая
// структура файла (заголовок, секции) проваливает загрузку целиком.
func ReadLevel(r io.Reader, opts LoadOptions) (*domain.GameMap, error) {
	sr := codec.NewStreamReader(r)

	width, err := sr.ReadInt()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	height, err := sr.ReadInt()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if width <= 0 || height <= 0 || width > MaxLevelSide || height > MaxLevelSide {
		return nil, fmt.Errorf("%w: size %dx%d", ErrBadHeader, width, height)
	}

	gm := domain.NewGameMap(width, height, opts.IsServer)
	l := &levelReader{sr: sr, gm: gm, opts: opts}

	sections := []struct {
		name string
		read func(rec *codec.StreamReader) error
	}{
		{SectionSeats, l.readSeat},
		{SectionTiles, l.readTile},
		{SectionRooms, l.readRoom},
		{SectionMapObjects, l.readObject},
	}
	for _, s := range sections {
		if err := l.readSection(s.name, s.read); err != nil {
			return nil, err
		}
	}

	if _, err := sr.Peek(); err != io.EOF {
		return nil, fmt.Errorf("%w: data after %s at line %d", ErrBadSection, closeTag(SectionMapObjects), sr.Line())
	}
	return gm, nil
}

type levelReader struct {
	sr   *codec.StreamReader
	gm   *domain.GameMap
	opts LoadOptions
}

func (l *levelReader) readSection(section string, read func(rec *codec.StreamReader) error) error {
	tag, err := l.sr.ReadString()
	if err != nil {
		return fmt.Errorf("%w: want %s: %v", ErrBadSection, openTag(section), err)
	}
	if tag != openTag(section) {
		return fmt.Errorf("%w: want %s, got %q at line %d", ErrBadSection, openTag(section), tag, l.sr.Line())
	}

	for {
		next, err := l.sr.Peek()
		if err != nil {
			return fmt.Errorf("%w: %s", ErrUnclosedSection, section)
		}
		if next == closeTag(section) {
			l.sr.SkipLine()
			return nil
		}

		rec, err := l.sr.NextRecord()
		if err != nil {
			return err
		}
		line := rec.Line()
		err = read(rec)
		if err == nil && !rec.Done() {
			err = errExtraFields
		}
		if err == nil {
			continue
		}
		// Запись отбрасывается, загрузка продолжается
		logger.AssertTrue(false, "discarding malformed level record", logrus.Fields{
			"section": section,
			"line":    line,
			"error":   err,
		})
	}
}

func (l *levelReader) readSeat(rec *codec.StreamReader) error {
	seat, err := domain.DecodeSeatFromSave(rec)
	if err != nil {
		return err
	}
	if !rec.Done() {
		return errExtraFields
	}
	return l.gm.AddSeat(seat)
}

func (l *levelReader) readTile(rec *codec.StreamReader) error {
	x, err := rec.ReadInt()
	if err != nil {
		return err
	}
	y, err := rec.ReadInt()
	if err != nil {
		return err
	}
	typeName, err := rec.ReadString()
	if err != nil {
		return err
	}
	fullness, err := rec.ReadFloat()
	if err != nil {
		return err
	}
	seatColor, err := rec.ReadInt()
	if err != nil {
		return err
	}

	tile := l.gm.TileAt(x, y)
	if tile == nil {
		return fmt.Errorf("%w: (%d,%d)", domain.ErrNoTile, x, y)
	}
	tileType := enums.ParseTileType(typeName)
	if tileType == enums.TileTypeUnknown {
		return fmt.Errorf("unknown tile type %q", typeName)
	}
	if seatColor != 0 && l.gm.Seat(seatColor) == nil {
		return fmt.Errorf("tile (%d,%d) claimed by unknown seat %d", x, y, seatColor)
	}

	tile.Type = tileType
	tile.Fullness = fullness
	tile.SeatColor = seatColor
	return nil
}

func (l *levelReader) readRoom(rec *codec.StreamReader) error {
	typeName, err := rec.ReadString()
	if err != nil {
		return err
	}
	seatColor, err := rec.ReadInt()
	if err != nil {
		return err
	}
	n, err := rec.ReadInt()
	if err != nil {
		return err
	}
	if n <= 0 {
		return fmt.Errorf("room without tiles")
	}

	tiles := make([]*domain.Tile, 0, n)
	for i := 0; i < n; i++ {
		x, err := rec.ReadInt()
		if err != nil {
			return err
		}
		y, err := rec.ReadInt()
		if err != nil {
			return err
		}
		t := l.gm.TileAt(x, y)
		if t == nil {
			return fmt.Errorf("%w: (%d,%d)", domain.ErrNoTile, x, y)
		}
		tiles = append(tiles, t)
	}

	seat := l.gm.Seat(seatColor)
	if seatColor != 0 && seat == nil {
		return fmt.Errorf("room owned by unknown seat %d", seatColor)
	}

	room, err := domain.NewRoom(enums.ParseRoomType(typeName), seat, l.opts.Room)
	if err != nil {
		return err
	}
	// Запись читается до конца, и только потом комната встаёт на клетки
	if err := room.DecodeStateFromSave(rec, tiles); err != nil {
		return err
	}
	if !rec.Done() {
		return errExtraFields
	}
	_, err = l.gm.AddRoom(room, tiles...)
	return err
}

func (l *levelReader) readObject(rec *codec.StreamReader) error {
	typeName, err := rec.ReadString()
	if err != nil {
		return err
	}
	obj, err := domain.NewObjectOfType(enums.ParseObjectType(typeName))
	if err != nil {
		return err
	}
	if err := obj.DecodeFromSave(rec); err != nil {
		return err
	}
	if !rec.Done() {
		return errExtraFields
	}
	// Только полностью прочитанный объект попадает на карту
	return l.gm.SpawnObject(obj, obj.Position())
}
