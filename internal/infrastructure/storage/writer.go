package storage

import (
	"fmt"
	"io"

	"keeper-server/internal/codec"
	"keeper-server/internal/core/types/enums"
	"keeper-server/internal/domain"
)

// Заголовки секций файла уровня
const (
	SectionSeats      = "Seats"
	SectionTiles      = "Tiles"
	SectionRooms      = "Rooms"
	SectionMapObjects = "MapObjects"
)

// Форматы записей (пишутся комментарием в начале каждой секции)
const (
	tileFormat   = "x\ty\ttype\tfullness\tseat"
	roomFormat   = "type\tseat\tnumTiles\t[x\ty]...\tstate"
	objectFormat = "type\t<object format>"
)

func openTag(section string) string  { return "[" + section + "]" }
func closeTag(section string) string { return "[/" + section + "]" }

// WriteLevel пишет карту в текстовом формате уровня. Клетки по умолчанию
// (dirt, пустые, ничьи) не пишутся.
func WriteLevel(w io.Writer, gm *domain.GameMap) error {
	sw := codec.NewStreamWriter(w)

	sw.Comment("keeper level")
	sw.WriteInt(gm.Width())
	sw.WriteInt(gm.Height())
	sw.EndLine()

	writeSection(sw, SectionSeats, domain.SeatFormat, func() {
		for _, seat := range gm.Seats() {
			seat.EncodeForSave(sw)
		}
	})

	writeSection(sw, SectionTiles, tileFormat, func() {
		for _, t := range gm.Tiles() {
			if isDefaultTile(t) {
				continue
			}
			sw.WriteInt(t.X)
			sw.WriteInt(t.Y)
			sw.WriteString(t.Type.String())
			sw.WriteFloat(t.Fullness)
			sw.WriteInt(t.SeatColor)
			sw.EndLine()
		}
	})

	writeSection(sw, SectionRooms, roomFormat, func() {
		for _, room := range gm.Rooms() {
			seatColor := 0
			if room.Seat() != nil {
				seatColor = room.Seat().Color
			}
			tiles := room.Tiles()

			sw.WriteString(room.Type().String())
			sw.WriteInt(seatColor)
			sw.WriteInt(len(tiles))
			for _, t := range tiles {
				sw.WriteInt(t.X)
				sw.WriteInt(t.Y)
			}
			room.EncodeStateForSave(sw)
			sw.EndLine()
		}
	})

	writeSection(sw, SectionMapObjects, objectFormat, func() {
		for _, obj := range gm.Objects() {
			// Объект в руке пишется на последней позиции
			if obj.State() != domain.StateOnMap && obj.State() != domain.StatePickedUp {
				continue
			}
			sw.WriteString(obj.Type().String())
			obj.EncodeForSave(sw)
			sw.EndLine()
		}
	})

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("write level: %w", err)
	}
	return nil
}

func writeSection(sw *codec.StreamWriter, section, format string, body func()) {
	sw.WriteString(openTag(section))
	sw.EndLine()
	sw.Comment(format)
	body()
	sw.WriteString(closeTag(section))
	sw.EndLine()
}

func isDefaultTile(t *domain.Tile) bool {
	return t.Type == enums.TileTypeDirt && t.Fullness == 0 && t.SeatColor == 0
}
