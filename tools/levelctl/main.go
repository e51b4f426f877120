package main

import (
	"fmt"
	"os"
	"strconv"

	"keeper-server/internal/core/types/enums"
	"keeper-server/internal/domain"
	"keeper-server/internal/infrastructure/storage"
	"keeper-server/pkg/dungeon"
)

func main() {
	if len(os.Args) < 2 {
		printHelp()
		return
	}

	var err error
	switch os.Args[1] {
	case "info":
		if len(os.Args) < 3 {
			fmt.Println("Usage: levelctl info <level>")
			return
		}
		err = info(os.Args[2])
	case "convert":
		if len(os.Args) < 4 {
			fmt.Println("Usage: levelctl convert <in> <out>")
			return
		}
		err = convert(os.Args[2], os.Args[3])
	case "blank":
		if len(os.Args) < 6 {
			fmt.Println("Usage: levelctl blank <width> <height> <seats> <out>")
			return
		}
		err = blank(os.Args[2], os.Args[3], os.Args[4], os.Args[5])
	default:
		printHelp()
		return
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "levelctl: %v\n", err)
		os.Exit(1)
	}
}

func info(path string) error {
	gm, err := storage.LoadFile(path, storage.LoadOptions{IsServer: true})
	if err != nil {
		return err
	}

	fmt.Printf("%s: %dx%d\n", path, gm.Width(), gm.Height())
	for _, s := range gm.Seats() {
		fmt.Printf("  %s start=(%d,%d)\n", s, s.StartingX, s.StartingY)
	}
	for _, r := range gm.Rooms() {
		line := fmt.Sprintf("  room %d %s seat=%d tiles=%d", r.ID(), r.Type(), r.Seat().Color, len(r.Tiles()))
		if t, ok := r.(*domain.Treasury); ok {
			line += fmt.Sprintf(" gold=%d", t.TotalGold())
		}
		fmt.Println(line)
	}
	for _, obj := range gm.Objects() {
		fmt.Printf("  %s\n", domain.DescribeObject(obj))
	}

	if err := gm.CheckResidency(); err != nil {
		return err
	}
	fmt.Println("  residency ok")
	return nil
}

// convert перекладывает уровень, формат выбирается по расширению (.zst - сжатый)
func convert(in, out string) error {
	gm, err := storage.LoadFile(in, storage.LoadOptions{IsServer: true})
	if err != nil {
		return err
	}
	return storage.SaveFile(out, gm)
}

// blank - пустая карта в скальной рамке, у каждого места стартовый
// участок 3x3 с сокровищницей 2x1 в верхнем ряду.
func blank(ws, hs, ns, out string) error {
	w, err := strconv.Atoi(ws)
	if err != nil {
		return fmt.Errorf("width: %w", err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return fmt.Errorf("height: %w", err)
	}
	seats, err := strconv.Atoi(ns)
	if err != nil {
		return fmt.Errorf("seats: %w", err)
	}
	if w < 5 || h < 5 || seats < 0 || (seats*4+1) > w {
		return fmt.Errorf("%d seats do not fit into %dx%d", seats, w, h)
	}

	b := dungeon.NewLevel(w, h).WithRockBorder()
	for i := 0; i < seats; i++ {
		color := i + 1
		area := dungeon.Rect{X: 1 + i*4, Y: 1, W: 3, H: 3}
		b.WithSeat(color, "Keepers").
			Claim(color, area).
			WithRoom(enums.RoomTypeTreasury, color, dungeon.Rect{X: area.X, Y: area.Y, W: 2, H: 1})
	}

	gm, err := b.Build()
	if err != nil {
		return err
	}
	for _, s := range gm.Seats() {
		s.StartingX, s.StartingY = 2+(s.Color-1)*4, 2
	}
	return storage.SaveFile(out, gm)
}

func printHelp() {
	fmt.Println(`Level utility - уровни keeper-server
Commands:
  info <level>                        - места, комнаты, объекты и проверка резидентов
  convert <in> <out>                  - перезаписать уровень (.zst на выходе - сжатый)
  blank <width> <height> <seats> <out> - пустая карта со стартовыми участками мест`)
}
