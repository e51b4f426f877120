package domain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// TileCoords переводит мировую позицию в координаты клетки.
// Центр клетки (x, y) лежит в точке (x, y, 0), поэтому округляем.
func TileCoords(v mgl64.Vec3) (int, int) {
	return int(math.Round(v.X())), int(math.Round(v.Y()))
}

// TileCenter возвращает мировую позицию центра клетки.
func TileCenter(x, y int) mgl64.Vec3 {
	return mgl64.Vec3{float64(x), float64(y), 0}
}
