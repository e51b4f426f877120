package actions

import (
	"fmt"

	"keeper-server/internal/domain"
	"keeper-server/internal/engine/handlers"
	"keeper-server/internal/systems"
	"keeper-server/pkg/api"
)

// HandleDrop обрабатывает команду DROP - последний взятый объект кладётся на клетку
func HandleDrop(ctx handlers.Context, p *api.Drop) (handlers.Result, error) {
	tile := ctx.GM.TileAt(int(p.X), int(p.Y))
	if tile == nil {
		return handlers.Result{}, fmt.Errorf("drop at %d,%d: %w", p.X, p.Y, domain.ErrNoTile)
	}

	msg, err := systems.TryDrop(ctx.GM, ctx.Hand, ctx.Seat, tile, ctx.EditorMode)
	if err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{Msg: msg, MsgType: "HAND", Event: "drop"}, nil
}
