package actions

import (
	"keeper-server/internal/engine/handlers"
	"keeper-server/internal/systems"
	"keeper-server/pkg/api"
	"keeper-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// HandlePickup обрабатывает команду PICKUP - хранитель берёт объект в руку
func HandlePickup(ctx handlers.Context, p *api.Pickup) (handlers.Result, error) {
	obj := ctx.GM.ObjectByName(p.Name)

	msg, err := systems.TryPickup(ctx.GM, ctx.Hand, ctx.Seat, obj, ctx.EditorMode)
	if err != nil {
		return handlers.Result{}, err
	}

	logger.Log.WithFields(logrus.Fields{
		"component": "pickup_handler",
		"seat":      ctx.Seat.Color,
		"object":    p.Name,
		"hand":      ctx.Hand.Len(),
	}).Debug("Object picked up")

	return handlers.Result{Msg: msg, MsgType: "HAND", Event: "pickup"}, nil
}
