package engine

import (
	"fmt"

	"keeper-server/internal/config"
	"keeper-server/internal/domain"
)

// SetupMatch раздаёт местам союзы и цели из конфига. Уровень на диске их
// не хранит, поэтому вызывается после каждой загрузки карты.
func SetupMatch(gm *domain.GameMap, mc config.MatchConfig) error {
	allies := make(map[int][]int)
	for _, group := range mc.Alliances {
		for _, color := range group {
			if gm.Seat(color) == nil {
				return fmt.Errorf("alliance: %w: %d", domain.ErrNoSeat, color)
			}
			allies[color] = append(allies[color], group...)
		}
	}
	for color, colors := range allies {
		gm.Seat(color).SetAllies(colors)
	}

	for _, sg := range mc.Goals {
		seat := gm.Seat(sg.Seat)
		if seat == nil {
			return fmt.Errorf("goals: %w: %d", domain.ErrNoSeat, sg.Seat)
		}
		for _, gc := range sg.Goals {
			goal, err := domain.NewGoal(gc.Type, gc.Target)
			if err != nil {
				return fmt.Errorf("goals for seat %d: %w", sg.Seat, err)
			}
			seat.AddGoal(goal)
		}
	}
	return nil
}
