package domain

import (
	"fmt"
	"strings"
)

// Goal - условие победы, которое отслеживается для места (Seat).
// Предикат проверяется только против состояния самого Seat.
type Goal interface {
	Name() string
	Description() string
	IsMet(s *Seat) bool
}

// ManaGoal выполнен, когда у хранителя накоплено Target маны.
type ManaGoal struct {
	Target float64
}

func (g *ManaGoal) Name() string { return "mana" }

func (g *ManaGoal) Description() string {
	return fmt.Sprintf("Accumulate %.0f mana", g.Target)
}

func (g *ManaGoal) IsMet(s *Seat) bool { return s.Mana >= g.Target }

// GoldGoal выполнен, когда в сокровищницах места лежит Target золота.
type GoldGoal struct {
	Target int
}

func (g *GoldGoal) Name() string { return "gold" }

func (g *GoldGoal) Description() string {
	return fmt.Sprintf("Store %d gold in treasuries", g.Target)
}

func (g *GoldGoal) IsMet(s *Seat) bool { return s.Gold >= g.Target }

// ClaimGoal выполнен, когда место захватило Target клеток.
type ClaimGoal struct {
	Target int
}

func (g *ClaimGoal) Name() string { return "claim" }

func (g *ClaimGoal) Description() string {
	return fmt.Sprintf("Claim %d tiles", g.Target)
}

func (g *ClaimGoal) IsMet(s *Seat) bool { return s.ClaimedTiles >= g.Target }

// NewGoal строит цель по тегу из конфига.
func NewGoal(kind string, target int) (Goal, error) {
	switch strings.ToLower(kind) {
	case "mana":
		return &ManaGoal{Target: float64(target)}, nil
	case "gold":
		return &GoldGoal{Target: target}, nil
	case "claim":
		return &ClaimGoal{Target: target}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownGoal, kind)
}
