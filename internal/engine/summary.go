package engine

import (
	"keeper-server/internal/domain"
)

// MapSummary - снимок партии для /debug/map. Собирается в горутине тика,
// читается откуда угодно.
type MapSummary struct {
	MatchID   string          `json:"match_id"`
	Tick      int             `json:"tick"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Sessions  int             `json:"sessions"`
	Seats     []SeatSummary   `json:"seats"`
	Objects   []ObjectSummary `json:"objects"`
	Residency string          `json:"residency"` // "ok" или текст нарушения
}

type SeatSummary struct {
	Color          int     `json:"color"`
	Faction        string  `json:"faction"`
	Gold           int     `json:"gold"`
	Mana           float64 `json:"mana"`
	ClaimedTiles   int     `json:"claimed_tiles"`
	PendingGoals   int     `json:"pending_goals"`
	CompletedGoals int     `json:"completed_goals"`
	Allies         []int   `json:"allies,omitempty"`
	Hand           int     `json:"hand"`
}

type ObjectSummary struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	State string `json:"state"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Gold  int    `json:"gold,omitempty"`
}

// Summary возвращает последний собранный снимок.
func (s *Service) Summary() MapSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

func (s *Service) refreshSummary() {
	sum := MapSummary{
		MatchID:   s.cfg.MatchID,
		Tick:      s.gm.CurrentTick(),
		Width:     s.gm.Width(),
		Height:    s.gm.Height(),
		Sessions:  len(s.sessions),
		Residency: "ok",
	}

	for _, seat := range s.gm.Seats() {
		ss := SeatSummary{
			Color:          seat.Color,
			Faction:        seat.Faction,
			Gold:           seat.Gold,
			Mana:           seat.Mana,
			ClaimedTiles:   seat.ClaimedTiles,
			PendingGoals:   seat.NumGoals(),
			CompletedGoals: seat.NumCompletedGoals(),
			Allies:         seat.Allies(),
		}
		if h, ok := s.hands[seat.Color]; ok {
			ss.Hand = h.Len()
		}
		sum.Seats = append(sum.Seats, ss)
	}

	for _, obj := range s.gm.Objects() {
		x, y := domain.TileCoords(obj.Position())
		view := ObjectSummary{
			Name:  obj.Name(),
			Type:  obj.Type().String(),
			State: obj.State().String(),
			X:     x,
			Y:     y,
		}
		if t, ok := obj.(*domain.TreasuryObject); ok {
			view.Gold = t.Gold()
		}
		sum.Objects = append(sum.Objects, view)
	}

	if err := s.gm.CheckResidency(); err != nil {
		sum.Residency = err.Error()
	}

	s.mu.Lock()
	s.summary = sum
	s.mu.Unlock()
}
