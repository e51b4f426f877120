package engine

import (
	"errors"
	"reflect"
	"testing"

	"keeper-server/internal/config"
	"keeper-server/internal/domain"
)

func TestSetupMatch(t *testing.T) {
	s, _ := newTestMatch(t)
	if err := s.gm.AddSeat(domain.NewSeat(3, "Keepers")); err != nil {
		t.Fatalf("AddSeat() error = %v", err)
	}

	mc := config.MatchConfig{
		Alliances: [][]int{{1, 3}},
		Goals: []config.SeatGoals{
			{Seat: 1, Goals: []config.GoalConfig{{Type: "gold", Target: 100}, {Type: "claim", Target: 4}}},
			{Seat: 2, Goals: []config.GoalConfig{{Type: "mana", Target: 10}}},
		},
	}
	if err := SetupMatch(s.gm, mc); err != nil {
		t.Fatalf("SetupMatch() error = %v", err)
	}

	if got := s.gm.Seat(1).Allies(); !reflect.DeepEqual(got, []int{3}) {
		t.Errorf("seat 1 allies = %v, want [3]", got)
	}
	if got := s.gm.Seat(3).Allies(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("seat 3 allies = %v, want [1]", got)
	}
	if len(s.gm.Seat(2).Allies()) != 0 {
		t.Errorf("seat 2 allies = %v, want none", s.gm.Seat(2).Allies())
	}
	if s.gm.Seat(1).NumGoals() != 2 || s.gm.Seat(2).NumGoals() != 1 {
		t.Errorf("goals = %d, %d", s.gm.Seat(1).NumGoals(), s.gm.Seat(2).NumGoals())
	}
}

func TestSetupMatch_Errors(t *testing.T) {
	tests := []struct {
		name string
		mc   config.MatchConfig
		want error
	}{
		{"alliance with unknown seat", config.MatchConfig{Alliances: [][]int{{1, 7}}}, domain.ErrNoSeat},
		{"goals for unknown seat", config.MatchConfig{Goals: []config.SeatGoals{{Seat: 7}}}, domain.ErrNoSeat},
		{"unknown goal type", config.MatchConfig{Goals: []config.SeatGoals{
			{Seat: 1, Goals: []config.GoalConfig{{Type: "souls", Target: 1}}},
		}}, domain.ErrUnknownGoal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestMatch(t)
			if err := SetupMatch(s.gm, tt.mc); !errors.Is(err, tt.want) {
				t.Errorf("SetupMatch() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Match.TickMs = 100
	cfg.Match.EditorMode = true
	cfg.Treasury.MaxGoldPerTile = 250

	c := FromConfig(cfg)
	if c.TickInterval.Milliseconds() != 100 || !c.EditorMode || c.Room.MaxGoldPerTile != 250 {
		t.Errorf("FromConfig() = %+v", c)
	}
	if c.MatchID == "" || c.MatchID == NewConfig().MatchID {
		t.Errorf("MatchID = %q, want a fresh uuid", c.MatchID)
	}
}
