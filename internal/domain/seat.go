package domain

import (
	"fmt"
	"sort"

	"keeper-server/internal/codec"

	"github.com/go-gl/mathgl/mgl64"
)

// SeatFormat - порядок полей Seat в потоке сохранения.
const SeatFormat = "color\tfaction\tstartingX\tstartingY\tcolourValue\tmana\tHP"

// Seat - место игрока (или ИИ) в партии: ресурсы хранителя и цели.
type Seat struct {
	Color       int        // Индекс цвета, он же идентификатор места
	Faction     string     // Фракция, за которую играет место
	StartingX   int        // Стартовая позиция камеры (в клетках)
	StartingY   int        // Стартовая позиция камеры (в клетках)
	ColourValue mgl64.Vec4 // Цвет, в который разрешается индекс (RGBA)
	Mana        float64    // Мана хранителя
	HP          float64    // Здоровье хранителя

	// Производные значения, GameMap пересчитывает их после каждого тика.
	Gold         int
	ClaimedTiles int

	allies map[int]bool

	goals          []Goal // Невыполненные цели; первый, кто их опустошит, побеждает
	completedGoals []Goal // Выполненные цели, только дописываются
}

func NewSeat(color int, faction string) *Seat {
	return &Seat{
		Color:       color,
		Faction:     faction,
		ColourValue: mgl64.Vec4{1, 1, 1, 1},
	}
}

// AddGoal дописывает цель в список невыполненных. Дубликаты не проверяются.
func (s *Seat) AddGoal(g Goal) {
	s.goals = append(s.goals, g)
}

func (s *Seat) NumGoals() int {
	return len(s.goals)
}

// Goal возвращает невыполненную цель по индексу. Индекс не проверяется:
// вызывающий сверяется с NumGoals.
func (s *Seat) Goal(i int) Goal {
	return s.goals[i]
}

func (s *Seat) NumCompletedGoals() int {
	return len(s.completedGoals)
}

// CompletedGoal - то же, что Goal, для выполненных.
func (s *Seat) CompletedGoal(i int) Goal {
	return s.completedGoals[i]
}

// CheckAllGoals переносит выполненные цели в completed (по одному разу,
// сохраняя порядок) и возвращает true, если невыполненных не осталось.
func (s *Seat) CheckAllGoals() bool {
	pending := s.goals[:0]
	for _, g := range s.goals {
		if g.IsMet(s) {
			s.completedGoals = append(s.completedGoals, g)
			continue
		}
		pending = append(pending, g)
	}
	// Зануляем хвост, чтобы перенесённые цели не держались старым массивом
	for i := len(pending); i < len(s.goals); i++ {
		s.goals[i] = nil
	}
	s.goals = pending
	return len(s.goals) == 0
}

// SetAllies задаёт союзные места по цветам.
func (s *Seat) SetAllies(colors []int) {
	s.allies = make(map[int]bool, len(colors))
	for _, c := range colors {
		if c != s.Color {
			s.allies[c] = true
		}
	}
}

// Allies возвращает цвета союзников по возрастанию.
func (s *Seat) Allies() []int {
	out := make([]int, 0, len(s.allies))
	for c := range s.allies {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// IsAlliedSeat - место союзно само себе и настроенным союзникам.
func (s *Seat) IsAlliedSeat(other *Seat) bool {
	if s == nil || other == nil {
		return false
	}
	return other.Color == s.Color || s.allies[other.Color]
}

func (s *Seat) String() string {
	return fmt.Sprintf("seat[%d:%s]", s.Color, s.Faction)
}

// EncodeForSave пишет скалярные поля в порядке SeatFormat. Цели сюда не входят.
func (s *Seat) EncodeForSave(w *codec.StreamWriter) {
	w.WriteInt(s.Color)
	w.WriteString(s.Faction)
	w.WriteInt(s.StartingX)
	w.WriteInt(s.StartingY)
	for _, c := range s.ColourValue {
		w.WriteFloat(c)
	}
	w.WriteFloat(s.Mana)
	w.WriteFloat(s.HP)
	w.EndLine()
}

// DecodeSeatFromSave читает Seat в порядке SeatFormat. При ошибке возвращает nil:
// недочитанное место в партию не попадает.
func DecodeSeatFromSave(r *codec.StreamReader) (*Seat, error) {
	s := NewSeat(0, "")
	var err error

	if s.Color, err = r.ReadInt(); err != nil {
		return nil, fmt.Errorf("seat color: %w", err)
	}
	// 0 у клетки значит "ничья", такое место не смогло бы ничего захватить
	if s.Color <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSeatColor, s.Color)
	}
	if s.Faction, err = r.ReadString(); err != nil {
		return nil, fmt.Errorf("seat faction: %w", err)
	}
	if s.StartingX, err = r.ReadInt(); err != nil {
		return nil, fmt.Errorf("seat startingX: %w", err)
	}
	if s.StartingY, err = r.ReadInt(); err != nil {
		return nil, fmt.Errorf("seat startingY: %w", err)
	}
	for i := range s.ColourValue {
		if s.ColourValue[i], err = r.ReadFloat(); err != nil {
			return nil, fmt.Errorf("seat colour: %w", err)
		}
	}
	if s.Mana, err = r.ReadFloat(); err != nil {
		return nil, fmt.Errorf("seat mana: %w", err)
	}
	if s.HP, err = r.ReadFloat(); err != nil {
		return nil, fmt.Errorf("seat HP: %w", err)
	}
	return s, nil
}
