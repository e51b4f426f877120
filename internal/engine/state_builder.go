package engine

import (
	"sort"

	"keeper-server/internal/codec"
	"keeper-server/internal/domain"
	"keeper-server/pkg/api"
	"keeper-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// visibleTiles - маска клеток, которые видит место: захваченные им или
// союзником и все соседние с ними (включая диагональ).
func visibleTiles(gm *domain.GameMap, seat *domain.Seat) []bool {
	w, h := gm.Width(), gm.Height()
	vis := make([]bool, w*h)
	for _, t := range gm.Tiles() {
		if !t.IsClaimedForSeat(seat) {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				x, y := t.X+dx, t.Y+dy
				if x >= 0 && x < w && y >= 0 && y < h {
					vis[y*w+x] = true
				}
			}
		}
	}
	return vis
}

func objectVisible(gm *domain.GameMap, vis []bool, obj domain.MapObject) bool {
	if !obj.IsOnMap() {
		return false
	}
	t := gm.TileAtPosition(obj.Position())
	return t != nil && vis[t.Index()]
}

// publishUpdate рассылает изменения ВСЕМ подключенным сессиям
func (s *Service) publishUpdate() {
	masks := make(map[int][]bool)
	for id, sess := range s.sessions {
		vis, ok := masks[sess.seatColor]
		if !ok {
			vis = visibleTiles(s.gm, s.gm.Seat(sess.seatColor))
			masks[sess.seatColor] = vis
		}
		s.syncSession(id, sess, vis)
	}
}

// syncSession досылает сессии разницу между тем, что она знает, и тем,
// что её место видит сейчас. В конце - непереданные победы, состояние
// места и номер тика. known меняется только для кадров, вставших в канал:
// потерянное при переполнении уйдёт на следующем тике.
func (s *Service) syncSession(id string, sess *session, vis []bool) {
	seen := make(map[string]bool)
	for _, obj := range s.gm.Objects() {
		if !objectVisible(s.gm, vis, obj) {
			continue
		}
		name := obj.Name()
		seen[name] = true
		if pos, ok := sess.known[name]; ok && pos == obj.Position() {
			continue
		}
		frame, err := encodeAddObject(obj)
		if !logger.AssertTrue(err == nil, "Object does not encode for wire", logrus.Fields{"object": name, "error": err}) {
			continue
		}
		if s.Hub.SendTo(id, frame) {
			sess.known[name] = obj.Position()
		}
	}

	var gone []string
	for name := range sess.known {
		if !seen[name] {
			gone = append(gone, name)
		}
	}
	sort.Strings(gone)
	for _, name := range gone {
		frame, err := api.Encode(&api.RemoveObject{Name: name})
		if err == nil && s.Hub.SendTo(id, frame) {
			delete(sess.known, name)
		}
	}

	for _, color := range s.winners {
		if sess.announced[color] {
			continue
		}
		frame, err := api.Encode(&api.Victory{Color: int32(color)})
		if err == nil && s.Hub.SendTo(id, frame) {
			sess.announced[color] = true
		}
	}

	if seat := s.gm.Seat(sess.seatColor); seat != nil {
		if frame, err := api.Encode(seatState(seat)); err == nil {
			s.Hub.SendTo(id, frame)
		}
	}
	if frame, err := api.Encode(&api.Tick{Tick: int32(s.gm.CurrentTick())}); err == nil {
		s.Hub.SendTo(id, frame)
	}
}

func encodeAddObject(obj domain.MapObject) ([]byte, error) {
	body := codec.NewPacket()
	obj.EncodeForWire(body)
	if err := body.Err(); err != nil {
		return nil, err
	}
	return api.Encode(&api.AddObject{ObjectType: uint8(obj.Type()), Body: body.Bytes()})
}

func seatState(seat *domain.Seat) *api.SeatState {
	return &api.SeatState{
		Color:     int32(seat.Color),
		Mana:      seat.Mana,
		HP:        seat.HP,
		Gold:      int32(seat.Gold),
		Pending:   int32(seat.NumGoals()),
		Completed: int32(seat.NumCompletedGoals()),
	}
}
