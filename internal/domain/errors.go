package domain

import "errors"

var (
	ErrNoTile            = errors.New("no tile at position")
	ErrNotRegistered     = errors.New("object is not registered on the map")
	ErrAlreadyRegistered = errors.New("object is already registered")
	ErrNotOnMap          = errors.New("object is not on the map")
	ErrDuplicateName     = errors.New("object name already in use")
	ErrUnknownRoomType   = errors.New("unknown room type")
	ErrUnknownGoal       = errors.New("unknown goal type")
	ErrDuplicateSeat     = errors.New("seat color already in use")
	ErrNoSeat            = errors.New("no seat with this color")
	ErrBadSeatColor      = errors.New("seat color must be positive")
	ErrTileAlreadyInUse  = errors.New("tile already covered by a room")
	ErrForeignTile       = errors.New("tile belongs to another map")
	ErrResidency         = errors.New("tile residency broken")
)
