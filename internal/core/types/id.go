package types

import (
	"fmt"
	"strconv"
)

// ObjectID - 64-битный дескриптор объекта в арене GameMap.
//
// ObjectID является value-type: его дёшево копировать, сравнивать и
// класть в списки резидентов тайлов вместо указателей.
//
// Формат битов (от старших к младшим):
//
//	[ reserved (8) | Type (8) | Generation (16) | Index (32) ]
//
// Где:
//   - Type - тег типа объекта (enums.ObjectType)
//   - Generation - версия слота арены (защита от устаревших ссылок)
//   - Index - индекс слота в арене
type ObjectID uint64

// NilObjectID - нулевой дескриптор. Поколения слотов начинаются с 1,
// поэтому ни один живой объект не получает нулевой ID.
const NilObjectID ObjectID = 0

// Конфигурация битов ObjectID.
const (
	bitsIndex = 32
	bitsGen   = 16
	bitsType  = 8

	shiftGen  = bitsIndex
	shiftType = bitsIndex + bitsGen

	maskIndex = (1 << bitsIndex) - 1
	maskGen   = (1 << bitsGen) - 1
	maskType  = (1 << bitsType) - 1
)

// PackObjectID собирает ObjectID из составных частей.
// Проверок диапазонов нет: лишние биты просто отсекаются масками.
func PackObjectID(typeID uint8, gen uint16, index uint32) ObjectID {
	return ObjectID(
		(uint64(typeID&maskType) << shiftType) |
			(uint64(gen) << shiftGen) |
			uint64(index),
	)
}

// Index возвращает индекс слота в арене.
func (id ObjectID) Index() uint32 {
	return uint32(id & maskIndex)
}

// Generation возвращает поколение слота.
func (id ObjectID) Generation() uint16 {
	return uint16((id >> shiftGen) & maskGen)
}

// Type возвращает тег типа объекта.
func (id ObjectID) Type() uint8 {
	return uint8((id >> shiftType) & maskType)
}

// IsNil проверяет, является ли идентификатор нулевым.
func (id ObjectID) IsNil() bool {
	return id == NilObjectID
}

// String возвращает представление для логов: [type:gen:idx].
func (id ObjectID) String() string {
	if id.IsNil() {
		return "<nil>"
	}
	return fmt.Sprintf("[%d:%d:%d]", id.Type(), id.Generation(), id.Index())
}

// MarshalJSON сериализует ID строкой: JS теряет точность на uint64.
func (id ObjectID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(id), 10) + `"`), nil
}

// UnmarshalJSON принимает как строку, так и число.
func (id *ObjectID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) > 1 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		*id = NilObjectID
		return nil
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*id = ObjectID(v)
	return nil
}
