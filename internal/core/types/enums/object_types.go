package enums

import "strings"

// ObjectType - тег типа объекта на карте. Лежит в старших битах ObjectID
// и первым полем в сохранениях и пакетах.
type ObjectType uint8

const (
	ObjectTypeUnknown ObjectType = iota
	ObjectTypeTreasury
)

var objectTypeToString = map[ObjectType]string{
	ObjectTypeTreasury: "treasury",
}

var objectTypeStringToType = map[string]ObjectType{
	"treasury": ObjectTypeTreasury,
}

// String возвращает строковое представление (для логов и сохранений)
func (o ObjectType) String() string {
	if val, ok := objectTypeToString[o]; ok {
		return val
	}
	return "unknown"
}

// ParseObjectType конвертирует строку из файла уровня в Enum
func ParseObjectType(s string) ObjectType {
	if val, ok := objectTypeStringToType[strings.ToLower(s)]; ok {
		return val
	}
	return ObjectTypeUnknown
}
