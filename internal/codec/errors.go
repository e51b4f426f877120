package codec

import "errors"

var (
	// ErrShortStream - поток кончился раньше, чем формат сущности.
	ErrShortStream = errors.New("codec: short stream")
	// ErrBadScalar - токен не разбирается как ожидаемый скаляр.
	ErrBadScalar = errors.New("codec: bad scalar")
	// ErrTruncatedPacket - чтение за концом пакета.
	ErrTruncatedPacket = errors.New("codec: truncated packet")
	// ErrUnknownObjectType - тег типа не найден в реестре.
	ErrUnknownObjectType = errors.New("codec: unknown object type")
	// ErrBadToken - строку нельзя записать в текстовый поток (пробелы внутри).
	ErrBadToken = errors.New("codec: token contains whitespace")
)
