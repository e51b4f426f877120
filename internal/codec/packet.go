package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxStringLen - предел длины строки в пакете (uint16 префикс).
const MaxStringLen = math.MaxUint16

// Packet - бинарный буфер для сетевой синхронизации. Числа little-endian,
// строки с префиксом длины uint16. Запись дописывает в конец, чтение идёт
// с курсора. Ошибка записи запоминается и возвращается из Err.
type Packet struct {
	buf []byte
	off int
	err error
}

func NewPacket() *Packet {
	return &Packet{buf: make([]byte, 0, 64)}
}

// FromBytes оборачивает принятые данные для чтения.
func FromBytes(data []byte) *Packet {
	return &Packet{buf: data}
}

func (p *Packet) Bytes() []byte {
	return p.buf
}

// Remaining - сколько байт ещё не прочитано.
func (p *Packet) Remaining() int {
	return len(p.buf) - p.off
}

func (p *Packet) Err() error {
	return p.err
}

func (p *Packet) WriteUint8(v uint8) {
	p.buf = append(p.buf, v)
}

func (p *Packet) WriteInt32(v int32) {
	p.buf = binary.LittleEndian.AppendUint32(p.buf, uint32(v))
}

func (p *Packet) WriteFloat64(v float64) {
	p.buf = binary.LittleEndian.AppendUint64(p.buf, math.Float64bits(v))
}

func (p *Packet) WriteString(s string) {
	if len(s) > MaxStringLen {
		if p.err == nil {
			p.err = fmt.Errorf("codec: string too long: %d", len(s))
		}
		return
	}
	p.buf = binary.LittleEndian.AppendUint16(p.buf, uint16(len(s)))
	p.buf = append(p.buf, s...)
}

// WriteBytes дописывает сырые байты без префикса (вложенное тело).
func (p *Packet) WriteBytes(b []byte) {
	p.buf = append(p.buf, b...)
}

func (p *Packet) WriteVec3(v mgl64.Vec3) {
	p.WriteFloat64(v.X())
	p.WriteFloat64(v.Y())
	p.WriteFloat64(v.Z())
}

func (p *Packet) take(n int) ([]byte, error) {
	if n < 0 || p.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedPacket, n, p.Remaining())
	}
	b := p.buf[p.off : p.off+n]
	p.off += n
	return b, nil
}

func (p *Packet) ReadUint8() (uint8, error) {
	b, err := p.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (p *Packet) ReadInt32() (int32, error) {
	b, err := p.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (p *Packet) ReadFloat64() (float64, error) {
	b, err := p.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

func (p *Packet) ReadString() (string, error) {
	lb, err := p.take(2)
	if err != nil {
		return "", err
	}
	n := int(binary.LittleEndian.Uint16(lb))
	b, err := p.take(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p *Packet) ReadVec3() (mgl64.Vec3, error) {
	var v mgl64.Vec3
	for i := range v {
		f, err := p.ReadFloat64()
		if err != nil {
			return mgl64.Vec3{}, err
		}
		v[i] = f
	}
	return v, nil
}

// ReadRest забирает все непрочитанные байты.
func (p *Packet) ReadRest() []byte {
	b := p.buf[p.off:]
	p.off = len(p.buf)
	return b
}
