package codec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// StreamWriter пишет текстовый поток сохранений: скаляры через табуляцию,
// одна сущность на строку. Первая ошибка запоминается, дальнейшие записи
// игнорируются (проверяется через Err / Flush).
type StreamWriter struct {
	w           *bufio.Writer
	atLineStart bool
	err         error
}

func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: bufio.NewWriter(w), atLineStart: true}
}

func (s *StreamWriter) token(tok string) {
	if s.err != nil {
		return
	}
	if !s.atLineStart {
		if err := s.w.WriteByte('\t'); err != nil {
			s.err = err
			return
		}
	}
	if _, err := s.w.WriteString(tok); err != nil {
		s.err = err
		return
	}
	s.atLineStart = false
}

func (s *StreamWriter) WriteInt(v int) {
	s.token(strconv.Itoa(v))
}

func (s *StreamWriter) WriteFloat(v float64) {
	s.token(strconv.FormatFloat(v, 'g', -1, 64))
}

// WriteString пишет одиночный токен. Пустая строка и пробелы внутри
// сломали бы позиционный разбор, поэтому это ошибка.
func (s *StreamWriter) WriteString(v string) {
	if v == "" || strings.ContainsAny(v, " \t\r\n") {
		if s.err == nil {
			s.err = fmt.Errorf("%w: %q", ErrBadToken, v)
		}
		return
	}
	s.token(v)
}

func (s *StreamWriter) WriteVec3(v mgl64.Vec3) {
	s.WriteFloat(v.X())
	s.WriteFloat(v.Y())
	s.WriteFloat(v.Z())
}

// EndLine завершает текущую запись.
func (s *StreamWriter) EndLine() {
	if s.err != nil {
		return
	}
	if err := s.w.WriteByte('\n'); err != nil {
		s.err = err
		return
	}
	s.atLineStart = true
}

// Comment пишет строку-комментарий (например, формат секции).
func (s *StreamWriter) Comment(text string) {
	if !s.atLineStart {
		s.EndLine()
	}
	if s.err != nil {
		return
	}
	if _, err := s.w.WriteString("# " + text + "\n"); err != nil {
		s.err = err
	}
}

func (s *StreamWriter) Err() error {
	return s.err
}

// Flush сбрасывает буфер и возвращает первую ошибку записи.
func (s *StreamWriter) Flush() error {
	if s.err != nil {
		return s.err
	}
	return s.w.Flush()
}

// StreamReader читает тот же формат позиционно. Пустые строки и строки,
// начинающиеся с '#', пропускаются. Границы строк не значимы: поля
// разбираются строго по порядку.
type StreamReader struct {
	r      *bufio.Reader
	tokens []string
	line   int
	eof    bool
}

func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: bufio.NewReader(r)}
}

// Line возвращает номер последней прочитанной строки (для сообщений об ошибках).
func (s *StreamReader) Line() int {
	return s.line
}

func (s *StreamReader) fill() error {
	for len(s.tokens) == 0 {
		if s.eof {
			return io.EOF
		}
		raw, err := s.r.ReadString('\n')
		if err == io.EOF {
			s.eof = true
		} else if err != nil {
			return err
		}
		if raw == "" && s.eof {
			return io.EOF
		}
		s.line++

		text := strings.TrimSpace(raw)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		s.tokens = strings.Fields(text)
	}
	return nil
}

// Peek возвращает следующий токен, не забирая его. io.EOF в конце потока.
func (s *StreamReader) Peek() (string, error) {
	if err := s.fill(); err != nil {
		return "", err
	}
	return s.tokens[0], nil
}

// ReadString забирает следующий токен.
func (s *StreamReader) ReadString() (string, error) {
	if err := s.fill(); err != nil {
		if err == io.EOF {
			return "", fmt.Errorf("%w at line %d", ErrShortStream, s.line)
		}
		return "", err
	}
	tok := s.tokens[0]
	s.tokens = s.tokens[1:]
	return tok, nil
}

func (s *StreamReader) ReadInt() (int, error) {
	tok, err := s.ReadString()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: %q at line %d", ErrBadScalar, tok, s.line)
	}
	return v, nil
}

func (s *StreamReader) ReadFloat() (float64, error) {
	tok, err := s.ReadString()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q at line %d", ErrBadScalar, tok, s.line)
	}
	return v, nil
}

func (s *StreamReader) ReadVec3() (mgl64.Vec3, error) {
	var v mgl64.Vec3
	for i := range v {
		f, err := s.ReadFloat()
		if err != nil {
			return mgl64.Vec3{}, err
		}
		v[i] = f
	}
	return v, nil
}

// NextRecord отдаёт остаток текущей строки отдельным читателем. Так
// ошибка в одной записи не съедает токены следующей.
func (s *StreamReader) NextRecord() (*StreamReader, error) {
	if err := s.fill(); err != nil {
		return nil, err
	}
	rec := &StreamReader{tokens: s.tokens, line: s.line, eof: true}
	s.tokens = nil
	return rec, nil
}

// Done - в читателе не осталось токенов.
func (s *StreamReader) Done() bool {
	_, err := s.Peek()
	return err != nil
}

// SkipLine отбрасывает остаток текущей строки. Используется после
// ошибки разбора, чтобы продолжить со следующей записи.
func (s *StreamReader) SkipLine() {
	s.tokens = nil
}
