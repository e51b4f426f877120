package api

import (
	"errors"
	"strings"
)

// MaxObjectNameLen - предел длины имени объекта в командах клиента.
const MaxObjectNameLen = 64

// Validator - интерфейс, который могут реализовать команды клиента
type Validator interface {
	Validate() error
}

func (m *Hello) Validate() error {
	if m.Color <= 0 {
		return errors.New("seat color must be positive")
	}
	return nil
}

func (m *Pickup) Validate() error {
	if m.Name == "" {
		return errors.New("object name is required")
	}
	if len(m.Name) > MaxObjectNameLen || strings.ContainsAny(m.Name, " \t\n") {
		return errors.New("object name is malformed")
	}
	return nil
}

func (m *Drop) Validate() error {
	if m.X < 0 || m.Y < 0 {
		return errors.New("drop coordinates cannot be negative")
	}
	return nil
}
