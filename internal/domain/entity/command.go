package entity

import (
	"fmt"
	"strings"
)

// CommandKind — тип команды плоттера.
type CommandKind string

const (
	CommandSetSpeed CommandKind = "speed"    // SPEED <ms>
	CommandPenUp    CommandKind = "pen_up"   // PENUP
	CommandPenDown  CommandKind = "pen_down" // PENDOWN
	CommandMoveTo   CommandKind = "move"     // MOVE <x> <y>
	CommandRaw      CommandKind = "raw"      // произвольная строка для диагностики
)

// Оси для диагностической команды SET.
const (
	AxisX = "X"
	AxisY = "Y"
)

// Command — одна строка протокола устройства.
type Command struct {
	Kind     CommandKind
	Interval int              // для SetSpeed, миллисекунды
	Target   DeviceCoordinate // для MoveTo
	Text     string           // для Raw
}

// SetSpeed задаёт интервал шага.
func SetSpeed(ms int) Command { return Command{Kind: CommandSetSpeed, Interval: ms} }

// PenUp поднимает перо.
func PenUp() Command { return Command{Kind: CommandPenUp} }

// PenDown опускает перо.
func PenDown() Command { return Command{Kind: CommandPenDown} }

// MoveTo перемещает перо в точку устройства.
func MoveTo(c DeviceCoordinate) Command { return Command{Kind: CommandMoveTo, Target: c} }

// RawDirective отправляет строку как есть.
func RawDirective(text string) Command {
	return Command{Kind: CommandRaw, Text: strings.TrimSpace(text)}
}

// SetAxis напрямую выставляет угол оси (только ручной режим).
func SetAxis(axis string, angle int) Command {
	return RawDirective(fmt.Sprintf("SET %s %d", axis, angle))
}

// String сериализует команду в строку протокола без перевода строки.
func (c Command) String() string {
	switch c.Kind {
	case CommandSetSpeed:
		return fmt.Sprintf("SPEED %d", c.Interval)
	case CommandPenUp:
		return "PENUP"
	case CommandPenDown:
		return "PENDOWN"
	case CommandMoveTo:
		return fmt.Sprintf("MOVE %d %d", c.Target.X, c.Target.Y)
	case CommandRaw:
		return c.Text
	default:
		return ""
	}
}
