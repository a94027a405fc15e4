package device

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// Параметры порта по умолчанию.
const (
	DefaultPort     = "/dev/ttyUSB0"
	DefaultBaudRate = 9600
)

// OpenSerial открывает последовательный порт 8N1.
func OpenSerial(name string, baud int) (io.ReadWriteCloser, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	return port, nil
}

// ListPorts перечисляет доступные последовательные порты.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}
