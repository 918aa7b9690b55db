package vm

import "fmt"

type MessageType int

const (
	_ MessageType = iota
	MsgStep
	MsgSyscall
	MsgHalt
	MsgFault
	MsgExit
)

func (mt MessageType) String() string {
	switch mt {
	case MsgStep:
		return "Step"
	case MsgSyscall:
		return "Syscall"
	case MsgHalt:
		return "Halt"
	case MsgFault:
		return "Fault"
	case MsgExit:
		return "Exit"
	default:
		return "Unknown"
	}
}

type Message struct {
	Type    MessageType
	IC      uint16
	Message string
}

func NewMessage(mt MessageType, ic uint16, msg string) Message {
	return Message{
		Type:    mt,
		IC:      ic,
		Message: msg,
	}
}

func (m Message) String() string {
	return fmt.Sprintf("[%s] 0x%04x: %s", m.Type, m.IC, m.Message)
}

// emit forwards a message to the hook, if any. Synchronous.
func (m *Machine) emit(mt MessageType, format string, args ...any) {
	if m.Hook == nil {
		return
	}
	m.Hook(NewMessage(mt, m.Regs.IC, fmt.Sprintf(format, args...)))
}
