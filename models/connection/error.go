package connection

import "fmt"

const (
	ConnLoopBreak uint8 = iota
	ConnLoopRetry
	ConnLoopAbnormalClosureRetry
	ConnLoopContinue
	ConnLoopPassThrough
	ConnInvalidMsgType
)

var connLoopCodeNames = [...]string{"break", "retry", "abnormal closure retry", "continue", "pass through", "invalid message type"}

type ConnErr struct {
	code uint8
	desc string
}

func NewConnErr(code uint8) ConnErr {
	return ConnErr{code: code}
}

func (c ConnErr) AddDesc(desc string) ConnErr {
	c.desc = desc
	return c
}

func (c ConnErr) Error() string {
	name := "unknown"
	if int(c.code) < len(connLoopCodeNames) {
		name = connLoopCodeNames[c.code]
	}
	return fmt.Sprintf("connection error - code: %s\tdesc: %s", name, c.desc)
}

func (c ConnErr) Code() uint8 {
	return c.code
}
