package parser

import (
	"fmt"
	"strconv"
)

// Variable is a storage declaration: `name size ["initializer"]`.
type Variable struct {
	Name string
	Size int
	Init []byte // Nil when zero initialized.
	Line int
}

func (v Variable) PrettyPrint() string {
	if v.Init == nil {
		return fmt.Sprintf("%s %d", v.Name, v.Size)
	}
	return fmt.Sprintf("%s %d %s", v.Name, v.Size, strconv.Quote(string(v.Init)))
}

func (v Variable) String() string {
	return fmt.Sprintf("<var %s [%d]>", v.Name, v.Size)
}
