package parser

import (
	"fmt"
	"strconv"
	"strings"

	"go.creack.net/smol/op"
)

// Node is an element of the instruction section.
type Node interface {
	PrettyPrint(nodes []Node) string
}

// Parser structure
type Parser struct {
	lexer     *lexer
	currToken item
	peekToken item

	inVariables bool

	Variables []*Variable
	Nodes     []Node
}

// NewParser creates a new parser
func NewParser(name, input string) *Parser {
	p := &Parser{
		lexer: NewLexer(name, input),
	}
	// Preload the next token.
	p.nextToken()
	return p
}

// nextToken advances to the next token
func (p *Parser) nextToken() {
	p.currToken = p.peekToken
	p.peekToken = p.lexer.nextItem()
}

func (p *Parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%s:%d: %s", p.lexer.name, p.currToken.line, fmt.Sprintf(format, args...))
}

// expectEOL consumes the end of the current line.
func (p *Parser) expectEOL() error {
	p.nextToken()
	if !p.currToken.typ.isEOL() {
		return p.errorf("unexpected %s, expected end of line", p.currToken)
	}
	return nil
}

// parseVariable parses `name size ["initializer"]`.
func (p *Parser) parseVariable() error {
	v := &Variable{Name: p.currToken.val, Line: p.currToken.line}

	p.nextToken()
	if p.currToken.typ != itemNumber {
		return p.errorf("expected size for variable %q, got %s", v.Name, p.currToken)
	}
	n, err := parseNumber(p.currToken.val)
	if err != nil {
		return p.errorf("variable %q: %s", v.Name, err)
	}
	if n <= 0 || n >= op.InitializedFlag {
		return p.errorf("variable %q: invalid size %d", v.Name, n)
	}
	v.Size = int(n)

	if p.peekToken.typ == itemRawString {
		p.nextToken()
		s, err := strconv.Unquote(p.currToken.val)
		if err != nil {
			return p.errorf("variable %q: invalid initializer %s: %s", v.Name, p.currToken.val, err)
		}
		v.Init = []byte(s)
	}

	for _, elem := range p.Variables {
		if elem.Name == v.Name {
			return p.errorf("duplicate variable %q, first declared line %d", v.Name, elem.Line)
		}
	}
	p.Variables = append(p.Variables, v)
	return p.expectEOL()
}

// OperandError reports operands not matching their instruction.
type OperandError struct {
	Input       string
	Line        int
	Instruction string // Mnemonic.
	Err         error
}

func (e *OperandError) Error() string {
	return fmt.Sprintf("%s:%d: invalid operands for %s: %s", e.Input, e.Line, e.Instruction, e.Err)
}

func (e *OperandError) Unwrap() error { return e.Err }

// parseInstruction parses `mnemonic [operand...]`. Mnemonics are case
// insensitive.
func (p *Parser) parseInstruction() error {
	o, ok := op.LookupName(strings.ToLower(p.currToken.val))
	if !ok {
		return p.errorf("unknown instruction %q", p.currToken.val)
	}
	ins := &Instruction{OpCode: o, Line: p.currToken.line}

	for {
		p.nextToken()
		if p.currToken.typ.isEOL() {
			break
		}
		if p.currToken.typ == itemError {
			return p.errorf("%s", p.currToken.val)
		}
		if p.currToken.typ != itemIdentifier && p.currToken.typ != itemNumber {
			return p.errorf("unexpected %s in %q parameters", p.currToken, o.Name)
		}
		param, err := ParseParameter(p.currToken.val)
		if err != nil {
			return &OperandError{Input: p.lexer.name, Line: p.currToken.line, Instruction: o.Name, Err: err}
		}
		ins.Params = append(ins.Params, param)
	}

	if err := ins.ValidateParameters(); err != nil {
		return &OperandError{Input: p.lexer.name, Line: ins.Line, Instruction: o.Name, Err: err}
	}
	p.Nodes = append(p.Nodes, ins)
	return nil
}

// Parse consumes the whole input.
func (p *Parser) Parse() error {
	for {
		p.nextToken()
		item := p.currToken
		if item.typ == itemEOF {
			break
		}
		if item.typ == itemError {
			return fmt.Errorf("%s:[%d:%d]: %s", p.lexer.name, item.line, item.pos, item.val)
		}

		var err error
		switch item.typ {
		case itemNewline, itemComment:
			continue
		case itemSeparator:
			p.inVariables = !p.inVariables
			err = p.expectEOL()
		case itemLabel:
			if p.inVariables {
				return p.errorf("label %q inside the variable block", item.val)
			}
			p.Nodes = append(p.Nodes, &Label{Name: item.val, Line: item.line})
		case itemIdentifier:
			if p.inVariables {
				err = p.parseVariable()
			} else {
				err = p.parseInstruction()
			}
		default:
			return p.errorf("unexpected item %s", item)
		}
		if err != nil {
			return err
		}
	}
	if p.inVariables {
		return p.errorf("unterminated variable block")
	}

	return nil
}

// Parse is a helper parsing input in one go.
func Parse(name, input string) (*Parser, error) {
	p := NewParser(name, input)
	if err := p.Parse(); err != nil {
		return nil, err
	}
	return p, nil
}

// PrettyPrint renders the parsed program back to source.
func (p *Parser) PrettyPrint() string {
	var sb strings.Builder
	if len(p.Variables) > 0 {
		sb.WriteString(op.VariableSeparator + "\n")
		for _, v := range p.Variables {
			sb.WriteString(v.PrettyPrint() + "\n")
		}
		sb.WriteString(op.VariableSeparator + "\n\n")
	}
	for _, elem := range p.Nodes {
		sb.WriteString(elem.PrettyPrint(p.Nodes) + "\n")
	}
	return sb.String()
}
