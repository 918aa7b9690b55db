package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.creack.net/smol/op"
)

type stateFn func(*lexer) stateFn

const eof = -1

type itemType int

const (
	itemError itemType = iota // Error occurred; value is text of error.
	itemNewline
	itemIdentifier
	itemNumber
	itemComment
	itemRawString // Raw string, including quotes.
	itemLabel
	itemSeparator // Variable block delimiter.
	itemEOF       // End of the input.
)

var itemNames = [...]string{
	itemError:      "error",
	itemNewline:    "newline",
	itemIdentifier: "identifier",
	itemNumber:     "number",
	itemComment:    "comment",
	itemRawString:  "string",
	itemLabel:      "label",
	itemSeparator:  "separator",
	itemEOF:        "end of input",
}

func (it itemType) String() string { return itemNames[it] }

func (it itemType) isEOL() bool {
	// Comments run to the end of the line.
	return it == itemNewline || it == itemEOF || it == itemComment
}

type item struct {
	typ  itemType // The type of this item.
	pos  Pos      // The start position, in bytes, of this item in the input string.
	val  string   // The value of this item.
	line int      // The line number at the start of this item.
}

// String is used in parser errors.
func (i item) String() string {
	if i.typ == itemEOF || i.typ == itemNewline || i.typ == itemError {
		return i.typ.String()
	}
	return fmt.Sprintf("%s %q", i.typ, i.val)
}

type Pos int

// lexer holds the state of the scanner.
type lexer struct {
	name      string // The name of the input; used only for error reports.
	input     string // The string being scanned.
	pos       Pos    // Current position in the input.
	start     Pos    // Start position of this item.
	atEOF     bool   // We have hit the end of input and returned eof.
	line      int    // 1+number of newlines seen.
	startLine int    // Start line of this item.
	item      item   // Item to return to parser.
}

// errorf returns an error token and terminates the scan by passing
// back a nil pointer that will be the next state, terminating l.nextItem.
func (l *lexer) errorf(format string, args ...any) stateFn {
	l.item = item{itemError, l.start, fmt.Sprintf(format, args...), l.startLine}
	l.start = 0
	l.pos = 0
	l.input = l.input[:0]
	return nil
}

// next returns the next rune in the input.
func (l *lexer) next() rune {
	if int(l.pos) >= len(l.input) {
		l.atEOF = true
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += Pos(w)
	if r == '\n' {
		l.line++
	}
	return r
}

// peek returns but does not consume the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// backup steps back one rune.
func (l *lexer) backup() {
	if !l.atEOF && l.pos > 0 {
		r, w := utf8.DecodeLastRuneInString(l.input[:l.pos])
		l.pos -= Pos(w)
		// Correct newline count.
		if r == '\n' {
			l.line--
		}
	}
}

// thisItem returns the item at the current input point with the specified type
// and advances the input.
func (l *lexer) thisItem(t itemType) item {
	i := item{t, l.start, l.input[l.start:l.pos], l.startLine}
	l.start = l.pos
	l.startLine = l.line
	return i
}

// emit passes the trailing text as an item back to the parser.
func (l *lexer) emit(t itemType) stateFn {
	return l.emitItem(l.thisItem(t))
}

// emitItem passes the specified item to the parser.
func (l *lexer) emitItem(i item) stateFn {
	l.item = i
	return nil
}

// ignore skips over the pending input before this point.
// Newlines are already counted by l.next.
func (l *lexer) ignore() {
	l.start = l.pos
	l.startLine = l.line
}

// accept consumes the next rune if it's from the valid set.
func (l *lexer) accept(valid string) bool {
	if strings.ContainsRune(valid, l.next()) {
		return true
	}
	l.backup()
	return false
}

// acceptRun consumes a run of runes from the valid set.
func (l *lexer) acceptRun(valid string) bool {
	accepted := false
	for strings.ContainsRune(valid, l.next()) {
		accepted = true
	}
	l.backup()
	return accepted
}

// lexText scans the next item from the start of a token.
func lexText(l *lexer) stateFn {
	l.acceptRun(" \t\r") // Consume leading whitespace.
	if l.atEOF {
		return l.emit(itemEOF)
	}
	l.ignore()
	switch r := l.peek(); {
	case r == eof:
		return l.emit(itemEOF)
	case r == '\n':
		l.acceptRun(" \t\r\n")
		l.ignore()
		if l.atEOF {
			return l.emit(itemEOF)
		}
		return l.emit(itemNewline)
	case r == op.StringChar:
		return lexString
	case strings.HasPrefix(l.input[l.pos:], op.VariableSeparator):
		l.pos += Pos(len(op.VariableSeparator))
		l.acceptRun("-")
		return l.emit(itemSeparator)
	case r == '-' || r == '+' || ('0' <= r && r <= '9'):
		return lexNumber
	case strings.ContainsRune(op.CommentChars, r):
		return lexComment
	case strings.ContainsRune(op.IdentChars, r):
		return lexIdentifier
	default:
		return l.errorf("unexpected character %q", r)
	}
}

func lexNumber(l *lexer) stateFn {
	// Optional leading sign.
	l.accept("+-")

	// Decimal digits charset.
	digits := "0123456789_"

	// Does it have a specific base?
	// If so, change the charset.
	if l.accept("0") {
		if l.accept("xX") {
			digits = "0123456789abcdefABCDEF_"
		} else if l.accept("oO") {
			digits = "01234567_"
		} else if l.accept("bB") {
			digits = "01_"
		}
	}
	l.acceptRun(digits)

	if r := l.peek(); r != eof && strings.ContainsRune(op.IdentChars, r) {
		return l.errorf("bad number syntax: %q", l.input[l.start:l.pos+1])
	}
	return l.emit(itemNumber)
}

func lexIdentifier(l *lexer) stateFn {
	l.acceptRun(op.IdentChars)
	// If the identifier is directly followed by a label char,
	// it is a label definition.
	if l.peek() == op.LabelChar {
		i := l.thisItem(itemLabel)
		l.pos++
		l.ignore()
		return l.emitItem(i)
	}
	return l.emit(itemIdentifier)
}

func lexComment(l *lexer) stateFn {
	for {
		r := l.next()
		if r == eof || r == '\n' {
			break
		}
	}
	i := l.thisItem(itemComment)
	i.val = strings.TrimSpace(i.val)
	return l.emitItem(i)
}

func lexString(l *lexer) stateFn {
	l.pos++
	for {
		r := l.next()
		if r == eof || r == '\n' {
			return l.errorf("missing closing quote")
		}
		if r == op.StringChar {
			break
		}
		if r == '\\' {
			l.next()
		}
	}
	return l.emit(itemRawString)
}

// nextItem returns the next item from the input.
func (l *lexer) nextItem() item {
	l.item = item{itemEOF, l.pos, "EOF", l.startLine}
	state := lexText
	for {
		state = state(l)
		if state == nil {
			return l.item
		}
	}
}

// NewLexer creates a new scanner for the input string.
func NewLexer(name, input string) *lexer {
	return &lexer{
		name:      name,
		input:     input,
		line:      1,
		startLine: 1,
	}
}
