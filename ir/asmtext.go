package ir

import (
	"strconv"
	"strings"
)

// Assemble parses the text grammar produced by Disassemble back into a
// Module. Only the documented round-trippable subset is accepted —
// "UNKNOWN(...)" placeholders are rejected, matching the grammar's
// documented lossiness for exotic values.
func Assemble(text string, features FeatureSet) (*Module, error) {
	m := NewModule(features)
	lines := strings.Split(text, "\n")
	for lineNo, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := assembleLine(m, line); err != nil {
			return nil, Wrapf(KindParseError, err, "line %d", lineNo+1)
		}
	}
	return m, nil
}

func assembleLine(m *Module, line string) error {
	p := &textParser{input: line}
	mnemonic, err := p.readMnemonic()
	if err != nil {
		return err
	}
	dot := strings.IndexByte(mnemonic, '.')
	if dot < 0 {
		return Errf(KindParseError, "expected feature.op, got %q", mnemonic)
	}
	featureName, opName := mnemonic[:dot], mnemonic[dot+1:]
	feature, ok := FeatureByName(featureName)
	if !ok {
		return Errf(KindParseError, "unknown feature %q", featureName)
	}
	op, ok := feature.OpcodeByName(opName)
	if !ok {
		return Errf(KindParseError, "unknown opcode %q in feature %s", opName, feature)
	}

	var values []*Value
	p.skipSpace()
	for !p.atEnd() {
		v, err := p.readValue(m.Strings)
		if err != nil {
			return err
		}
		values = append(values, v)
		p.skipSpace()
		if p.atEnd() {
			break
		}
		if err := p.expectByte(','); err != nil {
			return err
		}
		p.skipSpace()
	}
	_, err = m.Emit(feature, op, values...)
	return err
}

type textParser struct {
	input string
	pos   int
}

func (p *textParser) atEnd() bool { return p.pos >= len(p.input) }

func (p *textParser) peek() byte {
	if p.atEnd() {
		return 0
	}
	return p.input[p.pos]
}

func (p *textParser) skipSpace() {
	for !p.atEnd() && (p.peek() == ' ' || p.peek() == '\t') {
		p.pos++
	}
}

func (p *textParser) expectByte(b byte) error {
	if p.atEnd() || p.peek() != b {
		return Errf(KindParseError, "expected %q at position %d", b, p.pos)
	}
	p.pos++
	return nil
}

func (p *textParser) readMnemonic() (string, error) {
	start := p.pos
	for !p.atEnd() && p.peek() != ' ' && p.peek() != '\t' {
		p.pos++
	}
	if p.pos == start {
		return "", Errf(KindParseError, "expected mnemonic")
	}
	return p.input[start:p.pos], nil
}

func (p *textParser) readValue(strs *StringTable) (*Value, error) {
	switch p.peek() {
	case '$':
		p.pos++
		n, err := p.readUint()
		if err != nil {
			return nil, err
		}
		return Variable(uint32(n)), nil
	case '@':
		p.pos++
		start := p.pos
		for !p.atEnd() && p.peek() != '@' {
			p.pos++
		}
		if p.atEnd() {
			return nil, Errf(KindParseError, "unterminated symbol")
		}
		name := p.input[start:p.pos]
		p.pos++ // closing @
		off := strs.Add(name)
		return Symbol(off, uint32(len(name))), nil
	case '"':
		s, err := p.readQuotedString()
		if err != nil {
			return nil, err
		}
		off := strs.Add(s)
		return StringVal(off, uint32(len(s))), nil
	case '[':
		p.pos++
		var elems []*Value
		p.skipSpace()
		for p.peek() != ']' {
			v, err := p.readValue(strs)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				p.skipSpace()
			}
		}
		p.pos++ // closing ]
		return ArrayVal(elems...), nil
	case '+', '-':
		dir := p.peek()
		p.pos++
		if p.peek() == '.' {
			return p.readLabelOrNumeric(dir)
		}
		return p.readLabelOrNumeric(dir)
	case '.':
		return p.readLabelOrNumeric(0)
	case '%':
		return p.readLabelOrNumeric(0)
	default:
		return nil, Errf(KindParseError, "unrecognized value at position %d: %q", p.pos, p.input[p.pos:])
	}
}

// readLabelOrNumeric handles the overlapping lexical space of
// "+.label"/"-.label"/".label" and "-%Bdigits" numeric literals; dir is
// the sign byte already consumed ('+', '-', or 0 for none).
func (p *textParser) readLabelOrNumeric(dir byte) (*Value, error) {
	if p.peek() == '.' {
		p.pos++
		if p.peek() == 'L' {
			p.pos++
		}
		n, err := p.readUint()
		if err != nil {
			return nil, err
		}
		return Label(uint32(n)), nil
	}
	if p.peek() == '%' {
		p.pos++
		if p.atEnd() {
			return nil, Errf(KindParseError, "expected base letter after %%")
		}
		baseLetter := p.peek()
		p.pos++
		var base NumericBase
		switch baseLetter {
		case 'b':
			base = Base2
		case 'o':
			base = Base8
		case 'd':
			base = Base10
		case 'x':
			base = Base16
		default:
			return nil, Errf(KindParseError, "unknown numeric base letter %q", baseLetter)
		}
		start := p.pos
		for !p.atEnd() && isBaseDigit(p.peek(), int(base)) {
			p.pos++
		}
		if p.pos == start {
			return nil, Errf(KindParseError, "expected digits after base letter")
		}
		mag, err := strconv.ParseUint(p.input[start:p.pos], int(base), 64)
		if err != nil {
			return nil, Wrapf(KindParseError, err, "invalid numeric literal")
		}
		return Numeric(base, mag, dir == '-'), nil
	}
	return nil, Errf(KindParseError, "expected label or numeric literal at position %d", p.pos)
}

func isBaseDigit(c byte, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return int(c-'0') < base
	case c >= 'a' && c <= 'f':
		return base == 16
	case c >= 'A' && c <= 'F':
		return base == 16
	default:
		return false
	}
}

func (p *textParser) readUint() (uint64, error) {
	start := p.pos
	for !p.atEnd() && p.peek() >= '0' && p.peek() <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, Errf(KindParseError, "expected digits at position %d", p.pos)
	}
	return strconv.ParseUint(p.input[start:p.pos], 10, 64)
}

func (p *textParser) readQuotedString() (string, error) {
	if err := p.expectByte('"'); err != nil {
		return "", err
	}
	var b strings.Builder
	for {
		if p.atEnd() {
			return "", Errf(KindParseError, "unterminated string literal")
		}
		c := p.peek()
		if c == '"' {
			p.pos++
			return b.String(), nil
		}
		if c == '\\' {
			p.pos++
			if p.atEnd() {
				return "", Errf(KindParseError, "unterminated escape")
			}
			switch p.peek() {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(p.peek())
			}
			p.pos++
			continue
		}
		b.WriteByte(c)
		p.pos++
	}
}
