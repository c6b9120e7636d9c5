package partialjson

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrNoValue is returned when no value at all can be recovered from the
// input, e.g. an empty buffer or one that starts with a non-JSON token.
var ErrNoValue = fmt.Errorf("partialjson: no parsable value")

// Parser extracts the best-effort value from a possibly truncated JSON text.
// The zero value is ready to use; Parser is stateless and safe for
// concurrent use.
type Parser struct{}

// NewParser returns a new Parser.
func NewParser() *Parser { return &Parser{} }

// Parse deserializes the most complete value available from the well-formed
// leading portion of s. Containers cut off mid-stream are returned with the
// members received so far; scalars cut off mid-token are dropped. Parse
// returns ErrNoValue when nothing usable can be recovered.
func (p *Parser) Parse(s string) (any, error) {
	sc := &scanner{input: s}
	sc.skipSpace()
	val, complete, ok := sc.parseValue()
	if !ok {
		return nil, ErrNoValue
	}
	if !complete && !isContainer(val) {
		return nil, ErrNoValue
	}
	return val, nil
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// scanner walks the input byte-wise. All parse methods advance pos and
// report (value, complete, ok): ok=false means no value could be recovered
// at the current position, complete=false means the value was cut off.
type scanner struct {
	input string
	pos   int
}

func (sc *scanner) eof() bool { return sc.pos >= len(sc.input) }

func (sc *scanner) skipSpace() {
	for !sc.eof() {
		switch sc.input[sc.pos] {
		case ' ', '\t', '\n', '\r':
			sc.pos++
		default:
			return
		}
	}
}

func (sc *scanner) parseValue() (any, bool, bool) {
	if sc.eof() {
		return nil, false, false
	}
	switch c := sc.input[sc.pos]; {
	case c == '{':
		return sc.parseObject()
	case c == '[':
		return sc.parseArray()
	case c == '"':
		return sc.parseString()
	case c == 't' || c == 'f' || c == 'n':
		return sc.parseLiteral()
	case c == '-' || (c >= '0' && c <= '9'):
		return sc.parseNumber()
	default:
		return nil, false, false
	}
}

// parseObject keeps every member whose value parsed completely. A trailing
// member with a partially received container value keeps the partial
// container; a trailing member cut off anywhere else is dropped.
func (sc *scanner) parseObject() (any, bool, bool) {
	obj := map[string]any{}
	sc.pos++ // consume '{'
	for {
		sc.skipSpace()
		if sc.eof() {
			return obj, false, true
		}
		if sc.input[sc.pos] == '}' {
			sc.pos++
			return obj, true, true
		}
		if sc.input[sc.pos] != '"' {
			return obj, false, true
		}
		key, complete, ok := sc.parseString()
		if !ok || !complete {
			return obj, false, true
		}
		sc.skipSpace()
		if sc.eof() || sc.input[sc.pos] != ':' {
			return obj, false, true
		}
		sc.pos++ // consume ':'
		sc.skipSpace()
		val, valComplete, valOK := sc.parseValue()
		if !valOK {
			return obj, false, true
		}
		if !valComplete {
			if isContainer(val) {
				obj[key.(string)] = val
			}
			return obj, false, true
		}
		obj[key.(string)] = val
		sc.skipSpace()
		if sc.eof() {
			return obj, false, true
		}
		switch sc.input[sc.pos] {
		case ',':
			sc.pos++
		case '}':
			sc.pos++
			return obj, true, true
		default:
			return obj, false, true
		}
	}
}

func (sc *scanner) parseArray() (any, bool, bool) {
	arr := []any{}
	sc.pos++ // consume '['
	for {
		sc.skipSpace()
		if sc.eof() {
			return arr, false, true
		}
		if sc.input[sc.pos] == ']' {
			sc.pos++
			return arr, true, true
		}
		val, complete, ok := sc.parseValue()
		if !ok {
			return arr, false, true
		}
		if !complete {
			if isContainer(val) {
				arr = append(arr, val)
			}
			return arr, false, true
		}
		arr = append(arr, val)
		sc.skipSpace()
		if sc.eof() {
			return arr, false, true
		}
		switch sc.input[sc.pos] {
		case ',':
			sc.pos++
		case ']':
			sc.pos++
			return arr, true, true
		default:
			return arr, false, true
		}
	}
}

// parseString requires the closing quote; an unterminated string is
// reported incomplete so the caller can drop it.
func (sc *scanner) parseString() (any, bool, bool) {
	i := sc.pos + 1 // past opening '"'
	for i < len(sc.input) {
		switch sc.input[i] {
		case '\\':
			if i+1 >= len(sc.input) {
				sc.pos = len(sc.input)
				return "", false, true
			}
			i += 2
		case '"':
			literal := sc.input[sc.pos : i+1]
			sc.pos = i + 1
			var decoded string
			if err := json.Unmarshal([]byte(literal), &decoded); err != nil {
				return "", false, true
			}
			return decoded, true, true
		default:
			i++
		}
	}
	sc.pos = len(sc.input)
	return "", false, true
}

// parseLiteral handles true/false/null, including truncated prefixes.
func (sc *scanner) parseLiteral() (any, bool, bool) {
	for _, lit := range []struct {
		text  string
		value any
	}{
		{"true", true},
		{"false", false},
		{"null", nil},
	} {
		rest := sc.input[sc.pos:]
		if strings.HasPrefix(rest, lit.text) {
			sc.pos += len(lit.text)
			return lit.value, true, true
		}
		if strings.HasPrefix(lit.text, rest) {
			sc.pos = len(sc.input)
			return lit.value, false, true
		}
	}
	return nil, false, false
}

// parseNumber keeps a number terminated by end-of-input: a streamed buffer
// that stops right after a digit still yields the digits received.
func (sc *scanner) parseNumber() (any, bool, bool) {
	i := sc.pos
	for i < len(sc.input) {
		switch c := sc.input[i]; {
		case c >= '0' && c <= '9', c == '-', c == '+', c == '.', c == 'e', c == 'E':
			i++
		default:
			goto done
		}
	}
done:
	literal := sc.input[sc.pos:i]
	sc.pos = i
	var num float64
	if err := json.Unmarshal([]byte(literal), &num); err != nil {
		return nil, false, true
	}
	return num, true, true
}
