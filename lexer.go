package main

import (
	"strconv"
	"strings"
)

// Line is one non-blank source line after tokenization. Number is the
// 1-based line in the source file; comment and blank lines are skipped, so
// numbers are not necessarily contiguous.
type Line struct {
	Number int
	Tokens []Token
}

var (
	keywords  = []string{"start", "end", "use", "return", "break", "while", "if", "elif", "else"}
	operators = []string{"+", "-", "*", "/", "%", "(", ")", "is", ">", "<", "<=", ">=", "==", "!=", "|", "="}
	typeNames = []string{"int", "float", "str", "bool"}
)

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Tokenize splits source text into typed tokens, one Line per non-blank
// source line.
func Tokenize(src string) ([]Line, error) {
	var lines []Line
	for i, raw := range strings.Split(src, "\n") {
		l := &lexer{input: []byte(raw), line: i + 1}
		words, err := l.words()
		if err != nil {
			return nil, err
		}
		if len(words) == 0 {
			continue
		}
		tokens, err := classify(words, i+1)
		if err != nil {
			return nil, err
		}
		lines = append(lines, Line{Number: i + 1, Tokens: tokens})
	}
	return lines, nil
}

// word is an untyped lexeme. Quoted words are string literals with their
// escapes already decoded.
type word struct {
	text   string
	quoted bool
}

type lexer struct {
	input []byte
	pos   int
	line  int
}

func (l *lexer) peek(offset int) byte {
	if l.pos+offset < len(l.input) {
		return l.input[l.pos+offset]
	}
	return 0
}

func isSpecial(c byte) bool {
	switch c {
	case '=', '|', ' ', '\t', '\r', '+', '-', '/', '*', '%', '(', ')', '>', '<', ',', '!':
		return true
	}
	return false
}

func (l *lexer) words() ([]word, error) {
	var words []word
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			words = append(words, word{text: current.String()})
			current.Reset()
		}
	}

	for l.pos < len(l.input) {
		c := l.input[l.pos]

		if c == '~' {
			break // comment runs to end of line
		}

		if c == '"' {
			flush()
			s, err := l.readString()
			if err != nil {
				return nil, err
			}
			words = append(words, word{text: s, quoted: true})
			continue
		}

		if !isSpecial(c) {
			current.WriteByte(c)
			l.pos++
			continue
		}

		flush()
		switch c {
		case ' ', '\t', '\r':
			l.pos++
		case '>', '<', '=', '!':
			if l.peek(1) == '=' {
				words = append(words, word{text: string(c) + "="})
				l.pos += 2
			} else if c == '!' {
				return nil, syntaxErrorf(l.line, "unexpected character '!'")
			} else {
				words = append(words, word{text: string(c)})
				l.pos++
			}
		default:
			words = append(words, word{text: string(c)})
			l.pos++
		}
	}
	flush()
	return words, nil
}

func (l *lexer) readString() (string, error) {
	l.pos++ // skip opening "
	var b strings.Builder
	for {
		if l.pos >= len(l.input) {
			return "", syntaxErrorf(l.line, "unterminated string literal")
		}
		c := l.input[l.pos]
		if c == '"' {
			l.pos++
			return b.String(), nil
		}
		if c == '\\' {
			switch l.peek(1) {
			case 'n':
				b.WriteByte('\n')
			case '\'':
				b.WriteByte('\'')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				return "", syntaxErrorf(l.line, "unknown escape sequence in string literal")
			}
			l.pos += 2
			continue
		}
		b.WriteByte(c)
		l.pos++
	}
}

func classify(words []word, line int) ([]Token, error) {
	tokens := make([]Token, 0, len(words))
	prev := ""
	for _, w := range words {
		var t Token
		switch {
		case w.quoted:
			t = StrToken(w.text)
		case contains(keywords, w.text):
			t = Token{Kind: KindKeyword, Value: w.text}
		case contains(operators, w.text):
			if w.text == "|" && len(tokens) > 0 && tokens[len(tokens)-1].Kind == KindVar {
				tokens[len(tokens)-1].Kind = KindFunc
			}
			t = Token{Kind: KindOperator, Value: w.text}
		case w.text == ",":
			t = Comma
		case contains(typeNames, w.text):
			t = Token{Kind: KindType, Value: w.text}
		case w.text == "true" || w.text == "false":
			t = BoolToken(w.text == "true")
		case isInteger(w.text):
			v, err := strconv.ParseInt(w.text, 10, 64)
			if err != nil {
				return nil, syntaxErrorf(line, "integer literal %s out of range", w.text)
			}
			t = IntToken(v)
		case isFloat(w.text):
			v, err := strconv.ParseFloat(w.text, 64)
			if err != nil {
				return nil, syntaxErrorf(line, "invalid float literal %s", w.text)
			}
			t = FloatToken(v)
		case isIdentifier(w.text):
			switch prev {
			case "start":
				t = Token{Kind: KindFunc, Value: w.text}
			case "use":
				t = Token{Kind: KindLib, Value: w.text}
			default:
				t = Token{Kind: KindVar, Value: w.text}
			}
		default:
			return nil, syntaxErrorf(line, "invalid token %q", w.text)
		}
		tokens = append(tokens, t)
		prev = w.text
		if w.quoted {
			prev = ""
		}
	}
	return tokens, nil
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isFloat(s string) bool {
	whole, frac, ok := strings.Cut(s, ".")
	return ok && isInteger(whole) && isInteger(frac)
}

func isIdentifier(s string) bool {
	if s == "" || !isLetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isLetter(s[i]) && !isDigit(s[i]) {
			return false
		}
	}
	return true
}
