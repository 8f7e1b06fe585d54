package readonly

import "strings"

// tokenKind distinguishes the few lexical shapes the classifier cares
// about. The lexer is not a SQL tokenizer — it only needs to tell words,
// literals, comments, and statement separators apart.
type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenWord
	tokenLiteral // quoted string, identifier, or dollar-quoted body
	tokenComment // line or block comment, including delimiters
	tokenSemicolon
	tokenOther // whitespace, operators, punctuation
)

type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

// next returns the next raw token and its kind. The concatenation of all
// returned tokens is exactly the input.
func (l *lexer) next() (string, tokenKind) {
	if l.pos >= len(l.src) {
		return "", tokenEOF
	}
	start := l.pos
	c := l.src[l.pos]
	switch {
	case c == '\'':
		l.pos = skipSingleQuoted(l.src, l.pos)
		return l.src[start:l.pos], tokenLiteral
	case c == '"':
		l.pos = skipDoubleQuoted(l.src, l.pos)
		return l.src[start:l.pos], tokenLiteral
	case c == '$':
		if end, ok := skipDollarQuoted(l.src, l.pos); ok {
			l.pos = end
			return l.src[start:l.pos], tokenLiteral
		}
		l.pos++
		return l.src[start:l.pos], tokenOther
	case c == '-' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '-':
		l.pos = skipLineComment(l.src, l.pos)
		return l.src[start:l.pos], tokenComment
	case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
		if end, ok := skipBlockComment(l.src, l.pos); ok {
			l.pos = end
			return l.src[start:l.pos], tokenComment
		}
		// Unterminated block comment swallows the rest of the input,
		// matching how the Postgres lexer treats it.
		l.pos = len(l.src)
		return l.src[start:l.pos], tokenComment
	case c == ';':
		l.pos++
		return l.src[start:l.pos], tokenSemicolon
	case isWordStart(c):
		l.pos++
		for l.pos < len(l.src) && isWordCont(l.src[l.pos]) {
			l.pos++
		}
		return l.src[start:l.pos], tokenWord
	default:
		l.pos++
		return l.src[start:l.pos], tokenOther
	}
}

// splitStatements splits sql on semicolons that sit outside string
// literals, quoted identifiers, and comments. Segments that contain no
// tokens (empty trailers, comment-only segments) are dropped.
func splitStatements(sql string) []string {
	lex := newLexer(sql)
	var stmts []string
	var current strings.Builder
	hasToken := false
	flush := func() {
		if hasToken {
			stmts = append(stmts, strings.TrimSpace(current.String()))
		}
		current.Reset()
		hasToken = false
	}
	for {
		tok, kind := lex.next()
		switch kind {
		case tokenEOF:
			flush()
			return stmts
		case tokenSemicolon:
			flush()
		case tokenWord, tokenLiteral:
			hasToken = true
			current.WriteString(tok)
		case tokenComment:
			current.WriteString(tok)
		default:
			if strings.TrimSpace(tok) != "" {
				hasToken = true
			}
			current.WriteString(tok)
		}
	}
}

// firstKeyword returns the first word token of sql, uppercased, or ""
// when the statement starts with something other than a word.
func firstKeyword(sql string) string {
	lex := newLexer(sql)
	for {
		tok, kind := lex.next()
		switch kind {
		case tokenEOF:
			return ""
		case tokenWord:
			return strings.ToUpper(tok)
		case tokenComment:
			continue
		default:
			if strings.TrimSpace(tok) == "" {
				continue
			}
			return ""
		}
	}
}

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isWordCont(c byte) bool {
	return isWordStart(c) || (c >= '0' && c <= '9') || c == '$'
}

// skipSingleQuoted advances past a 'literal', honoring '' doubling.
// pos points at the opening quote; the returned position is one past the
// closing quote, or len(src) for an unterminated literal.
func skipSingleQuoted(src string, pos int) int {
	pos++
	for pos < len(src) {
		if src[pos] == '\'' {
			if pos+1 < len(src) && src[pos+1] == '\'' {
				pos += 2
				continue
			}
			return pos + 1
		}
		pos++
	}
	return pos
}

// skipDoubleQuoted advances past a "quoted identifier", honoring "" doubling.
func skipDoubleQuoted(src string, pos int) int {
	pos++
	for pos < len(src) {
		if src[pos] == '"' {
			if pos+1 < len(src) && src[pos+1] == '"' {
				pos += 2
				continue
			}
			return pos + 1
		}
		pos++
	}
	return pos
}

// skipDollarQuoted advances past a $tag$...$tag$ string. Returns ok=false
// when pos does not start a valid dollar-quote opener.
func skipDollarQuoted(src string, pos int) (int, bool) {
	end := pos + 1
	for end < len(src) && src[end] != '$' {
		if !isWordCont(src[end]) || (src[end] >= '0' && src[end] <= '9' && end == pos+1) {
			return 0, false
		}
		end++
	}
	if end >= len(src) {
		return 0, false
	}
	tag := src[pos : end+1] // includes both dollar signs
	rest := src[end+1:]
	idx := strings.Index(rest, tag)
	if idx < 0 {
		return len(src), true // unterminated, swallow the rest
	}
	return end + 1 + idx + len(tag), true
}

// skipLineComment advances past a -- comment up to (not including) the
// newline that ends it.
func skipLineComment(src string, pos int) int {
	for pos < len(src) && src[pos] != '\n' {
		pos++
	}
	return pos
}

// skipBlockComment advances past a /* */ comment, counting depth so that
// nested comments balance. Returns ok=false when the comment never closes.
func skipBlockComment(src string, pos int) (int, bool) {
	depth := 0
	for pos < len(src) {
		if pos+1 < len(src) && src[pos] == '/' && src[pos+1] == '*' {
			depth++
			pos += 2
			continue
		}
		if pos+1 < len(src) && src[pos] == '*' && src[pos+1] == '/' {
			depth--
			pos += 2
			if depth == 0 {
				return pos, true
			}
			continue
		}
		pos++
	}
	return 0, false
}
