package outline

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

// Scanner reads heading tokens from outline text one at a time.
//
// A Scanner is lazy, finite, and non-restartable: tokens are produced in
// source order as Next is called, and once Next returns false the Scanner
// is exhausted. Blank lines are dropped and lines that are not headings are
// counted in Skipped.
//
// Typical use:
//
//	sc := outline.NewScanner(strings.NewReader(text))
//	for sc.Next() {
//	    tok := sc.Token()
//	    ...
//	}
//	if err := sc.Err(); err != nil { ... }
type Scanner struct {
	r       *bufio.Reader
	line    int
	tok     Token
	skipped []int
	err     error
	done    bool
}

// NewScanner returns a Scanner reading from r. Lines may be of any length.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r)}
}

// Next advances to the next heading token. It returns false at end of input
// or on a read error.
func (s *Scanner) Next() bool {
	for !s.done {
		raw, ok := s.readLine()
		if !ok {
			break
		}
		s.line++
		if strings.TrimSpace(raw) == "" {
			continue
		}
		tok, ok := ParseLine(raw)
		if !ok {
			s.skipped = append(s.skipped, s.line)
			continue
		}
		tok.Line = s.line
		s.tok = tok
		return true
	}
	s.done = true
	return false
}

// readLine returns the next line without its LF or CRLF terminator.
// ok is false once input is exhausted.
func (s *Scanner) readLine() (string, bool) {
	raw, err := s.r.ReadString('\n')
	if err != nil {
		s.done = true
		if err != io.EOF {
			s.err = err
		}
		if raw == "" {
			return "", false
		}
	}
	raw = strings.TrimSuffix(raw, "\n")
	return strings.TrimSuffix(raw, "\r"), true
}

// Token returns the most recent token produced by Next.
func (s *Scanner) Token() Token {
	return s.tok
}

// Err returns the first read error encountered, if any.
func (s *Scanner) Err() error {
	return s.err
}

// Skipped returns the 1-based line numbers of non-blank lines that were not headings.
func (s *Scanner) Skipped() []int {
	return s.skipped
}

// ParseLine parses a single non-blank line. It returns false when the line
// is not a heading: no leading markers, no whitespace after the markers, or
// no text.
func ParseLine(line string) (Token, bool) {
	level := 0
	for level < len(line) && line[level] == Marker {
		level++
	}
	if level == 0 || level == len(line) {
		return Token{}, false
	}

	rest := line[level:]
	first := []rune(rest)[0]
	if !unicode.IsSpace(first) {
		return Token{}, false
	}
	remainder := strings.TrimSpace(rest)
	if remainder == "" {
		return Token{}, false
	}

	tok := Token{Level: level}

	if body, ok := cutSectionMarker(remainder); ok {
		tok.IsSection = true
		tok.Title = body
		return tok, true
	}

	if title, contributors, found := strings.Cut(remainder, ContributorDelimiter); found {
		tok.Title = strings.TrimSpace(title)
		tok.RawContributors = strings.TrimSpace(contributors)
	} else {
		tok.Title = remainder
	}
	return tok, true
}

// cutSectionMarker strips a lone trailing SectionMarker preceded by whitespace.
func cutSectionMarker(remainder string) (string, bool) {
	body, found := strings.CutSuffix(remainder, SectionMarker)
	if !found || body == "" {
		return remainder, false
	}
	r := []rune(body)
	if !unicode.IsSpace(r[len(r)-1]) {
		return remainder, false
	}
	return strings.TrimSpace(body), true
}

// Tokenize scans all heading tokens of text.
// Read errors cannot occur for in-memory text.
func Tokenize(text string) []Token {
	sc := NewScanner(strings.NewReader(text))
	var toks []Token
	for sc.Next() {
		toks = append(toks, sc.Token())
	}
	return toks
}
