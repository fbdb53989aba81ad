package outline

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Token
	}{
		{
			name: "flat headings",
			text: "# A\n# B\n# C",
			want: []Token{
				{Level: 1, Title: "A", Line: 1},
				{Level: 1, Title: "B", Line: 2},
				{Level: 1, Title: "C", Line: 3},
			},
		},
		{
			name: "nested with contributors",
			text: "# Part One\n## Chapter 1 || Alice; [Bob]",
			want: []Token{
				{Level: 1, Title: "Part One", Line: 1},
				{Level: 2, Title: "Chapter 1", RawContributors: "Alice; [Bob]", Line: 2},
			},
		},
		{
			name: "section marker",
			text: "# W1\n# Part Two /\n# W2",
			want: []Token{
				{Level: 1, Title: "W1", Line: 1},
				{Level: 1, Title: "Part Two", IsSection: true, Line: 2},
				{Level: 1, Title: "W2", Line: 3},
			},
		},
		{
			name: "section drops contributors",
			text: "## Appendix || Alice /",
			want: []Token{
				{Level: 2, Title: "Appendix || Alice", IsSection: true, Line: 1},
			},
		},
		{
			name: "blank and malformed lines",
			text: "\n# A\n\n   \nnot a heading\n#NoSpace\n##\n## B",
			want: []Token{
				{Level: 1, Title: "A", Line: 2},
				{Level: 2, Title: "B", Line: 8},
			},
		},
		{
			name: "crlf line endings",
			text: "# A\r\n## B || Carol\r\n",
			want: []Token{
				{Level: 1, Title: "A", Line: 1},
				{Level: 2, Title: "B", RawContributors: "Carol", Line: 2},
			},
		},
		{
			name: "splits on first delimiter only",
			text: "# T || A || B",
			want: []Token{
				{Level: 1, Title: "T", RawContributors: "A || B", Line: 1},
			},
		},
		{
			name: "doubled trailing marker is title text",
			text: "# and/or //",
			want: []Token{
				{Level: 1, Title: "and/or //", Line: 1},
			},
		},
		{
			name: "tab after markers",
			text: "###\tDeep",
			want: []Token{
				{Level: 3, Title: "Deep", Line: 1},
			},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanner_Skipped(t *testing.T) {
	sc := NewScanner(strings.NewReader("# A\nstray text\n\n## B\n-- page 3 --"))
	var titles []string
	for sc.Next() {
		titles = append(titles, sc.Token().Title)
	}
	require.NoError(t, sc.Err())

	assert.Equal(t, []string{"A", "B"}, titles)
	assert.Equal(t, []int{2, 5}, sc.Skipped())
}

func TestScanner_VeryLongLineIsSkipped(t *testing.T) {
	text := "# A\n" + strings.Repeat("x", 2<<20) + "\n# C"
	sc := NewScanner(strings.NewReader(text))
	var titles []string
	for sc.Next() {
		titles = append(titles, sc.Token().Title)
	}
	require.NoError(t, sc.Err())

	assert.Equal(t, []string{"A", "C"}, titles)
	assert.Equal(t, []int{2}, sc.Skipped())
}

func TestScanner_VeryLongHeading(t *testing.T) {
	title := strings.Repeat("t", 2<<20)
	toks := Tokenize("# " + title + " || Ann\r\n## B\r\n")

	require.Len(t, toks, 2)
	assert.Equal(t, title, toks[0].Title)
	assert.Equal(t, "Ann", toks[0].RawContributors)
	assert.Equal(t, Token{Level: 2, Title: "B", Line: 2}, toks[1])
}

func TestScanner_NotRestartable(t *testing.T) {
	sc := NewScanner(strings.NewReader("# A"))
	require.True(t, sc.Next())
	assert.False(t, sc.Next())
	assert.False(t, sc.Next(), "exhausted scanner must stay exhausted")
	assert.Equal(t, "A", sc.Token().Title)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestScanner_ReadError(t *testing.T) {
	sc := NewScanner(failingReader{})
	assert.False(t, sc.Next())
	require.Error(t, sc.Err())
	assert.Contains(t, sc.Err().Error(), "disk on fire")
}

func TestParseLine_Rejects(t *testing.T) {
	for _, line := range []string{"plain", "#", "###", "#x", "  # indented"} {
		_, ok := ParseLine(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestToken_String(t *testing.T) {
	tok := Token{Level: 2, Title: "Intro", Line: 4}
	assert.Equal(t, `heading[L2 line 4] "Intro"`, tok.String())

	tok.IsSection = true
	assert.Equal(t, `section[L2 line 4] "Intro"`, tok.String())
}
