package wavefront

import (
	"bufio"
	"io"
	"strings"
)

// lineReader yields logical lines: comments stripped, trailing "\" continuations
// joined, blank lines skipped. line is the 1-based number of the first physical line.
type lineReader struct {
	sc   *bufio.Scanner
	next int
	line int
}

func newLineReader(r io.Reader) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &lineReader{sc: sc}
}

// fields returns the directive tokens of the next non-empty line, or nil at EOF.
func (lr *lineReader) fields() []string {
	var b strings.Builder
	start := 0
	for lr.sc.Scan() {
		lr.next++
		text := lr.sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimRight(text, " \t\r")
		if start == 0 {
			start = lr.next
		}
		if strings.HasSuffix(text, "\\") {
			b.WriteString(strings.TrimSuffix(text, "\\"))
			b.WriteByte(' ')
			continue
		}
		b.WriteString(text)
		f := strings.Fields(b.String())
		if len(f) > 0 {
			lr.line = start
			return f
		}
		b.Reset()
		start = 0
	}
	if f := strings.Fields(b.String()); len(f) > 0 {
		lr.line = start
		return f
	}
	return nil
}

func (lr *lineReader) err() error {
	return lr.sc.Err()
}
