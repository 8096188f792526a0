// SPDX-License-Identifier: EPL-2.0

package control

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is one parsed request line.
type Command struct {
	Name string
	Args []string
}

// Parse splits a request line into words. Double quotes group words and
// accept Go escapes, so file names may contain spaces.
func Parse(line string) (Command, error) {
	var (
		words []string
		cur   strings.Builder
		in    bool
		held  bool // cur holds a quoted word, possibly empty
		quote strings.Builder
	)

	flush := func() {
		if cur.Len() > 0 || held {
			words = append(words, cur.String())
			cur.Reset()
			held = false
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]

		switch {
		case in && c == '\\' && i+1 < len(line):
			quote.WriteByte(c)
			quote.WriteByte(line[i+1])
			i++
		case in && c == '"':
			s, err := strconv.Unquote(`"` + quote.String() + `"`)
			if err != nil {
				return Command{}, fmt.Errorf("%q: %w", quote.String(), ErrUsage)
			}
			cur.WriteString(s)
			quote.Reset()
			in, held = false, true
		case in:
			quote.WriteByte(c)
		case c == '"':
			in = true
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			flush()
		default:
			cur.WriteByte(c)
		}
	}

	if in {
		return Command{}, ErrUnterminated
	}
	flush()

	if len(words) == 0 {
		return Command{}, ErrEmpty
	}

	return Command{Name: strings.ToLower(words[0]), Args: words[1:]}, nil
}

// Reply is the response to one command, written as "OK [value]" or
// "ERR <reason>".
type Reply struct {
	Value string
	Err   error
}

func (r Reply) String() string {
	if r.Err != nil {
		return "ERR " + r.Err.Error()
	}
	if r.Value == "" {
		return "OK"
	}
	return "OK " + r.Value
}

func ok(format string, args ...any) Reply {
	return Reply{Value: fmt.Sprintf(format, args...)}
}

func fail(err error) Reply { return Reply{Err: err} }

// args gives positional access with defaults.
type args []string

func (a args) str(i int) (string, error) {
	if i >= len(a) {
		return "", fmt.Errorf("missing argument %d: %w", i+1, ErrUsage)
	}
	return a[i], nil
}

func (a args) intOr(i, def int) (int, error) {
	if i >= len(a) {
		return def, nil
	}
	n, err := strconv.Atoi(a[i])
	if err != nil {
		return 0, fmt.Errorf("%q: %w", a[i], ErrUsage)
	}
	return n, nil
}

func (a args) floatOr(i int, def float64) (float64, error) {
	if i >= len(a) {
		return def, nil
	}
	f, err := strconv.ParseFloat(a[i], 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", a[i], ErrUsage)
	}
	return f, nil
}

func (a args) boolOr(i int, def bool) (bool, error) {
	if i >= len(a) {
		return def, nil
	}
	b, err := strconv.ParseBool(a[i])
	if err != nil {
		return false, fmt.Errorf("%q: %w", a[i], ErrUsage)
	}
	return b, nil
}

func (a args) mustInt(i int) (int, error) {
	if i >= len(a) {
		return 0, fmt.Errorf("missing argument %d: %w", i+1, ErrUsage)
	}
	return a.intOr(i, 0)
}

func (a args) mustFloat(i int) (float64, error) {
	if i >= len(a) {
		return 0, fmt.Errorf("missing argument %d: %w", i+1, ErrUsage)
	}
	return a.floatOr(i, 0)
}
