// SPDX-License-Identifier: EPL-2.0

package control

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		want    Command
		wantErr error
	}{
		{"bare", "reset", Command{Name: "reset", Args: []string{}}, nil},
		{"name lowercased", "BGM Play a.ogg", Command{Name: "bgm", Args: []string{"Play", "a.ogg"}}, nil},
		{"extra blanks", "  bgm\tplay   a.ogg 80\r\n", Command{Name: "bgm", Args: []string{"play", "a.ogg", "80"}}, nil},
		{"quoted", `bgm play "my song.ogg" 90`, Command{Name: "bgm", Args: []string{"play", "my song.ogg", "90"}}, nil},
		{"escape", `se play "a\"b.wav"`, Command{Name: "se", Args: []string{"play", `a"b.wav`}}, nil},
		{"empty quotes", `bgm play ""`, Command{Name: "bgm", Args: []string{"play", ""}}, nil},
		{"empty", "   ", Command{}, ErrEmpty},
		{"unterminated", `bgm play "a.ogg`, Command{}, ErrUnterminated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.line)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse(%q) error = %v, want %v", tt.line, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.Name != tt.want.Name || !reflect.DeepEqual(append([]string{}, got.Args...), tt.want.Args) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestReply_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		r    Reply
		want string
	}{
		{Reply{}, "OK"},
		{ok("%d", 42), "OK 42"},
		{fail(ErrUsage), "ERR bad arguments"},
	}

	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestArgs(t *testing.T) {
	t.Parallel()

	a := args{"7", "x", "0.5"}

	if n, err := a.intOr(0, 1); n != 7 || err != nil {
		t.Errorf("intOr(0) = (%d, %v), want (7, nil)", n, err)
	}
	if n, err := a.intOr(5, 100); n != 100 || err != nil {
		t.Errorf("intOr(5) = (%d, %v), want default", n, err)
	}
	if _, err := a.intOr(1, 0); !errors.Is(err, ErrUsage) {
		t.Errorf("intOr(1) error = %v, want ErrUsage", err)
	}
	if f, err := a.mustFloat(2); f != 0.5 || err != nil {
		t.Errorf("mustFloat(2) = (%v, %v), want (0.5, nil)", f, err)
	}
	if _, err := a.mustInt(3); !errors.Is(err, ErrUsage) {
		t.Errorf("mustInt(3) error = %v, want ErrUsage", err)
	}
	if _, err := a.str(3); !errors.Is(err, ErrUsage) {
		t.Errorf("str(3) error = %v, want ErrUsage", err)
	}
}

func BenchmarkParse(b *testing.B) {
	for b.Loop() {
		_, _ = Parse(`bgm crossfade "music/field theme.ogg" 1500 90 100 12.5`)
	}
}
