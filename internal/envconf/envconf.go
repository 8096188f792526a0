// SPDX-License-Identifier: EPL-2.0

// Package envconf reads typed overrides from environment variables. Every
// setter leaves dst untouched when the variable is unset and reports a
// parse failure instead of guessing.
package envconf

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Lookup is the function used to read variables; os.LookupEnv by default.
type Lookup func(key string) (string, bool)

type Reader struct {
	prefix string
	lookup Lookup
}

// New returns a Reader for variables named prefix+key.
func New(prefix string, lookup Lookup) *Reader {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Reader{prefix: prefix, lookup: lookup}
}

func (r *Reader) get(key string) (string, string, bool) {
	name := r.prefix + key
	v, ok := r.lookup(name)
	return name, strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
}

func (r *Reader) Int(key string, dst *int) error {
	name, v, ok := r.get(key)
	if !ok {
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n

	return nil
}

// Duration accepts Go duration syntax ("250ms") or a bare integer of
// milliseconds.
func (r *Reader) Duration(key string, dst *time.Duration) error {
	name, v, ok := r.get(key)
	if !ok {
		return nil
	}

	if ms, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(ms) * time.Millisecond
		return nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d

	return nil
}

func (r *Reader) String(key string, dst *string) error {
	if _, v, ok := r.get(key); ok {
		*dst = v
	}
	return nil
}
