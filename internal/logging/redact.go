// internal/logging/redact.go
package logging

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/upiexplain/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Secret creates a Zap field for config.Secret that records only its length.
func Secret(key string, val config.Secret) zap.Field {
	return zap.String(key, "[REDACTED:"+strconv.Itoa(len(val.Value()))+"]")
}

// redactingEncoder masks sensitive keys and strips payment identifiers
// (VPAs, phone numbers) that users paste into the search box.
type redactingEncoder struct {
	zapcore.Encoder
	keys     map[string]bool
	patterns []*regexp.Regexp
}

func newRedactingEncoder(base zapcore.Encoder, cfg RedactionConfig) (zapcore.Encoder, error) {
	if !cfg.Enabled {
		return base, nil
	}
	keys := make(map[string]bool, len(cfg.Fields))
	for _, f := range cfg.Fields {
		keys[strings.ToLower(f)] = true
	}
	patterns := make([]*regexp.Regexp, 0, len(cfg.Patterns))
	for _, p := range cfg.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}
	return &redactingEncoder{Encoder: base, keys: keys, patterns: patterns}, nil
}

func (e *redactingEncoder) scrub(val string) string {
	for _, re := range e.patterns {
		val = re.ReplaceAllString(val, "[REDACTED]")
	}
	return val
}

func (e *redactingEncoder) AddString(key, val string) {
	if e.keys[strings.ToLower(key)] {
		e.Encoder.AddString(key, "[REDACTED]")
		return
	}
	e.Encoder.AddString(key, e.scrub(val))
}

func (e *redactingEncoder) AddByteString(key string, val []byte) {
	e.AddString(key, string(val))
}

func (e *redactingEncoder) AddReflected(key string, val interface{}) error {
	if e.keys[strings.ToLower(key)] {
		e.Encoder.AddString(key, "[REDACTED]")
		return nil
	}
	return e.Encoder.AddReflected(key, val)
}

func (e *redactingEncoder) Clone() zapcore.Encoder {
	return &redactingEncoder{Encoder: e.Encoder.Clone(), keys: e.keys, patterns: e.patterns}
}

// EncodeEntry scrubs the message and the per-entry fields, which zap hands to
// the encoder here rather than through Add* calls.
func (e *redactingEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	entry.Message = e.scrub(entry.Message)
	scrubbed := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		switch {
		case e.keys[strings.ToLower(f.Key)]:
			f = zap.String(f.Key, "[REDACTED]")
		case f.Type == zapcore.StringType:
			f.String = e.scrub(f.String)
		}
		scrubbed[i] = f
	}
	return e.Encoder.EncodeEntry(entry, scrubbed)
}
