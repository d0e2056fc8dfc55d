package archive

import (
	"io"

	"github.com/charmbracelet/log"
)

// Magic is the first token of every archive.
const Magic = "busarchive"

// Trailer is the last token of every archive. A stream cut anywhere before
// it fails to decode.
const Trailer = "end"

// FormatVersion is the version of the token grammar this package writes.
// It is independent of the schema versions of individual record types.
const FormatVersion = 1

// Option configures a [Writer] or [Reader].
type Option func(*options)

type options struct {
	registry *Registry
	logger   *log.Logger
}

func newOptions(opts []Option) options {
	o := options{registry: DefaultRegistry}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	return o
}

// WithRegistry selects the variant registry. The default is [DefaultRegistry].
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithLogger enables debug tracing of slots and records.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Stats counts what one archive operation wrote or read.
type Stats struct {
	Records  int // Versioned records, including referenced objects
	Objects  int // Distinct referenced objects (slots)
	BackRefs int // References written or resolved as back-references
	Outdated int // Records read at an older schema version than their type's current one
}

type state int

const (
	stateIdle state = iota
	stateActive
	stateClosed
)
