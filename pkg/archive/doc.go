// Package archive serializes graphs of pointer-shared, polymorphic objects
// to a self-describing text archive and reconstructs an isomorphic graph.
//
// # Overview
//
// A reconstructed graph has the same values, the same sharing structure
// (two references to one object before are two references to one object
// after, and nothing else is merged), and the same dynamic types, which
// are recovered from discriminators stored in the archive. Record types
// carry a schema version so newer programs can read archives written by
// older ones.
//
// Types take part by describing their fields explicitly:
//
//	func (p Position) MarshalArchive(w *archive.Writer) error {
//	    w.Int(p.Degrees)
//	    w.Int(p.Minutes)
//	    w.Float(p.Seconds)
//	    return w.Err()
//	}
//
//	func (p *Position) UnmarshalArchive(r *archive.Reader, version int) error {
//	    p.Degrees = r.Int()
//	    p.Minutes = r.Int()
//	    p.Seconds = r.Float()
//	    return r.Err()
//	}
//
// Values are written with [Writer.Record], shared pointers with
// [Writer.Ref] and [ReadRef], and pointers reached only through an
// interface with [Writer.Poly] and [ReadPoly]. Concrete types behind an
// interface must be registered with [Register] before any archive is read,
// normally from an init function.
//
// # Format
//
// The archive is line oriented and meant to be readable:
//
//	busarchive 1
//	v1 2
//	v2 3 bob 6 24
//	#0 v1 2
//	#1 corner v1
//	v1 34 135 52.56
//	v1 134 22 78.3
//	11 24th Street 11 10th Avenue
//	@1
//	v2 5 alice 9 57
//	@0
//	end
//
// Tokens are separated by whitespace. Integers and floats are decimal,
// strings are a byte length, one space, and the raw bytes. "v<N>" opens a
// record at schema version N. "#<slot>" introduces an object the first time
// it is referenced, followed by its variant discriminator when it was
// written through [Writer.Poly]; "@<slot>" refers back to it and "~" is a
// nil reference. Slots are numbered in first-visit order, so reader and
// writer must walk references in the same order. The archive closes with
// the "end" token, so a stream cut at any byte fails to decode.
//
// # Errors
//
// [Writer.Encode] and [Reader.Decode] return *errors.Error values from
// package github.com/matzehuels/busarchive/pkg/errors with one of the codes
// MALFORMED_ARCHIVE, FUTURE_VERSION, UNKNOWN_VARIANT, IO_UNAVAILABLE or
// INTERNAL_ERROR. Field methods are sticky: after the first failure they do
// nothing and return zero values, and the failure is reported once.
//
// # Concurrency
//
// A Writer or Reader is used by one goroutine for one operation. The
// registry is safe for concurrent lookups once registration is done.
package archive
