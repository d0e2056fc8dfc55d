// Package pkg provides the libraries behind busarchive.
//
// # Overview
//
// Busarchive saves an in-memory object graph to a text archive and restores
// it with its sharing intact: two references to one object before saving
// are two references to one object after loading, and references to
// distinct objects stay distinct. The pkg directory is organized into:
//
//  1. [archive] - The archive engine (token codec, identity tracking,
//     versioned records, polymorphic variants)
//  2. [schedule] - The bus schedule domain (trips, shared routes,
//     corner and destination stops) and its save/load entry points
//  3. [store] - Keeping archives in a file, Redis or MongoDB store
//  4. [gtfsimport], [render] - Building schedules from GTFS feeds and
//     drawing their object graphs
//  5. [errors], [observability], [buildinfo] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	TOML definition / GTFS feed / schedule.Sample
//	         ↓
//	    [schedule] graph (Schedule → Route → Stop)
//	         ↓
//	    [archive] Writer (one record per object, back-references for sharing)
//	         ↓
//	    file or [store] backend
//	         ↓
//	    [archive] Reader → fresh graph with the same shape
//
// # Quick Start
//
//	s := schedule.Sample()
//	if err := schedule.Save(s, "schedule.busarchive"); err != nil {
//	    return err
//	}
//	restored, err := schedule.Load("schedule.busarchive")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(schedule.SameShape(s, restored)) // true
//
// # Errors
//
// Every failure leaving a package carries an [errors.Code]: NOT_FOUND and
// IO_UNAVAILABLE for files, MALFORMED_ARCHIVE, FUTURE_VERSION and
// UNKNOWN_VARIANT for archive content, INVALID_INPUT and INVALID_KEY for
// caller mistakes.
package pkg
