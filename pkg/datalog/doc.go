// Package datalog reads and writes WPILOG telemetry containers.
//
// A container is a fixed header followed by a chronologically ordered stream
// of framed records. Records addressed to entry 0 are control records that
// declare, retire, or annotate entries; every other record carries one
// timestamped value for a previously declared entry.
//
// # Header Format
//
//	[Signature "WPILOG"(6)][Version(2)][ExtraLen(4)][Extra(ExtraLen)]
//
// Version is little-endian and must have major version 1 (0x01xx). Extra is
// an opaque UTF-8 string written by the producer.
//
// # Record Format
//
//	[Lengths(1)][EntryID(1-4)][PayloadSize(1-4)][Timestamp(1-8)][Payload]
//
// The Lengths byte packs the width of the three integer fields that follow:
//   - bits 0-1: EntryID width minus one
//   - bits 2-3: PayloadSize width minus one
//   - bits 4-6: Timestamp width minus one
//   - bit 7: reserved, must be zero
//
// All integers are little-endian. Timestamps are in microseconds on the
// producer's monotonic clock.
//
// # Control Records
//
// The first payload byte of a control record selects its kind:
//
//	0 Start:       [EntryID(4)][NameLen(4)][Name][TypeLen(4)][Type][MetaLen(4)][Meta]
//	1 Finish:      [EntryID(4)]
//	2 SetMetadata: [EntryID(4)][MetaLen(4)][Meta]
//
// An entry ID may be declared again once it has been finished.
//
// # Error Handling
//
// Decoding is all-or-nothing. A bad signature, a truncated frame, a record
// for an entry that is not active, or a payload that does not fit its
// declared type aborts the whole decode with a *FormatError. Once a frame
// boundary is wrong every later offset is wrong too, so no partial result is
// ever returned.
package datalog
