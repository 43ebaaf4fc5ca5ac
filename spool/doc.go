// Package spool implements the case spool, a framed and block-compressed
// holding area for encoded cases.
//
// The SAV header records the number of cases before any case data, but a
// streaming writer only knows that number once the last case is encoded.
// Writers therefore encode cases into a spool first and copy the spool's
// byte-code stream into the final file once the count is known.
//
// # Layout
//
//	+-------------+---------+-----+---------+------------+------------+
//	| SpoolHeader | frame 0 | ... | frame n | terminator | case count |
//	| 32 bytes    |         |     |         | 8 bytes    | int64 LE   |
//	+-------------+---------+-----+---------+------------+------------+
//
// Each frame is a FrameHeader (uint32 raw length, uint32 compressed length)
// followed by the payload compressed with the codec named in the header. The
// header also carries the dictionary fingerprint, so a spool cannot be read
// back with a dictionary whose layout differs from the one it was written
// with.
//
// # Usage
//
//	w, _ := spool.NewWriter(tmp, dictionary.Fingerprint())
//	c, _ := bytecode.NewCompressor(w)
//	// ... write cases ...
//	_ = c.EndFile()
//	w.SetCaseCount(n)
//	_ = w.Close()
//
//	r, _ := spool.NewReader(tmp, dictionary.Fingerprint())
//	d, _ := bytecode.NewDecompressor(r)
package spool
