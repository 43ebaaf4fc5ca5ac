// Package zdata implements the zlib data layer of ZSAV files.
//
// A ZSAV file stores the byte-code compressed case stream in independently
// deflated blocks so that a reader never has to hold more than one block in
// memory:
//
//	+----------+---------+---------+-----+----------+
//	| ZHeader  | block 0 | block 1 | ... | ZTrailer |
//	| 24 bytes | zlib    | zlib    |     | 24×(n+1) |
//	+----------+---------+---------+-----+----------+
//
// Reader validates the header and the trailer up front and then exposes the
// inflated byte-code stream as an io.ReadSeeker. Offsets are relative to the
// start of the inflated stream, so a bytecode.Decompressor layered on top can
// rewind to the first case.
//
// Writer buffers byte-code data into blocks of at most the configured block
// size, deflates each one, and on Close writes the trailer and patches the
// header written as a placeholder when the writer was created.
//
// # Usage
//
//	zw, _ := zdata.NewWriter(file)
//	c, _ := bytecode.NewCompressor(zw)
//	// ... write cases ...
//	_ = c.EndFile()
//	_ = zw.Close()
//
//	zr, _ := zdata.NewReader(file)
//	d, _ := bytecode.NewDecompressor(zr)
package zdata
