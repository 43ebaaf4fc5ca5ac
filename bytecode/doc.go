// Package bytecode implements the byte-code compression scheme of SAV case
// data and the uncompressed element layout.
//
// # Wire Format
//
// A compressed stream is a sequence of blocks. Each block starts with 8
// one-byte control codes, followed by one raw 8-byte literal for every code
// 253 in the block, in code order:
//
//	code      element
//	0         none (padding)
//	1..251    the double code-bias
//	252       end of data, the rest of the stream is ignored
//	253       the next raw 8 bytes after the control codes
//	254       eight ASCII spaces
//	255       the system-missing value
//
// Decompressor turns such a stream into one 8-byte element per dictionary
// slot, Compressor produces it. RawSource and RawSink do the same for files
// whose header declares no compression, where every element is stored as is.
//
// # Usage
//
//	c, _ := bytecode.NewCompressor(w)
//	_ = c.WriteNumber(42)
//	_ = c.WriteCharBlock(format.SpaceElement)
//	_ = c.EndFile()
//
//	d, _ := bytecode.NewDecompressor(r)
//	var elem format.Element
//	for d.ReadElement(&elem) == nil {
//	    // one element per slot
//	}
//
// # Thread Safety
//
// None of the types in this package are safe for concurrent use. Each owns
// its byte source or sink exclusively for the duration of a session.
package bytecode
