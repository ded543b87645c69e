package usdz

import (
	"archive/zip"
	"encoding/binary"
	"hash/crc32"
	"io"
)

const (
	// Alignment is the byte boundary every entry's data starts on.
	Alignment = 64

	paddingExtraID   = 0x1986
	localHeaderSize  = 30
	extraHeaderBytes = 4
)

// alignedWriter writes a store-only zip archive whose entry data is
// aligned to Alignment bytes, as required by USDZ readers that map the
// package into memory.
type alignedWriter struct {
	counter *countingWriter
	zw      *zip.Writer
}

func newAlignedWriter(w io.Writer) *alignedWriter {
	c := &countingWriter{w: w}
	return &alignedWriter{counter: c, zw: zip.NewWriter(c)}
}

// Add stores data under name without compression or a data descriptor.
func (a *alignedWriter) Add(name string, data []byte) error {
	if err := a.zw.Flush(); err != nil {
		return err
	}
	offset := a.counter.n + localHeaderSize + int64(len(name)) + extraHeaderBytes
	pad := (Alignment - offset%Alignment) % Alignment

	extra := make([]byte, extraHeaderBytes+pad)
	binary.LittleEndian.PutUint16(extra[0:], paddingExtraID)
	binary.LittleEndian.PutUint16(extra[2:], uint16(pad))

	fh := &zip.FileHeader{
		Name:               name,
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE(data),
		CompressedSize64:   uint64(len(data)),
		UncompressedSize64: uint64(len(data)),
		Extra:              extra,
	}
	w, err := a.zw.CreateRaw(fh)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (a *alignedWriter) Close() error {
	return a.zw.Close()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
