// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package sorter

import (
	"encoding/binary"
	"fmt"
	"io"
)

// recordEncoder writes a record as a 4-byte field count followed by each
// field as a 4-byte length and its bytes, all big endian.
type recordEncoder struct {
	buf []byte
}

func newRecordEncoder() *recordEncoder {
	return &recordEncoder{buf: make([]byte, 0, 256)}
}

// Encode returns a buffer that is reused by the next call.
func (e *recordEncoder) Encode(sl []string) []byte {
	n := 4
	for _, s := range sl {
		n += len(s) + 4
	}
	if n > cap(e.buf) {
		e.buf = make([]byte, n)
	} else {
		e.buf = e.buf[:n]
	}
	binary.BigEndian.PutUint32(e.buf, uint32(len(sl)))
	off := 4
	for _, s := range sl {
		binary.BigEndian.PutUint32(e.buf[off:], uint32(len(s)))
		off += 4
		off += copy(e.buf[off:], s)
	}
	return e.buf
}

type recordDecoder struct {
	hdr [4]byte
	buf []byte
}

func newRecordDecoder() *recordDecoder {
	return &recordDecoder{}
}

func (d *recordDecoder) readUint32(r io.Reader) (uint32, error) {
	if _, err := io.ReadFull(r, d.hdr[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(d.hdr[:]), nil
}

// Read decodes the next record. It returns io.EOF only at a record boundary.
func (d *recordDecoder) Read(r io.Reader) ([]string, error) {
	n, err := d.readUint32(r)
	if err != nil {
		return nil, err
	}
	sl := make([]string, n)
	for i := range sl {
		l, err := d.readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("truncated record: %w", io.ErrUnexpectedEOF)
		}
		if int(l) > cap(d.buf) {
			d.buf = make([]byte, l)
		}
		d.buf = d.buf[:l]
		if _, err := io.ReadFull(r, d.buf); err != nil {
			return nil, fmt.Errorf("truncated record: %w", io.ErrUnexpectedEOF)
		}
		sl[i] = string(d.buf)
	}
	return sl, nil
}
