package adapter

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

// maxBinaryLength bounds length-prefixed payloads so a corrupt prefix cannot
// trigger an unbounded allocation.
const maxBinaryLength = 1 << 30

func writeBytes(w io.Writer, b []byte) error {
	buf := binary.AppendUvarint(make([]byte, 0, binary.MaxVarintLen64+len(b)), uint64(len(b)))
	buf = append(buf, b...)
	_, err := w.Write(buf)
	return err
}

func readBytes(r io.Reader) ([]byte, error) {
	n, err := binary.ReadUvarint(byteReader{r})
	if err != nil {
		return nil, err
	}
	if n > maxBinaryLength {
		return nil, errors.Newf("length prefix %d exceeds limit", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// byteReader reads one byte at a time from readers that do not implement
// io.ByteReader themselves, so no bytes past the prefix are consumed.
type byteReader struct {
	r io.Reader
}

func (b byteReader) ReadByte() (byte, error) {
	if br, ok := b.r.(io.ByteReader); ok {
		return br.ReadByte()
	}
	var one [1]byte
	if _, err := io.ReadFull(b.r, one[:]); err != nil {
		return 0, err
	}
	return one[0], nil
}

func writeUint(w io.Writer, u uint64, size int) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], u)
	_, err := w.Write(buf[:size])
	return err
}

func readUint(r io.Reader, size int) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:size]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}
