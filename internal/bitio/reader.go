package bitio

import "fmt"

// Reader consumes bits from a byte buffer, most significant bit first.
// Readers are single-pass; there is no seeking.
type Reader struct {
	data []byte
	pos  uint64 // bit position
}

// NewReader returns a Reader over data. The buffer is not copied.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadBits consumes n bits and returns them as an unsigned integer.
// n must be in [1, 32]. Reading past the end fails with ErrTruncated.
func (r *Reader) ReadBits(n int) (uint32, error) {
	if n < 1 || n > 32 {
		panic(fmt.Sprintf("bitio: ReadBits width %d out of range [1,32]", n))
	}
	if r.pos+uint64(n) > uint64(len(r.data))*8 {
		return 0, fmt.Errorf("bitio: need %d bits at offset %d of %d-byte buffer: %w",
			n, r.pos, len(r.data), ErrTruncated)
	}
	var v uint32
	for n > 0 {
		b := r.data[r.pos/8]
		avail := 8 - int(r.pos%8)
		take := n
		if take > avail {
			take = avail
		}
		chunk := (b >> uint(avail-take)) & byte(1<<take-1)
		v = v<<uint(take) | uint32(chunk)
		r.pos += uint64(take)
		n -= take
	}
	return v, nil
}

// ReadBool consumes a single bit.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadBits(1)
	return v == 1, err
}

// ReadString consumes a length-prefixed string written by WriteString with the
// same maxChars. Fails with ErrInvalidString when the declared length exceeds
// maxChars, or ErrTruncated when the buffer ends mid-string.
func (r *Reader) ReadString(maxChars int) (string, error) {
	n, err := r.ReadBits(lengthPrefixBits(maxChars))
	if err != nil {
		return "", err
	}
	if int(n) > maxChars {
		return "", fmt.Errorf("bitio: declared length %d exceeds limit %d: %w", n, maxChars, ErrInvalidString)
	}
	b := make([]byte, n)
	for i := range b {
		v, err := r.ReadBits(8)
		if err != nil {
			return "", err
		}
		b[i] = byte(v)
	}
	return string(b), nil
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() uint64 {
	return uint64(len(r.data))*8 - r.pos
}
