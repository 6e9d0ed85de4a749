package table

// streaming.go wraps the input reader before it reaches encoding/csv:
//
//   - skipBOM drops a leading UTF-8 BOM (0xEF 0xBB 0xBF) from Windows exports
//   - utf8Reader checks every byte is part of a valid UTF-8 sequence, either
//     failing with a DecodeError or replacing the byte with '?'
//
// Both work in O(buffer) memory regardless of input size.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// utf8ChunkSize is the read size used by utf8Reader.
const utf8ChunkSize = 32 * 1024

// maxEmptyFills bounds consecutive fills that hand out nothing before
// utf8Reader gives up with io.ErrNoProgress, matching bufio.
const maxEmptyFills = 100

// skipBOM returns a reader positioned after a leading BOM, if there is one.
// Read errors hit while peeking are kept by bufio and surface on the first Read.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(bom)); err == nil && bytes.Equal(head, bom) {
		_, _ = br.Discard(len(bom))
	}
	return br
}

// utf8Reader validates UTF-8 on the fly. Multi-byte sequences split across
// reads of the underlying reader are carried over to the next chunk.
type utf8Reader struct {
	r        io.Reader
	sanitize bool

	scratch []byte
	buf     []byte // validated bytes not yet handed out
	tail    []byte // start of a sequence cut off by the chunk boundary
	offset  int64  // bytes validated so far
	err     error
}

func newUTF8Reader(r io.Reader, sanitize bool) *utf8Reader {
	return &utf8Reader{r: r, sanitize: sanitize}
}

// Read implements io.Reader. Valid bytes preceding a decode error are returned
// before the error itself.
func (u *utf8Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for i := 0; len(u.buf) == 0; i++ {
		if u.err != nil {
			return 0, u.err
		}
		if i == maxEmptyFills {
			return 0, io.ErrNoProgress
		}
		u.fill()
	}
	n := copy(p, u.buf)
	u.buf = u.buf[n:]
	return n, nil
}

func (u *utf8Reader) fill() {
	if u.scratch == nil {
		u.scratch = make([]byte, utf8ChunkSize)
	}

	// tail aliases the end of scratch; copy handles the overlap.
	k := copy(u.scratch, u.tail)
	u.tail = nil
	m, err := u.r.Read(u.scratch[k:])
	data := u.scratch[:k+m]

	i := 0
	for i < len(data) {
		if data[i] < utf8.RuneSelf {
			i++
			continue
		}
		if err == nil && !utf8.FullRune(data[i:]) {
			break
		}
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			if !u.sanitize {
				u.buf = data[:i]
				u.offset += int64(i)
				u.err = &DecodeError{Offset: u.offset}
				return
			}
			data[i] = '?'
		}
		i += size
	}

	u.buf = data[:i]
	u.tail = data[i:]
	u.offset += int64(i)
	if err != nil {
		u.err = err
	}
}
