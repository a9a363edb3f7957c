package hal

import (
	"bufio"
	"io"
	"sync"

	"kestrel/abi"
)

// Log frames travel as [task, len, payload...]: one byte of task id, one
// byte of payload length, then the payload. The framing survives any
// byte-oriented transport and needs no escaping because len bounds the
// payload exactly.

// Frame is one decoded log frame.
type Frame struct {
	Task    abi.TaskID
	Payload []byte
}

// FrameWriter forwards kernel log frames onto a byte stream. It satisfies
// the kernel's log sink interface.
type FrameWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// LogFrame writes one frame. Oversized payloads are truncated to
// abi.MaxLogBytes; the kernel rejects them before this point.
func (f *FrameWriter) LogFrame(task abi.TaskID, payload []byte) {
	if len(payload) > abi.MaxLogBytes {
		payload = payload[:abi.MaxLogBytes]
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	hdr := [2]byte{byte(task), byte(len(payload))}
	if _, err := f.w.Write(hdr[:]); err != nil {
		return
	}
	f.w.Write(payload)
}

// FrameReader decodes a stream of frames produced by FrameWriter.
type FrameReader struct {
	r *bufio.Reader
}

func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReader(r)}
}

// Next returns the next frame, io.EOF at a clean end of stream, and
// io.ErrUnexpectedEOF when the stream ends mid-frame.
func (fr *FrameReader) Next() (Frame, error) {
	task, err := fr.r.ReadByte()
	if err != nil {
		return Frame{}, err
	}
	n, err := fr.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Frame{}, err
	}
	payload := make([]byte, int(n))
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Frame{}, err
	}
	return Frame{Task: abi.TaskID(task), Payload: payload}, nil
}
