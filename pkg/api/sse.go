package api

import (
	"bufio"
	"io"
	"strings"
)

// maxFrameLine bounds a single line of the event stream
const maxFrameLine = 1 << 20

// frame is one dispatched server-sent event
type frame struct {
	Event string
	Data  string
	ID    string
}

// frameReader decodes a text/event-stream body into frames. Fields follow
// the event stream format: data lines accumulate joined by newlines, a blank
// line dispatches, lines starting with a colon are comments.
type frameReader struct {
	scanner *bufio.Scanner
	lastID  string
}

func newFrameReader(r io.Reader) *frameReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxFrameLine)
	return &frameReader{scanner: scanner}
}

// next returns the next frame, io.EOF at a clean end of input, or the read
// error. A frame cut off by the end of input is discarded.
func (fr *frameReader) next() (frame, error) {
	var (
		event   string
		data    []string
		hasData bool
	)

	for fr.scanner.Scan() {
		line := strings.TrimSuffix(fr.scanner.Text(), "\r")

		if line == "" {
			if !hasData && event == "" {
				continue
			}
			return frame{Event: event, Data: strings.Join(data, "\n"), ID: fr.lastID}, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			event = value
		case "data":
			data = append(data, value)
			hasData = true
		case "id":
			if !strings.Contains(value, "\x00") {
				fr.lastID = value
			}
		case "retry":
			// Reconnection is the fallback loop's decision
		}
	}

	if err := fr.scanner.Err(); err != nil {
		return frame{}, err
	}
	return frame{}, io.EOF
}
