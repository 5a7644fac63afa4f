// Package textfile reads text files that may start with a byte order mark,
// converting UTF-16 content to UTF-8 and stripping the mark.
package textfile

import (
	"bytes"
	"os"

	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8 = []byte{0xef, 0xbb, 0xbf}
	bomBE   = []byte{0xfe, 0xff}
	bomLE   = []byte{0xff, 0xfe}
)

// Decode strips a leading byte order mark and converts the content to
// UTF-8. Content without a mark passes through unchanged.
func Decode(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], nil
	case bytes.HasPrefix(data, bomBE), bytes.HasPrefix(data, bomLE):
		// the decoder picks the endianness from the mark itself
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
		return dec.NewDecoder().Bytes(data)
	}
	return data, nil
}

// Read returns the decoded content of the file at filename.
func Read(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return Decode(data)
}
