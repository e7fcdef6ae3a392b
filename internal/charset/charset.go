// Package charset turns raw subtitle bytes into UTF-8 text.
//
// An explicit encoding name always wins. Otherwise a byte order mark picks
// the Unicode flavour, valid UTF-8 is taken as is, and anything else goes
// through statistical detection before falling back to Windows-1252.
package charset

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dimchansky/utfbom"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// chardet names that htmlindex does not know under the same spelling
var detectorAliases = map[string]string{
	"GB-18030": "gb18030",
}

// Decode converts data to UTF-8 text with carriage returns removed.
// name is an encoding label such as "utf-8", "windows-1251" or "big5";
// empty means detect.
func Decode(data []byte, name string) (string, error) {
	var text []byte
	var err error

	if name != "" {
		enc, lookupErr := Lookup(name)
		if lookupErr != nil {
			return "", lookupErr
		}
		text, err = decodeWith(utfbom.SkipOnly(bytes.NewReader(data)), enc)
	} else {
		text, err = decodeDetected(data)
	}
	if err != nil {
		return "", err
	}

	return strings.ReplaceAll(string(text), "\r", ""), nil
}

// Lookup resolves an encoding label.
func Lookup(name string) (encoding.Encoding, error) {
	label := strings.TrimSpace(name)
	if alias, ok := detectorAliases[label]; ok {
		label = alias
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return enc, nil
}

// Detect guesses the charset of data, returning a label Lookup accepts.
func Detect(data []byte) (string, error) {
	_, bom := utfbom.Skip(bytes.NewReader(data))
	switch bom {
	case utfbom.UTF8:
		return "utf-8", nil
	case utfbom.UTF16BigEndian:
		return "utf-16be", nil
	case utfbom.UTF16LittleEndian:
		return "utf-16le", nil
	}

	if utf8.Valid(data) {
		return "utf-8", nil
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return "", fmt.Errorf("detect charset: %w", err)
	}
	return result.Charset, nil
}

func decodeDetected(data []byte) ([]byte, error) {
	reader, bom := utfbom.Skip(bytes.NewReader(data))
	switch bom {
	case utfbom.UTF8:
		return io.ReadAll(reader)
	case utfbom.UTF16BigEndian:
		return decodeWith(reader, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM))
	case utfbom.UTF16LittleEndian:
		return decodeWith(reader, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM))
	}

	if utf8.Valid(data) {
		return data, nil
	}

	label, err := Detect(data)
	if err != nil {
		return decodeWith(bytes.NewReader(data), charmap.Windows1252)
	}
	enc, err := Lookup(label)
	if err != nil {
		return decodeWith(bytes.NewReader(data), charmap.Windows1252)
	}
	return decodeWith(bytes.NewReader(data), enc)
}

func decodeWith(r io.Reader, enc encoding.Encoding) ([]byte, error) {
	out, err := io.ReadAll(transform.NewReader(r, enc.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}
