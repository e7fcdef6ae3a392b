package subtitle

import (
	"io"
	"os"

	"github.com/mgpai22/subtitools/internal/charset"
)

// ReadFile reads the whole file at path, closing it on every exit path.
func ReadFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// Open reads and parses the SubRip file at path. encoding names the source
// charset; empty means detect.
func Open(path, encoding string) (*Track, error) {
	text, err := readText(path, encoding)
	if err != nil {
		return nil, err
	}

	track, err := ParseSRT(text)
	if err != nil {
		return nil, WithFile(err, path)
	}
	return track, nil
}

// OpenLenient is Open that keeps well-formed blocks and reports the
// malformed ones instead of failing on the first.
func OpenLenient(path, encoding string) (*Track, []error, error) {
	text, err := readText(path, encoding)
	if err != nil {
		return nil, nil, err
	}

	track, errs := ParseSRTLenient(text)
	for _, e := range errs {
		WithFile(e, path)
	}
	return track, errs, nil
}

func readText(path, encoding string) (string, error) {
	data, err := ReadFile(path)
	if err != nil {
		return "", err
	}

	text, err := charset.Decode(data, encoding)
	if err != nil {
		return "", &IOError{Op: "decode", Path: path, Err: err}
	}
	return text, nil
}
