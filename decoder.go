package revline

import (
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Decoder turns the bytes of one line, newline excluded, into text. It must
// not retain p.
type Decoder interface {
	Decode(p []byte) (string, error)
}

type DecoderFunc func(p []byte) (string, error)

func (f DecoderFunc) Decode(p []byte) (string, error) {
	return f(p)
}

// UTF8 accepts only well formed UTF-8.
var UTF8 Decoder = DecoderFunc(decodeUTF8)

func decodeUTF8(p []byte) (string, error) {
	out, _, err := transform.Bytes(encoding.UTF8Validator, p)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// NewEncodingDecoder decodes lines with enc. Lines are split on the byte 0x0A
// before decoding, so enc must encode a newline as exactly that byte.
func NewEncodingDecoder(enc encoding.Encoding) (Decoder, error) {
	nl, err := enc.NewEncoder().Bytes([]byte{'\n'})
	if err != nil {
		return nil, errors.Wrap(err, "encode newline")
	}
	if len(nl) != 1 || nl[0] != '\n' {
		return nil, ErrIncompatibleEncoding
	}
	return DecoderFunc(func(p []byte) (string, error) {
		out, err := enc.NewDecoder().Bytes(p)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}), nil
}
