package ir

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeMsgpack writes d to w in msgpack, using the same shape as the JSON codec.
func EncodeMsgpack(w io.Writer, d TypeDescriptor) error {
	wd, err := toWire(d)
	if err != nil {
		return err
	}
	return msgpack.NewEncoder(w).Encode(wd)
}

// DecodeMsgpack reads one descriptor written by EncodeMsgpack.
func DecodeMsgpack(r io.Reader) (TypeDescriptor, error) {
	var wd *wireDescriptor
	if err := msgpack.NewDecoder(r).Decode(&wd); err != nil {
		return nil, err
	}
	return fromWire(wd)
}
