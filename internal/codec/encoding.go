package codec

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// ErrDecode is wrapped by every decoding failure in this package.
var ErrDecode = errors.New("decode error")

// ToBase58 encodes binary data to a base58 string (Bitcoin alphabet)
func ToBase58(binaryData []byte) string {
	return base58.Encode(binaryData)
}

// FromBase58 decodes a base58 string to binary data.
// The empty string decodes to an empty slice.
func FromBase58(base58String string) ([]byte, error) {
	if base58String == "" {
		return []byte{}, nil
	}

	binaryData, err := base58.Decode(base58String)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base58: %v", ErrDecode, err)
	}

	return binaryData, nil
}

// ToBase64 encodes binary data to a padded standard base64 string
func ToBase64(binaryData []byte) string {
	return base64.StdEncoding.EncodeToString(binaryData)
}

// FromBase64 decodes a padded standard base64 string to binary data
func FromBase64(base64String string) ([]byte, error) {
	binaryData, err := base64.StdEncoding.DecodeString(base64String)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrDecode, err)
	}

	return binaryData, nil
}

// FromBase58Fixed decodes base58 and requires the result to be exactly size bytes
func FromBase58Fixed(base58String string, size int) ([]byte, error) {
	binaryData, err := FromBase58(base58String)
	if err != nil {
		return nil, err
	}

	if len(binaryData) != size {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrDecode, size, len(binaryData))
	}

	return binaryData, nil
}

// FromBase64Fixed decodes base64 and requires the result to be exactly size bytes
func FromBase64Fixed(base64String string, size int) ([]byte, error) {
	binaryData, err := FromBase64(base64String)
	if err != nil {
		return nil, err
	}

	if len(binaryData) != size {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrDecode, size, len(binaryData))
	}

	return binaryData, nil
}
