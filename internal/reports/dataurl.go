package reports

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeDataURL returns the bytes of a "<prefix>,<base64>" payload.
// Only the first comma splits; the prefix is not interpreted.
func DecodeDataURL(payload string) ([]byte, error) {
	_, encoded, ok := strings.Cut(payload, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing comma separator", ErrDecodeFailure)
	}

	encoded = strings.TrimSpace(encoded)
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// unpadded payloads from some clients
		raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
		if rawErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
		}
		data = raw
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecodeFailure)
	}
	return data, nil
}
