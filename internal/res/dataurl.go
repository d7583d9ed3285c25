package res

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// parseDataURL decodes an RFC 2397 data URL such as
//
//	data:image/png;base64,<base64>
//	data:text/plain,Hello%20World
func parseDataURL(u string) (*Resource, error) {
	rest, ok := strings.CutPrefix(u, "data:")
	if !ok {
		return nil, errors.New("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New("invalid data URL: missing ','")
	}

	mimeType := "application/octet-stream"
	encoded := false
	for i, param := range strings.Split(meta, ";") {
		param = strings.TrimSpace(param)
		switch {
		case i == 0 && param != "":
			mimeType = strings.ToLower(param)
		case strings.EqualFold(param, "base64"):
			encoded = true
		}
	}

	var data []byte
	if encoded {
		var err error
		if data, err = decodeBase64(payload); err != nil {
			return nil, fmt.Errorf("invalid base64 data URL: %w", err)
		}
	} else if s, err := url.QueryUnescape(payload); err == nil {
		data = []byte(s)
	} else {
		data = []byte(payload)
	}
	return newResource(u, mimeType, data), nil
}

// decodeBase64 accepts line-wrapped, percent-escaped and unpadded payloads
// the way browsers do
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
	if unescaped, err := url.PathUnescape(s); err == nil {
		s = unescaped
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	return data, err
}
