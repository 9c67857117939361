package api

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/dutchcoders/go-clamd"
)

const maxThumbnailBytes = 2 << 20

var thumbnailPrefixes = []string{
	"data:image/png;base64,",
	"data:image/jpeg;base64,",
	"data:image/webp;base64,",
}

// VirusScanner reports whether the stream is clean.
type VirusScanner interface {
	Scan(r io.Reader) (clean bool, err error)
}

// ClamdScanner streams content to a clamd daemon.
type ClamdScanner struct {
	Addr string
}

func (s ClamdScanner) Scan(r io.Reader) (bool, error) {
	abort := make(chan bool)
	defer close(abort)

	results, err := clamd.NewClamd(s.Addr).ScanStream(r, abort)
	if err != nil {
		return false, fmt.Errorf("clamd scan: %w", err)
	}

	clean := true
	for result := range results {
		switch result.Status {
		case clamd.RES_OK:
		case clamd.RES_FOUND:
			clean = false
		default:
			return false, fmt.Errorf("clamd scan: %s", result.Description)
		}
	}
	return clean, nil
}

// checkThumbnail returns a field message for an unacceptable thumbnail and an
// error when the scanner itself failed. An empty value clears the thumbnail.
func checkThumbnail(value string, scanner VirusScanner) (string, error) {
	if value == "" {
		return "", nil
	}

	var payload string
	for _, prefix := range thumbnailPrefixes {
		if strings.HasPrefix(value, prefix) {
			payload = strings.TrimPrefix(value, prefix)
			break
		}
	}
	if payload == "" {
		return "thumbnail must be a base64 png, jpeg or webp data URI", nil
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > maxThumbnailBytes+3 {
		return "thumbnail exceeds 2 MiB", nil
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "thumbnail is not valid base64", nil
	}
	if len(raw) > maxThumbnailBytes {
		return "thumbnail exceeds 2 MiB", nil
	}

	if scanner == nil {
		return "", nil
	}
	clean, err := scanner.Scan(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	if !clean {
		return "malicious content detected", nil
	}
	return "", nil
}
