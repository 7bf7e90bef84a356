// Package id derives and checks the content-addressed ids of bill images.
package id

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Image formats accepted for bill images.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)

var imageIDRe = regexp.MustCompile(`^[0-9a-f]{40}\.(jpeg|png)$`)

// ImageID returns "<sha1 hex of data>.<format>", e.g.
// "da39a3ee5e6b4b0d3255bfef95601890afd80709.png".
func ImageID(data []byte, format string) (string, error) {
	if format != FormatJPEG && format != FormatPNG {
		return "", fmt.Errorf("unsupported image format %q", format)
	}
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:]) + "." + format, nil
}

// ValidImageID reports whether s has the form ImageID produces.
func ValidImageID(s string) bool {
	return imageIDRe.MatchString(s)
}

// Format returns the format suffix of a valid image id.
func Format(imageID string) string {
	_, ext, _ := strings.Cut(imageID, ".")
	return ext
}

// DetectFormat sniffs the image format of data.
func DetectFormat(data []byte) (string, error) {
	switch ct := http.DetectContentType(data); ct {
	case "image/jpeg":
		return FormatJPEG, nil
	case "image/png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported image content type %q", ct)
	}
}
