package report

import (
	"strconv"

	"github.com/gosimple/slug"
)

// Filename builds "<org>-<year>-<document>" with each part slugified, e.g.
// Filename("Kerho ry", 2024, "Tase erittelyin") is "kerho-ry-2024-tase-erittelyin".
func Filename(org string, year int, document string) string {
	name := slug.Make(document)
	if year > 0 {
		name = strconv.Itoa(year) + "-" + name
	}
	if s := slug.Make(org); s != "" {
		name = s + "-" + name
	}
	return name
}
