package scraper

import (
	"crypto/md5"
	"encoding/hex"
)

// ExternalID derives the stable dedupe key for a listing from its absolute
// URL and normalized title. The digest covers both inputs, so a title edit
// on the source site produces a new logical listing. MD5 is fine here: this
// is a dedupe key, not a security boundary.
func ExternalID(url, title string) string {
	sum := md5.Sum([]byte(url + ":" + title))
	return hex.EncodeToString(sum[:])
}
