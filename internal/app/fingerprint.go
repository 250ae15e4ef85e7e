package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/xavion03/openings-tierlist/internal/domain"
)

// Fingerprint computes the content digest of a watch-list: entries are
// sorted by id (order-insensitive comparison), serialized canonically and
// hashed. Equality of digests means equality of content for change
// detection purposes; the digest is opaque otherwise.
func Fingerprint(entries []domain.WatchlistEntry) string {
	canon := make([]domain.WatchlistEntry, len(entries))
	copy(canon, entries)
	sort.Slice(canon, func(i, j int) bool {
		if canon[i].ID != canon[j].ID {
			return canon[i].ID < canon[j].ID
		}
		return canon[i].Title < canon[j].Title
	})

	// json.Marshal d'une struct est déterministe (ordre des champs fixe).
	b, err := json.Marshal(canon)
	if err != nil {
		// Unreachable for these types; keep the digest stable anyway.
		b = []byte{}
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Changed reports whether the new digest supersedes the old one. An absent
// old digest counts as changed so the first pass populates everything.
func Changed(oldDigest, newDigest string) bool {
	return oldDigest == "" || oldDigest != newDigest
}
