package pipeline

import (
	"strings"

	"certmail/internal/util"
)

// FindMatchingFile picks the certificate for a participant. A non-empty id is
// tried first as a literal substring of each file stem; otherwise, or when no
// stem carries the id, the normalized name is searched for in the normalized
// stems. If that strict pass misses, the name is compared once more with
// punctuation such as hyphens dropped from both sides. Files are scanned in
// order and the first hit wins. Short names can match the wrong file; that is
// accepted.
func FindMatchingFile(files []string, id, name string) (string, bool) {
	if id = strings.TrimSpace(id); id != "" {
		for _, f := range files {
			if strings.Contains(util.FileStem(f), id) {
				return f, true
			}
		}
	}

	key := util.NormalizeName(name)
	if key == "" {
		return "", false
	}
	for _, f := range files {
		if strings.Contains(util.NormalizeName(util.FileStem(f)), key) {
			return f, true
		}
	}

	loose := util.LooseKey(name)
	if loose == "" {
		return "", false
	}
	for _, f := range files {
		if strings.Contains(util.LooseKey(util.FileStem(f)), loose) {
			return f, true
		}
	}
	return "", false
}
