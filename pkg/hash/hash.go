package hash

import (
	"hash/fnv"
)

// Pair hashes Classifier + Extension for per-component deduplication
func Pair(classifier, extension string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(classifier))
	h.Write([]byte("|"))
	h.Write([]byte(extension))
	return h.Sum64()
}
