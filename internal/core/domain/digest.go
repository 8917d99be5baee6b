package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// ContentDigest returns the hex-encoded SHA-256 of the given bytes.
// The digest is the document's identity and deduplication key: it
// depends only on content, never on filename or path.
func ContentDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FileDigest digests a file's raw bytes. Manuals are small enough to
// read whole.
func FileDigest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return ContentDigest(data), nil
}
