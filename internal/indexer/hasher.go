// Package indexer provides content hashing and date mining used by the
// index coordinator to detect changes and enrich documents.
package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// hashBufSize keeps memory flat while hashing large files.
const hashBufSize = 64 * 1024

// HashFile returns the hex SHA-256 digest of the file contents,
// streaming so large files never load fully into memory.
func HashFile(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, hashBufSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", filePath, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// FileChanged reports whether the file's current contents differ from
// the stored hash. An empty stored hash always counts as changed.
func FileChanged(filePath, storedHash string) (bool, error) {
	if storedHash == "" {
		return true, nil
	}
	current, err := HashFile(filePath)
	if err != nil {
		return false, err
	}
	return current != storedHash, nil
}
