package fileutil

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// HashChunkSize is the read size used when streaming file content into the
// digest.
const HashChunkSize = 64 * 1024

// HashAlgorithm names the digest produced by HashFile and HashReader.
const HashAlgorithm = "blake3"

// HashFile returns the hex-encoded BLAKE3-256 digest of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()

	digest, err := HashReader(f)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return digest, nil
}

// HashReader folds r into a BLAKE3 digest in HashChunkSize reads. The result
// depends only on the bytes read, not on how the reader splits them.
func HashReader(r io.Reader) (string, error) {
	hasher := blake3.New()
	buf := make([]byte, HashChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			_, _ = hasher.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
