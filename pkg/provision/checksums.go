package provision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"janusops/pkg/remote"
)

// checksumsEqual reports whether the local file and the remote file have the
// same sha256. A missing file on either side is never equal.
func checksumsEqual(ctx context.Context, ex remote.Executor, local, dest string) (bool, error) {
	localCS, err := checksumForFile(local)
	if err != nil {
		return false, err
	}

	remoteCS := remoteChecksum(ctx, ex, dest)

	if localCS == "" || remoteCS == "" {
		return false, nil
	}

	return localCS == remoteCS, nil
}

func checksumForFile(filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func remoteChecksum(ctx context.Context, ex remote.Executor, path string) string {
	out, err := ex.Run(ctx, "sha256sum "+remote.ShellQuote(path))
	if err != nil {
		return ""
	}

	fields := strings.Fields(out)
	if len(fields) == 0 {
		return ""
	}

	return fields[0]
}
