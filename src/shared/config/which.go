package config

import (
	"os/exec"

	"github.com/cockroachdb/errors"
)

func FindBin(bin string) (string, error) {
	binPath, err := exec.LookPath(bin)
	if err != nil {
		return "", errors.Wrapf(err, "Failed to find %s", bin)
	}

	return binPath, nil
}

// BinOrDefault resolves bin on the PATH, and otherwise leaves it as is so the
// capability probe can report it as missing.
func BinOrDefault(bin string) string {
	binPath, err := FindBin(bin)
	if err != nil {
		return bin
	}

	return binPath
}
