package download

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // maintained fork
)

// verifyChecksum fetches a SHA256 checksum file and checks the archive
// against the line matching its asset name. Checksum files use the common
// "<hex>  <name>" format; a bare single-hash file is also accepted.
func (c *Client) verifyChecksum(ctx context.Context, archivePath, assetName, checksumURL string) error {
	tmp, err := os.CreateTemp("", "getpurs-checksums-*")
	if err != nil {
		return fmt.Errorf("create checksum temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.fetchToFile(ctx, checksumURL, tmpPath); err != nil {
		return fmt.Errorf("download checksums: %w", err)
	}

	expected, err := findChecksum(tmpPath, assetName)
	if err != nil {
		return err
	}

	actual, err := sha256File(archivePath)
	if err != nil {
		return err
	}

	if !strings.EqualFold(expected, actual) {
		return fmt.Errorf("checksum mismatch for %s: expected %s, got %s", assetName, expected, actual)
	}
	return nil
}

// verifySignature fetches a detached GPG signature and verifies the archive
// against the keys in keyringPath. Armored and binary signatures are both
// accepted.
func (c *Client) verifySignature(ctx context.Context, archivePath, sigURL, keyringPath string) error {
	keyringFile, err := os.Open(keyringPath)
	if err != nil {
		return fmt.Errorf("open keyring: %w", err)
	}
	defer keyringFile.Close()

	keyring, err := openpgp.ReadKeyRing(keyringFile)
	if err != nil {
		// Retry as an armored keyring.
		if _, serr := keyringFile.Seek(0, io.SeekStart); serr != nil {
			return fmt.Errorf("rewind keyring: %w", serr)
		}
		keyring, err = openpgp.ReadArmoredKeyRing(keyringFile)
		if err != nil {
			return fmt.Errorf("read keyring: %w", err)
		}
	}

	tmp, err := os.CreateTemp("", "getpurs-signature-*")
	if err != nil {
		return fmt.Errorf("create signature temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.fetchToFile(ctx, sigURL, tmpPath); err != nil {
		return fmt.Errorf("download signature: %w", err)
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	sigFile, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("open signature: %w", err)
	}
	defer sigFile.Close()

	if _, err := openpgp.CheckArmoredDetachedSignature(keyring, archiveFile, sigFile, nil); err == nil {
		return nil
	}

	if _, err := archiveFile.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind archive: %w", err)
	}
	if _, err := sigFile.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind signature: %w", err)
	}

	if _, err := openpgp.CheckDetachedSignature(keyring, archiveFile, sigFile, nil); err != nil {
		return fmt.Errorf("GPG signature check failed: %w", err)
	}
	return nil
}

// findChecksum scans a checksum file for the entry covering assetName.
func findChecksum(path, assetName string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open checksum file: %w", err)
	}
	defer f.Close()

	var bareHash string
	lines := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines++

		fields := strings.Fields(line)
		if len(fields) == 1 {
			bareHash = fields[0]
			continue
		}
		// "<hex>  <name>" or "<hex> *<name>"
		name := strings.TrimPrefix(fields[len(fields)-1], "*")
		if name == assetName {
			return fields[0], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read checksum file: %w", err)
	}

	if lines == 1 && bareHash != "" {
		return bareHash, nil
	}
	return "", fmt.Errorf("no checksum entry for %s", assetName)
}

// sha256File computes the hex SHA256 digest of a file.
func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
