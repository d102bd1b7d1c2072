package automatic

import (
	"bufio"
	"encoding/base64"
	"os"
	"strings"

	"github.com/pkg/errors"
	"lukechampine.com/frand"
)

// GenerateSeeds creates n random 32-byte seeds, one per game.
func GenerateSeeds(n int) ([][32]byte, error) {
	if n < 0 {
		return nil, errors.Errorf("cannot generate %d seeds", n)
	}
	seeds := make([][32]byte, n)
	for i := range seeds {
		frand.Read(seeds[i][:])
	}
	return seeds, nil
}

// SaveSeeds writes seeds to path, one URL-safe base64 seed per line. The
// format matches the rand-seed setting so any game can be replayed alone.
func SaveSeeds(seeds [][32]byte, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating seed file")
	}
	w := bufio.NewWriter(file)
	w.WriteString("# game seeds, base64 URL-safe, 32 bytes each\n")
	for _, seed := range seeds {
		w.WriteString(base64.RawURLEncoding.EncodeToString(seed[:]))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return errors.Wrap(err, "writing seed file")
	}
	return file.Close()
}

// LoadSeeds reads a file written by SaveSeeds. Blank lines and lines
// starting with # are skipped.
func LoadSeeds(path string) ([][32]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening seed file")
	}
	defer file.Close()

	var seeds [][32]byte
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(line, "="))
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
		if len(decoded) != 32 {
			return nil, errors.Errorf("line %d: seed is %d bytes, expected 32", lineNum, len(decoded))
		}
		var seed [32]byte
		copy(seed[:], decoded)
		seeds = append(seeds, seed)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading seed file")
	}
	return seeds, nil
}
