package automatic

import (
	"bufio"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash"
	"lukechampine.com/frand"
)

const seedFileHeader = "# threes episode seeds, base64 url encoding, 32 bytes each\n"

// GenerateSeeds returns n fresh 32-byte seeds.
func GenerateSeeds(n int) [][32]byte {
	seeds := make([][32]byte, n)
	for i := range seeds {
		copy(seeds[i][:], frand.Bytes(32))
	}
	return seeds
}

// DeriveSeed deterministically mixes a base seed with a stream number and
// an index, so workers and episodes get unrelated seeds from one base.
func DeriveSeed(base [32]byte, stream, index uint64) [32]byte {
	var buf [32 + 8 + 8 + 1]byte
	copy(buf[:32], base[:])
	binary.LittleEndian.PutUint64(buf[32:], stream)
	binary.LittleEndian.PutUint64(buf[40:], index)
	var out [32]byte
	for w := 0; w < 4; w++ {
		buf[48] = byte(w)
		binary.LittleEndian.PutUint64(out[w*8:], xxhash.Sum64(buf[:]))
	}
	return out
}

// WriteSeeds writes one base64 seed per line after a comment header.
func WriteSeeds(w io.Writer, seeds [][32]byte) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(seedFileHeader); err != nil {
		return err
	}
	for i := range seeds {
		if _, err := bw.WriteString(base64.RawURLEncoding.EncodeToString(seeds[i][:]) + "\n"); err != nil {
			return fmt.Errorf("writing seed %d: %w", i, err)
		}
	}
	return bw.Flush()
}

func SaveSeeds(seeds [][32]byte, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating seed file: %w", err)
	}
	if err := WriteSeeds(f, seeds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadSeeds parses a seed file. Blank lines and # comments are skipped;
// padded standard base64 is accepted as well as the raw url form.
func ReadSeeds(r io.Reader) ([][32]byte, error) {
	var seeds [][32]byte
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		raw, err := base64.RawURLEncoding.DecodeString(text)
		if err != nil {
			raw, err = base64.StdEncoding.DecodeString(text)
			if err != nil {
				return nil, fmt.Errorf("seed on line %d: %w", line, err)
			}
		}
		if len(raw) != 32 {
			return nil, fmt.Errorf("seed on line %d has %d bytes, want 32", line, len(raw))
		}
		var s [32]byte
		copy(s[:], raw)
		seeds = append(seeds, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading seeds: %w", err)
	}
	return seeds, nil
}

func LoadSeeds(path string) ([][32]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()
	return ReadSeeds(f)
}
