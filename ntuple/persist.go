package ntuple

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

// A weights file is little-endian: a uint32 count of tables, then for each
// table in pattern order a uint64 entry count followed by that many
// float32 weights in index order.

var (
	ErrTableCountMismatch = errors.New("stored table count does not match network")
	ErrTableSizeMismatch  = errors.New("stored table size does not match pattern")
)

// Save writes every table to w.
func (n *Network) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(n.tables))); err != nil {
		return err
	}
	for _, t := range n.tables {
		if err := binary.Write(bw, binary.LittleEndian, uint64(len(t))); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, t); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load replaces the network's weights with those read from r. The stored
// layout has to match the network's patterns exactly. Tables are decoded
// into fresh memory and swapped in only once the whole file has been read,
// so after an error the network is unchanged.
func (n *Network) Load(r io.Reader) error {
	br := bufio.NewReader(r)
	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("reading table count: %w", err)
	}
	if int(count) != len(n.tables) {
		return fmt.Errorf("%w: file has %d, network has %d",
			ErrTableCountMismatch, count, len(n.tables))
	}
	tables := make([][]float32, len(n.tables))
	for i, t := range n.tables {
		var size uint64
		if err := binary.Read(br, binary.LittleEndian, &size); err != nil {
			return fmt.Errorf("reading size of table %d: %w", i, err)
		}
		if size != uint64(len(t)) {
			return fmt.Errorf("%w: table %d has %d entries, pattern %v needs %d",
				ErrTableSizeMismatch, i, size, n.patterns[i], len(t))
		}
		tables[i] = make([]float32, size)
		if err := binary.Read(br, binary.LittleEndian, tables[i]); err != nil {
			return fmt.Errorf("reading table %d: %w", i, err)
		}
	}
	n.tables = tables
	return nil
}

// SaveFile writes the network to a file, truncating it.
func (n *Network) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := n.Save(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info().Str("path", path).Int("tables", len(n.tables)).Msg("weights-saved")
	return nil
}

// LoadFile reads weights saved by SaveFile.
func (n *Network) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := n.Load(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	log.Info().Str("path", path).Int("tables", len(n.tables)).Msg("weights-loaded")
	return nil
}
