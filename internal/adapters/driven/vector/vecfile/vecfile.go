// Package vecfile reads and writes vector index snapshot files.
//
// A snapshot stores the chunk IDs and their embedding vectors as
// little-endian float32, with an optional trailing centroid block used
// by the IVF index. Snapshots live under the data directory, one file
// per collection.
package vecfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File format constants.
const (
	magic   = "PGVX"
	version = uint32(1)

	// maxIDLen bounds chunk ID length in snapshot entries.
	maxIDLen = 1024
)

// Snapshot is the in-memory form of a vector snapshot file.
type Snapshot struct {
	// Dims is the embedding vector size.
	Dims int

	// IDs holds the chunk IDs, parallel to Vectors.
	IDs []string

	// Vectors holds the embedding vectors.
	Vectors [][]float32

	// Centroids holds the IVF coarse quantizer centroids.
	// Nil for flat snapshots.
	Centroids [][]float32
}

// Write persists a snapshot atomically: the file is written to a
// temporary path and renamed into place.
func Write(path string, s *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := encode(w, s); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("flush snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Read loads a snapshot file. Returns an error wrapping fs.ErrNotExist
// when the file does not exist.
func Read(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	s, err := decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return s, nil
}

func encode(w io.Writer, s *Snapshot) error {
	if _, err := w.Write([]byte(magic)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	header := []uint32{version, uint32(s.Dims), uint32(len(s.IDs))}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, id := range s.IDs {
		if len(id) > maxIDLen {
			return fmt.Errorf("chunk ID too long: %d bytes", len(id))
		}
		if len(s.Vectors[i]) != s.Dims {
			return fmt.Errorf("vector %s has %d dimensions, want %d", id, len(s.Vectors[i]), s.Dims)
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(len(id))); err != nil {
			return fmt.Errorf("write entry: %w", err)
		}
		if _, err := w.Write([]byte(id)); err != nil {
			return fmt.Errorf("write entry: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, s.Vectors[i]); err != nil {
			return fmt.Errorf("write entry: %w", err)
		}
	}

	// Centroid block, present only for IVF snapshots.
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s.Centroids))); err != nil {
		return fmt.Errorf("write centroids: %w", err)
	}
	for _, c := range s.Centroids {
		if len(c) != s.Dims {
			return fmt.Errorf("centroid has %d dimensions, want %d", len(c), s.Dims)
		}
		if err := binary.Write(w, binary.LittleEndian, c); err != nil {
			return fmt.Errorf("write centroids: %w", err)
		}
	}
	return nil
}

func decode(r io.Reader) (*Snapshot, error) {
	head := make([]byte, 4)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(head) != magic {
		return nil, fmt.Errorf("not a vector snapshot (bad magic %q)", head)
	}

	var ver, dims, count uint32
	for _, p := range []*uint32{&ver, &dims, &count} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
	}
	if ver != version {
		return nil, fmt.Errorf("unsupported snapshot version %d", ver)
	}

	s := &Snapshot{
		Dims:    int(dims),
		IDs:     make([]string, 0, count),
		Vectors: make([][]float32, 0, count),
	}

	for i := uint32(0); i < count; i++ {
		var idLen uint16
		if err := binary.Read(r, binary.LittleEndian, &idLen); err != nil {
			return nil, fmt.Errorf("read entry %d: %w", i, err)
		}
		if int(idLen) > maxIDLen {
			return nil, fmt.Errorf("entry %d: chunk ID too long (%d bytes)", i, idLen)
		}
		idBytes := make([]byte, idLen)
		if _, err := io.ReadFull(r, idBytes); err != nil {
			return nil, fmt.Errorf("read entry %d: %w", i, err)
		}
		vec := make([]float32, dims)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return nil, fmt.Errorf("read entry %d: %w", i, err)
		}
		s.IDs = append(s.IDs, string(idBytes))
		s.Vectors = append(s.Vectors, vec)
	}

	var nlist uint32
	if err := binary.Read(r, binary.LittleEndian, &nlist); err != nil {
		// Older writers may omit the centroid block entirely.
		if err == io.EOF {
			return s, nil
		}
		return nil, fmt.Errorf("read centroids: %w", err)
	}
	if nlist > 0 {
		s.Centroids = make([][]float32, 0, nlist)
		for i := uint32(0); i < nlist; i++ {
			c := make([]float32, dims)
			if err := binary.Read(r, binary.LittleEndian, c); err != nil {
				return nil, fmt.Errorf("read centroid %d: %w", i, err)
			}
			s.Centroids = append(s.Centroids, c)
		}
	}
	return s, nil
}
