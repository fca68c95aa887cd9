// SPDX-License-Identifier: GPL-2.0-or-later

// Package wad implements the outer WAD container: header, directory, lump
// read/write, map detection, and the insertion-point discipline new lumps
// must obey. It is the surface every other package in this module produces
// its output through.
package wad

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/thanhpk/randstr"
)

// Errors returned by this package. Callers should use errors.Is against
// these sentinels rather than matching strings.
var (
	ErrBadFile  = errors.New("wad: corrupt or truncated file")
	ErrReadOnly = errors.New("wad: file is not open for writing")
	ErrNotOpen  = errors.New("wad: container is not open")
)

const (
	headerSize    = 12
	direntSize    = 16
	lumpNameBytes = 8
)

// Lump is one named entry held in memory. Offset/size on disk are
// recomputed at EndWrite time; only Name and Data matter in between.
type Lump struct {
	Name string
	Data []byte
}

// Container is a mutable, in-memory view of a WAD file's directory and lump
// bodies. It is always opened from an existing file in read-write mode; a
// read-only descriptor is rejected by Open.
type Container struct {
	path    string
	file    *os.File
	iwad    bool
	lumps   []Lump
	levels  []levelInfo
	writing bool

	insertAt int // index used by the next AddLump call; -1 means append
}

// Open opens an existing WAD file for mutation ("append" mode per
// spec.md §4.1). The file must already exist and be writable.
func Open(path string) (*Container, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("%w: %q: %v", ErrReadOnly, path, err)
		}
		return nil, fmt.Errorf("wad: open %q: %w", path, err)
	}

	c := &Container{
		path:     path,
		file:     f,
		insertAt: -1,
	}

	if err := c.readAll(); err != nil {
		f.Close()
		return nil, err
	}

	c.detectLevels()

	return c, nil
}

func (c *Container) readAll() error {
	info, err := c.file.Stat()
	if err != nil {
		return fmt.Errorf("wad: stat: %w", err)
	}
	if info.Size() < headerSize {
		return fmt.Errorf("%w: file shorter than header", ErrBadFile)
	}

	var hdr struct {
		Magic    [4]byte
		NumLumps int32
		DirOfs   int32
	}

	if _, err := c.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("wad: seek: %w", err)
	}
	if err := binary.Read(c.file, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("%w: header: %v", ErrBadFile, err)
	}

	magic := string(hdr.Magic[:])
	switch magic {
	case "IWAD":
		c.iwad = true
	case "PWAD":
		c.iwad = false
	default:
		return fmt.Errorf("%w: bad magic %q", ErrBadFile, magic)
	}

	if hdr.NumLumps < 0 || hdr.DirOfs < 0 {
		return fmt.Errorf("%w: negative directory fields", ErrBadFile)
	}

	if _, err := c.file.Seek(int64(hdr.DirOfs), io.SeekStart); err != nil {
		return fmt.Errorf("%w: seeking to directory: %v", ErrBadFile, err)
	}

	type dirent struct {
		Pos  int32
		Size int32
		Name [lumpNameBytes]byte
	}

	c.lumps = make([]Lump, 0, hdr.NumLumps)
	for i := int32(0); i < hdr.NumLumps; i++ {
		var de dirent
		if err := binary.Read(c.file, binary.LittleEndian, &de); err != nil {
			return fmt.Errorf("%w: directory entry %d: %v", ErrBadFile, i, err)
		}
		if de.Pos < 0 || de.Size < 0 {
			return fmt.Errorf("%w: negative lump fields at entry %d", ErrBadFile, i)
		}

		name, err := decodeName(de.Name)
		if err != nil {
			return fmt.Errorf("%w: entry %d: %v", ErrBadFile, i, err)
		}

		data := make([]byte, de.Size)
		if de.Size > 0 {
			if _, err := c.file.ReadAt(data, int64(de.Pos)); err != nil {
				return fmt.Errorf("%w: truncated lump %q: %v", ErrBadFile, name, err)
			}
		}

		c.lumps = append(c.lumps, Lump{Name: name, Data: data})
	}

	return nil
}

func decodeName(raw [lumpNameBytes]byte) (string, error) {
	n := lumpNameBytes
	for i, b := range raw {
		if b == 0 {
			n = i
			break
		}
		if b < 0x20 || b > 0x7e {
			return "", fmt.Errorf("non-printable byte in lump name")
		}
	}
	return string(raw[:n]), nil
}

func encodeName(name string) ([lumpNameBytes]byte, error) {
	var out [lumpNameBytes]byte
	if len(name) > lumpNameBytes {
		return out, fmt.Errorf("lump name %q longer than %d bytes", name, lumpNameBytes)
	}
	for _, r := range name {
		if r < 0x20 || r > 0x7e {
			return out, fmt.Errorf("non-printable byte in lump name %q", name)
		}
	}
	copy(out[:], name)
	return out, nil
}

// NumLumps returns the number of lumps currently held in memory.
func (c *Container) NumLumps() int { return len(c.lumps) }

// LumpName returns the name of lump i.
func (c *Container) LumpName(i int) string { return c.lumps[i].Name }

// LumpData returns the body of lump i. Callers must not retain a reference
// across a RecreateLump/AddLump/RemoveLump call on the same container.
func (c *Container) LumpData(i int) []byte { return c.lumps[i].Data }

// FindLump returns the index of the first lump named name at or after
// start, or -1 if there is none.
func (c *Container) FindLump(start int, name string) int {
	for i := start; i < len(c.lumps); i++ {
		if c.lumps[i].Name == name {
			return i
		}
	}
	return -1
}

// InsertPoint sets the index at which the next AddLump call will insert.
// A negative value resets to "append at the end".
func (c *Container) InsertPoint(i int) {
	c.insertAt = i
}

// AddLump inserts a new, empty lump at the current insert point (or at the
// end, if none was set) and returns its index. The insert point, if set,
// advances past the newly inserted lump so consecutive AddLump calls
// preserve relative order.
func (c *Container) AddLump(name string) (int, error) {
	if c.file == nil {
		return 0, ErrNotOpen
	}
	if _, err := encodeName(name); err != nil {
		return 0, err
	}

	idx := c.insertAt
	if idx < 0 || idx > len(c.lumps) {
		idx = len(c.lumps)
	}

	c.lumps = append(c.lumps, Lump{})
	copy(c.lumps[idx+1:], c.lumps[idx:])
	c.lumps[idx] = Lump{Name: name}

	if c.insertAt >= 0 {
		c.insertAt = idx + 1
	}

	c.shiftLevelsAfterInsert(idx)

	return idx, nil
}

// RemoveLump deletes the lump at index i.
func (c *Container) RemoveLump(i int) {
	c.lumps = append(c.lumps[:i], c.lumps[i+1:]...)
	c.shiftLevelsAfterRemove(i)
}

// RecreateLump clears lump i's buffer and reserves capacity for up to
// maxSize bytes (spec.md §4.1). It returns a Writer scoped to that lump.
func (c *Container) RecreateLump(i int, maxSize int) *Writer {
	c.lumps[i].Data = make([]byte, 0, maxSize)
	return &Writer{container: c, index: i, buf: bytes.NewBuffer(c.lumps[i].Data)}
}

// Writer accumulates bytes for a single lump; Finish commits the buffer as
// the lump's new body.
type Writer struct {
	container *Container
	index     int
	buf       *bytes.Buffer
}

// Write appends p to the writer's buffer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

// Finish commits the accumulated buffer as the lump's new body.
func (w *Writer) Finish() {
	w.container.lumps[w.index].Data = append([]byte(nil), w.buf.Bytes()...)
}

// BeginWrite brackets a batch of mutation; in this implementation mutation
// is always accumulated in memory, so BeginWrite only guards against
// nesting.
func (c *Container) BeginWrite() error {
	if c.writing {
		return errors.New("wad: BeginWrite called while already writing")
	}
	c.writing = true
	return nil
}

// EndWrite writes the directory and all lump bodies to disk exactly once.
// It writes to a temporary sibling file and renames it over the original so
// that a crash mid-write cannot leave a half-written WAD in place; the
// random suffix keeps concurrent builds of different WADs from colliding.
func (c *Container) EndWrite() error {
	if !c.writing {
		return errors.New("wad: EndWrite called without BeginWrite")
	}
	c.writing = false

	tmpPath := c.path + ".tmp-" + randstr.Hex(6)
	tmp, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("wad: creating scratch file: %w", err)
	}

	if err := c.writeTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("wad: closing scratch file: %w", err)
	}

	if err := c.file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("wad: closing original file: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("wad: replacing original file: %w", err)
	}

	f, err := os.OpenFile(c.path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("wad: reopening file: %w", err)
	}
	c.file = f

	return nil
}

func (c *Container) writeTo(w io.WriteSeeker) error {
	magic := "PWAD"
	if c.iwad {
		magic = "IWAD"
	}

	offsets := make([]int32, len(c.lumps))
	offset := int32(headerSize)

	if _, err := w.Seek(int64(headerSize), io.SeekStart); err != nil {
		return err
	}

	for i, l := range c.lumps {
		offsets[i] = offset
		if len(l.Data) > 0 {
			n, err := w.Write(l.Data)
			if err != nil {
				return fmt.Errorf("wad: writing lump %q: %w", l.Name, err)
			}
			offset += int32(n)
		}
	}

	dirOfs := offset

	for i, l := range c.lumps {
		name, err := encodeName(l.Name)
		if err != nil {
			return err
		}
		var de struct {
			Pos  int32
			Size int32
			Name [lumpNameBytes]byte
		}
		de.Pos = offsets[i]
		de.Size = int32(len(l.Data))
		de.Name = name
		if err := binary.Write(w, binary.LittleEndian, &de); err != nil {
			return fmt.Errorf("wad: writing directory entry %d: %w", i, err)
		}
	}

	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	var hdr struct {
		Magic    [4]byte
		NumLumps int32
		DirOfs   int32
	}
	copy(hdr.Magic[:], magic)
	hdr.NumLumps = int32(len(c.lumps))
	hdr.DirOfs = dirOfs
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("wad: writing header: %w", err)
	}

	return nil
}

// Close closes the underlying file handle without writing anything further.
func (c *Container) Close() error {
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}
