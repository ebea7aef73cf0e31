package world

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/annel0/voxel-world/internal/vec"
	"github.com/annel0/voxel-world/internal/world/block"
)

// Формат снимка: zstd-поток, внутри заголовок и последовательность чанков
//
//	magic "VXWS" | version u8 | seed u32 | count u32
//	для каждого чанка: cx i32 | cz i32 | width u32 | height u32 | ids [w*h*w]u8
const (
	snapshotMagic   = "VXWS"
	snapshotVersion = 1
)

// ErrBadSnapshot возвращается при повреждённом или чужом снимке
var ErrBadSnapshot = errors.New("некорректный снимок мира")

// ChunkSnapshot – сетка идентификаторов блоков одного чанка
type ChunkSnapshot struct {
	Coords vec.Vec2
	Size   ChunkSize
	IDs    []block.BlockID
}

// Digest возвращает тот же хеш, что и Chunk.Digest для исходного чанка
func (s ChunkSnapshot) Digest() uint64 {
	d := xxhash.New()

	var hdr [16]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(int32(s.Coords.X)))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(int32(s.Coords.Z)))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(s.Size.Width))
	binary.LittleEndian.PutUint32(hdr[12:], uint32(s.Size.Height))
	_, _ = d.Write(hdr[:])

	buf := make([]byte, len(s.IDs))
	for i, id := range s.IDs {
		buf[i] = byte(id)
	}
	_, _ = d.Write(buf)
	return d.Sum64()
}

// Snapshot снимает копию сетки идентификаторов чанка
func (c *Chunk) Snapshot() ChunkSnapshot {
	return ChunkSnapshot{Coords: c.coords, Size: c.size, IDs: c.BlockIDs()}
}

// WriteSnapshot записывает сгенерированные чанки в w, сжимая zstd.
// Незагруженные чанки пропускаются.
func WriteSnapshot(w io.Writer, seed uint32, chunks []*Chunk) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}

	ready := make([]*Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Loaded() {
			ready = append(ready, c)
		}
	}

	bw := bufio.NewWriter(enc)
	hdr := make([]byte, 0, 13)
	hdr = append(hdr, snapshotMagic...)
	hdr = append(hdr, snapshotVersion)
	hdr = binary.LittleEndian.AppendUint32(hdr, seed)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(len(ready)))
	if _, err := bw.Write(hdr); err != nil {
		enc.Close()
		return err
	}

	for _, c := range ready {
		var ch [16]byte
		binary.LittleEndian.PutUint32(ch[0:], uint32(int32(c.coords.X)))
		binary.LittleEndian.PutUint32(ch[4:], uint32(int32(c.coords.Z)))
		binary.LittleEndian.PutUint32(ch[8:], uint32(c.size.Width))
		binary.LittleEndian.PutUint32(ch[12:], uint32(c.size.Height))
		if _, err := bw.Write(ch[:]); err != nil {
			enc.Close()
			return err
		}
		for _, b := range c.blocks {
			if err := bw.WriteByte(byte(b.ID)); err != nil {
				enc.Close()
				return err
			}
		}
	}

	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

const maxSnapshotPrealloc = 1024

// ReadSnapshot читает снимок, записанный WriteSnapshot
func ReadSnapshot(r io.Reader) (uint32, []ChunkSnapshot, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return 0, nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	br := bufio.NewReader(dec)

	var hdr [13]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return 0, nil, fmt.Errorf("%w: заголовок: %v", ErrBadSnapshot, err)
	}
	if string(hdr[:4]) != snapshotMagic {
		return 0, nil, fmt.Errorf("%w: сигнатура %q", ErrBadSnapshot, hdr[:4])
	}
	if hdr[4] != snapshotVersion {
		return 0, nil, fmt.Errorf("%w: версия %d", ErrBadSnapshot, hdr[4])
	}
	seed := binary.LittleEndian.Uint32(hdr[5:])
	count := binary.LittleEndian.Uint32(hdr[9:])

	// count не проверен, ёмкость растёт по мере чтения
	capHint := count
	if capHint > maxSnapshotPrealloc {
		capHint = maxSnapshotPrealloc
	}
	chunks := make([]ChunkSnapshot, 0, capHint)
	for i := uint32(0); i < count; i++ {
		var ch [16]byte
		if _, err := io.ReadFull(br, ch[:]); err != nil {
			return 0, nil, fmt.Errorf("%w: чанк %d: %v", ErrBadSnapshot, i, err)
		}
		size := ChunkSize{
			Width:  int(binary.LittleEndian.Uint32(ch[8:])),
			Height: int(binary.LittleEndian.Uint32(ch[12:])),
		}
		if size.Width <= 0 || size.Height <= 0 || size.Volume() > 1<<24 {
			return 0, nil, fmt.Errorf("%w: размер чанка %dx%d", ErrBadSnapshot, size.Width, size.Height)
		}

		raw := make([]byte, size.Volume())
		if _, err := io.ReadFull(br, raw); err != nil {
			return 0, nil, fmt.Errorf("%w: блоки чанка %d: %v", ErrBadSnapshot, i, err)
		}
		ids := make([]block.BlockID, len(raw))
		for j, b := range raw {
			ids[j] = block.BlockID(b)
		}

		chunks = append(chunks, ChunkSnapshot{
			Coords: vec.Vec2{
				X: int(int32(binary.LittleEndian.Uint32(ch[0:]))),
				Z: int(int32(binary.LittleEndian.Uint32(ch[4:]))),
			},
			Size: size,
			IDs:  ids,
		})
	}
	return seed, chunks, nil
}

// ReadyChunks возвращает сгенерированные чанки в порядке LoadedChunks
func (w *World) ReadyChunks() []*Chunk {
	coords := w.LoadedChunks()
	chunks := make([]*Chunk, 0, len(coords))
	for _, c := range coords {
		if ch := w.chunks[c]; ch.Loaded() {
			chunks = append(chunks, ch)
		}
	}
	return chunks
}
