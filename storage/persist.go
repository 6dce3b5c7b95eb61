package storage

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"

	"github.com/golang/snappy"
	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

var magic = [4]byte{'c', 'd', 'b', 'g'}

const formatVersion = 1

// Kind identifies which Storage variant a persisted file holds.
type Kind byte

// The Kind values, also used as the on-disk kind byte.
const (
	KindBit Kind = iota + 1
	KindByte
	KindNibble
	KindQF
	KindHashSet
)

// RawTables is implemented by the probabilistic Storage variants, which
// expose their backing tables as flat byte slices so Save/Load can
// serialize and restore them without caring about the internal bit/
// nibble/word packing of any one variant.
type RawTables interface {
	Storage
	Kind() Kind
	RawTables() [][]byte
	LoadRawTables(tables [][]byte) error
}

func putUint64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
func getUint64(b []byte) uint64    { return binary.LittleEndian.Uint64(b) }

func errInvalidTableCount(got, want int) error {
	return errors.Errorf("storage: table count mismatch: got %d, want %d", got, want)
}

func errInvalidTableSize(table, got, want int) error {
	return errors.Errorf("storage: table %d size mismatch: got %d bytes, want %d", table, got, want)
}

// Save writes a probabilistic Storage's snapshot to path — a local path
// or any scheme grailbio/base/file's registered implementations support
// (e.g. an S3 URL) — in a fixed layout: a 4-byte magic, 1-byte
// version, 1-byte kind, 2-byte K, then each table's gzip-compressed
// length-prefixed bytes.
func Save(ctx context.Context, path string, k uint16, s RawTables) (err error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "storage: create %s", path)
	}
	defer func() {
		if cerr := f.Close(ctx); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f.Writer(ctx))
	var hdr [8]byte
	copy(hdr[:4], magic[:])
	hdr[4] = formatVersion
	hdr[5] = byte(s.Kind())
	binary.LittleEndian.PutUint16(hdr[6:], k)
	if _, err = w.Write(hdr[:]); err != nil {
		return errors.Wrap(err, "storage: write header")
	}

	gz := gzip.NewWriter(w)
	tables := s.RawTables()
	var nbuf [4]byte
	binary.LittleEndian.PutUint32(nbuf[:], uint32(len(tables)))
	if _, err = gz.Write(nbuf[:]); err != nil {
		return errors.Wrap(err, "storage: write table count")
	}
	for _, t := range tables {
		var lbuf [8]byte
		putUint64(lbuf[:], uint64(len(t)))
		if _, err = gz.Write(lbuf[:]); err != nil {
			return errors.Wrap(err, "storage: write table length")
		}
		if _, err = gz.Write(t); err != nil {
			return errors.Wrap(err, "storage: write table")
		}
	}
	if err = gz.Close(); err != nil {
		return errors.Wrap(err, "storage: close gzip writer")
	}
	return w.Flush()
}

// Load reads a snapshot written by Save into s, checking that the file's
// kind and K match what the caller expects.
func Load(ctx context.Context, path string, wantK uint16, s RawTables) (err error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "storage: open %s", path)
	}
	defer func() {
		if cerr := f.Close(ctx); err == nil {
			err = cerr
		}
	}()

	r := bufio.NewReader(f.Reader(ctx))
	var hdr [8]byte
	if _, err = io.ReadFull(r, hdr[:]); err != nil {
		return errors.Wrap(err, "storage: read header")
	}
	if hdr[0] != magic[0] || hdr[1] != magic[1] || hdr[2] != magic[2] || hdr[3] != magic[3] {
		return errors.Wrap(ErrFileFormat, "bad magic")
	}
	if hdr[4] != formatVersion {
		return errors.Wrapf(ErrFileFormat, "unsupported version %d", hdr[4])
	}
	if Kind(hdr[5]) != s.Kind() {
		return errors.Wrapf(ErrFileFormat, "kind mismatch: file has %d, want %d", hdr[5], s.Kind())
	}
	if gotK := binary.LittleEndian.Uint16(hdr[6:]); gotK != wantK {
		return errors.Wrapf(ErrFileFormat, "K mismatch: file has %d, want %d", gotK, wantK)
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		return errors.Wrap(err, "storage: open gzip reader")
	}
	defer gz.Close()

	var nbuf [4]byte
	if _, err = io.ReadFull(gz, nbuf[:]); err != nil {
		return errors.Wrap(err, "storage: read table count")
	}
	n := binary.LittleEndian.Uint32(nbuf[:])
	tables := make([][]byte, n)
	for i := range tables {
		var lbuf [8]byte
		if _, err = io.ReadFull(gz, lbuf[:]); err != nil {
			return errors.Wrap(err, "storage: read table length")
		}
		buf := make([]byte, getUint64(lbuf[:]))
		if _, err = io.ReadFull(gz, buf); err != nil {
			return errors.Wrap(err, "storage: read table")
		}
		tables[i] = buf
	}
	return s.LoadRawTables(tables)
}

// SaveExact writes a HashSetStorage's hash list to path, snappy-compressed
// rather than gzipped: the payload is already a dense list of
// high-entropy 64-bit values, where snappy's lighter CPU cost per byte
// suits the larger exact-storage files better than gzip's. Grounded on
// encoding/bampair/disk_mate_shard.go's use of
// snappy.NewBufferedWriter/snappy.NewReader for shard I/O.
func SaveExact(ctx context.Context, path string, k uint16, s *HashSetStorage) (err error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "storage: create %s", path)
	}
	defer func() {
		if cerr := f.Close(ctx); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f.Writer(ctx))
	var hdr [8]byte
	copy(hdr[:4], magic[:])
	hdr[4] = formatVersion
	hdr[5] = byte(KindHashSet)
	binary.LittleEndian.PutUint16(hdr[6:], k)
	if _, err = w.Write(hdr[:]); err != nil {
		return errors.Wrap(err, "storage: write header")
	}

	sw := snappy.NewBufferedWriter(w)
	hashes := s.AllHashes()
	var cbuf [8]byte
	putUint64(cbuf[:], uint64(len(hashes)))
	if _, err = sw.Write(cbuf[:]); err != nil {
		return errors.Wrap(err, "storage: write hash count")
	}
	buf := make([]byte, 8*len(hashes))
	for i, h := range hashes {
		putUint64(buf[i*8:], h)
	}
	if _, err = sw.Write(buf); err != nil {
		return errors.Wrap(err, "storage: write hashes")
	}
	if err = sw.Close(); err != nil {
		return errors.Wrap(err, "storage: close snappy writer")
	}
	return w.Flush()
}

// LoadExact reads a snapshot written by SaveExact into s.
func LoadExact(ctx context.Context, path string, wantK uint16, s *HashSetStorage) (err error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "storage: open %s", path)
	}
	defer func() {
		if cerr := f.Close(ctx); err == nil {
			err = cerr
		}
	}()

	r := bufio.NewReader(f.Reader(ctx))
	var hdr [8]byte
	if _, err = io.ReadFull(r, hdr[:]); err != nil {
		return errors.Wrap(err, "storage: read header")
	}
	if hdr[0] != magic[0] || hdr[1] != magic[1] || hdr[2] != magic[2] || hdr[3] != magic[3] {
		return errors.Wrap(ErrFileFormat, "bad magic")
	}
	if hdr[4] != formatVersion {
		return errors.Wrapf(ErrFileFormat, "unsupported version %d", hdr[4])
	}
	if Kind(hdr[5]) != KindHashSet {
		return errors.Wrapf(ErrFileFormat, "kind mismatch: file has %d, want %d", hdr[5], KindHashSet)
	}
	if gotK := binary.LittleEndian.Uint16(hdr[6:]); gotK != wantK {
		return errors.Wrapf(ErrFileFormat, "K mismatch: file has %d, want %d", gotK, wantK)
	}

	sr := snappy.NewReader(r)
	var cbuf [8]byte
	if _, err = io.ReadFull(sr, cbuf[:]); err != nil {
		return errors.Wrap(err, "storage: read hash count")
	}
	n := getUint64(cbuf[:])
	buf := make([]byte, 8*n)
	if _, err = io.ReadFull(sr, buf); err != nil {
		return errors.Wrap(err, "storage: read hashes")
	}
	hashes := make([]uint64, n)
	for i := range hashes {
		hashes[i] = getUint64(buf[i*8:])
	}
	s.LoadHashes(hashes)
	return nil
}
