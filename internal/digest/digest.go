// Package digest computes checksums of an open object by streaming it through
// its file cache one window at a time.
package digest

import (
	"context"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/adler32"
	"hash/crc32"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/wilbur182/lexview/internal/filecache"
)

// Algorithm names a supported checksum.
type Algorithm string

const (
	XXH64   Algorithm = "xxh64"
	CRC32   Algorithm = "crc32"
	Adler32 Algorithm = "adler32"
)

// Algorithms lists every supported algorithm in display order.
var Algorithms = []Algorithm{XXH64, CRC32, Adler32}

// Parse resolves a case-insensitive algorithm name.
func Parse(name string) (Algorithm, error) {
	for _, a := range Algorithms {
		if strings.EqualFold(name, string(a)) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown digest algorithm %q", name)
}

func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case XXH64:
		return xxhash.New(), nil
	case CRC32:
		return crc32.NewIEEE(), nil
	case Adler32:
		return adler32.New(), nil
	}
	return nil, fmt.Errorf("unknown digest algorithm %q", string(a))
}

// Progress is called after each window with the bytes hashed so far.
type Progress func(done, total int64)

// Result is a finished checksum.
type Result struct {
	Algorithm Algorithm
	Size      int64
	Sum       []byte
}

// Hex returns the checksum as lowercase hex.
func (r Result) Hex() string { return hex.EncodeToString(r.Sum) }

func (r Result) String() string {
	return fmt.Sprintf("%s:%s", r.Algorithm, r.Hex())
}

// Compute hashes the whole cached file. Cancellation is checked between
// windows. The cache position is restored afterwards.
func Compute(ctx context.Context, cache *filecache.Cache, alg Algorithm, progress Progress) (Result, error) {
	results, err := computeMany(ctx, cache, []Algorithm{alg}, progress)
	if err != nil {
		return Result{}, err
	}
	return results[0], nil
}

// ComputeAll runs every algorithm over a single pass through the file.
func ComputeAll(ctx context.Context, cache *filecache.Cache) ([]Result, error) {
	return computeMany(ctx, cache, Algorithms, nil)
}

func computeMany(ctx context.Context, cache *filecache.Cache, algs []Algorithm, progress Progress) ([]Result, error) {
	hashes := make([]hash.Hash, len(algs))
	writers := make([]io.Writer, len(algs))
	for i, a := range algs {
		h, err := a.newHash()
		if err != nil {
			return nil, err
		}
		hashes[i], writers[i] = h, h
	}
	w := io.MultiWriter(writers...)

	saved := cache.Pos()
	defer cache.SetPos(saved)

	size := cache.Size()
	stride := cache.Capacity()
	for off := int64(0); off < size; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		view, err := cache.Get(off, stride)
		if err != nil {
			return nil, fmt.Errorf("digest at %d: %w", off, err)
		}
		if _, err := w.Write(view); err != nil {
			return nil, fmt.Errorf("digest at %d: %w", off, err)
		}
		off += int64(len(view))
		if progress != nil {
			progress(off, size)
		}
	}

	results := make([]Result, len(algs))
	for i, a := range algs {
		results[i] = Result{Algorithm: a, Size: size, Sum: hashes[i].Sum(nil)}
	}
	return results, nil
}
