package services

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"pricelens/pkg/contracts/domain"
)

const digestChunkSize = 8192

// CacheStats is a snapshot of the coefficient cache counters
type CacheStats struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Failures uint64 `json:"failures"`
	Digests  int    `json:"digests"`
	Entries  int    `json:"entries"`
}

type coefficientKey struct {
	industry string
	product  string
}

// CoefficientCache remembers fitted coefficients together with the digest of
// the file they were fitted from. An entry is served only while the file's
// current digest matches the recorded one. Entries are never evicted.
type CoefficientCache struct {
	mu      sync.RWMutex
	digests map[string]string
	coefs   map[coefficientKey]domain.CoefficientSet
	group   singleflight.Group

	hits     atomic.Uint64
	misses   atomic.Uint64
	failures atomic.Uint64
}

// NewCoefficientCache creates an empty cache
func NewCoefficientCache() *CoefficientCache {
	return &CoefficientCache{
		digests: make(map[string]string),
		coefs:   make(map[coefficientKey]domain.CoefficientSet),
	}
}

// FileDigest returns the hex SHA-256 of the file, read in fixed chunks
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.CopyBuffer(h, f, make([]byte, digestChunkSize)); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// GetOrCompute returns the coefficients for industry/product fitted from the
// file at path. The file is digested on every call; compute runs when no
// digest is recorded for path or it differs from the current one. Concurrent
// misses for the same file contents share one compute call. The returned
// bool reports a cache hit.
func (c *CoefficientCache) GetOrCompute(path, industry, product string, compute func() (domain.CoefficientSet, error)) (domain.CoefficientSet, bool, error) {
	digest, err := FileDigest(path)
	if err != nil {
		return domain.CoefficientSet{}, false, err
	}

	key := coefficientKey{industry: industry, product: product}
	if set, ok := c.lookup(path, key, digest); ok {
		c.hits.Add(1)
		return set, true, nil
	}
	c.misses.Add(1)

	flightKey := industry + "\x00" + product + "\x00" + path + "\x00" + digest
	v, err, _ := c.group.Do(flightKey, func() (interface{}, error) {
		if set, ok := c.lookup(path, key, digest); ok {
			return set, nil
		}

		set, err := compute()
		if err != nil {
			c.failures.Add(1)
			return nil, err
		}

		c.mu.Lock()
		c.coefs[key] = set
		c.digests[path] = digest
		c.mu.Unlock()

		return set, nil
	})
	if err != nil {
		return domain.CoefficientSet{}, false, err
	}

	return v.(domain.CoefficientSet).Clone(), false, nil
}

func (c *CoefficientCache) lookup(path string, key coefficientKey, digest string) (domain.CoefficientSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.digests[path] != digest {
		return domain.CoefficientSet{}, false
	}
	set, ok := c.coefs[key]
	if !ok {
		return domain.CoefficientSet{}, false
	}
	return set.Clone(), true
}

// Stats returns the current counters
func (c *CoefficientCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return CacheStats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Failures: c.failures.Load(),
		Digests:  len(c.digests),
		Entries:  len(c.coefs),
	}
}
