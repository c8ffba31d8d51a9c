// Copyright 2025 The mpvlink Authors
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"errors"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Estimator derives a bitrate for sources the engine does not measure
// natively. Estimation needs the source duration, so callers must wait until
// it is known.
type Estimator interface {
	Estimate(uri string, duration time.Duration) (int64, error)
}

// FileSizeEstimator computes size*8/duration for local files.
type FileSizeEstimator struct{}

func (FileSizeEstimator) Estimate(uri string, duration time.Duration) (int64, error) {
	if duration <= 0 {
		return 0, errors.New("duration unknown")
	}
	p := uri
	if u, err := url.Parse(uri); err == nil && u.Scheme == "file" {
		p = u.Path
	}
	fi, err := os.Stat(p)
	if err != nil {
		return 0, err
	}
	return int64(float64(fi.Size()*8) / duration.Seconds()), nil
}

// BitrateCache maps normalized source identifiers to bitrates. First write
// wins and entries never expire; the zero of all this is deliberate, the
// cache lives as long as the process.
type BitrateCache struct {
	mu     sync.RWMutex
	values map[string]int64
	group  singleflight.Group
}

func NewBitrateCache() *BitrateCache {
	return &BitrateCache{values: make(map[string]int64)}
}

// DefaultBitrateCache is the process-wide instance shared by players that are
// not handed their own.
var DefaultBitrateCache = NewBitrateCache()

// NormalizeSourceID strips the query and fragment from a source identifier:
// they vary between requests (tokens, session IDs) without changing the
// underlying media.
func NormalizeSourceID(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// GetOrCompute returns the cached bitrate for uri's normalized identifier,
// running compute at most once per key across concurrent callers.
func (c *BitrateCache) GetOrCompute(uri string, compute func() (int64, error)) (int64, error) {
	key := NormalizeSourceID(uri)

	c.mu.RLock()
	v, ok := c.values[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	res, err, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		v, ok := c.values[key]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return int64(0), err
		}
		c.mu.Lock()
		if prev, ok := c.values[key]; ok {
			v = prev
		} else {
			c.values[key] = v
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return 0, err
	}
	return res.(int64), nil
}

// bitrateReportedNatively reports whether the engine's audio-bitrate property
// is trustworthy for this source kind. Lossless and Vorbis-family local
// containers come through as 0 or garbage, those go through the fallback
// estimation instead.
func bitrateReportedNatively(uri string) bool {
	switch strings.ToLower(path.Ext(NormalizeSourceID(uri))) {
	case ".flac", ".ogg", ".oga", ".opus", ".wav", ".aiff", ".alac":
		return false
	}
	return true
}
