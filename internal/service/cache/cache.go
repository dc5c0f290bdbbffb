package cache

import "time"

// BytesCache stores raw byte payloads with a per-key TTL. It backs the
// pattern endpoint response cache so repeated requests for the same
// ticker and date skip the detector pipeline.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
