package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/room-reservation/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
	switch remain := cw.limit - cw.size; {
	case cw.limit <= 0 || int64(len(b)) <= remain:
		cw.buf.Write(b)
	case remain > 0:
		cw.buf.Write(b[:remain])
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// ResponseCache stores successful GET responses of the registry listings.
// Entries live in Redis when a client is configured and in process memory
// otherwise.  Writes to rooms, buildings or reservations call Purge.
//
// Keys carry a generation number that Purge bumps, so a response computed
// before a purge is filed under a generation no later request reads.
type ResponseCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
	mem *gocache.Cache
	gen atomic.Uint64 // in-memory generation; Redis keeps it under genKey
}

// NewResponseCache builds the cache.  rdb may be nil.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	rc := &ResponseCache{cfg: cfg, rdb: rdb}
	if rdb == nil {
		rc.mem = gocache.New(cfg.TTL, cfg.CleanupInterval)
	}
	return rc
}

func (rc *ResponseCache) genKey() string { return rc.cfg.Prefix + ":gen" }

// generation returns the current cache generation.  A Redis error reads as
// ok=false and the request bypasses the cache.
func (rc *ResponseCache) generation(ctx context.Context) (uint64, bool) {
	if rc.rdb == nil {
		return rc.gen.Load(), true
	}
	n, err := rc.rdb.Get(ctx, rc.genKey()).Uint64()
	if err == redis.Nil {
		return 0, true
	}
	return n, err == nil
}

// Build a stable cache key honoring prefix/strategy.
func (rc *ResponseCache) key(c echo.Context, gen uint64) string {
	r := c.Request()
	method := r.Method
	route := c.Path()
	query := r.URL.RawQuery

	parts := []string{rc.cfg.Prefix}
	switch strings.ToLower(rc.cfg.KeyStrategy) {
	case "route":
		parts = append(parts, "route", route)
	case "method_route":
		parts = append(parts, "method", method, "route", route)
	case "method_route_query":
		parts = append(parts, "method", method, "route", route, "q", query)
	default: // "route_query"
		parts = append(parts, "route", route, "q", query)
	}
	// the concrete path distinguishes /rooms/1 from /rooms/2 under one route
	parts = append(parts, "p", r.URL.Path)

	tail := strings.Join(parts[1:], ":")
	sum := sha1.Sum([]byte(tail))
	return fmt.Sprintf("%s:%d:%x", parts[0], gen, sum[:])
}

func (rc *ResponseCache) get(ctx context.Context, key string) ([]byte, bool) {
	if rc.rdb != nil {
		bs, err := rc.rdb.Get(ctx, key).Bytes()
		return bs, err == nil
	}
	v, ok := rc.mem.Get(key)
	if !ok {
		return nil, false
	}
	bs, ok := v.([]byte)
	return bs, ok
}

func (rc *ResponseCache) set(key string, payload []byte) {
	if rc.rdb != nil {
		_ = rc.rdb.SetEx(context.Background(), key, payload, rc.cfg.TTL).Err()
		return
	}
	rc.mem.Set(key, payload, rc.cfg.TTL)
}

// Purge starts a new generation and drops every cached response.
func (rc *ResponseCache) Purge(ctx context.Context) error {
	if rc.rdb == nil {
		rc.gen.Add(1)
		rc.mem.Flush()
		return nil
	}
	if err := rc.rdb.Incr(ctx, rc.genKey()).Err(); err != nil {
		return err
	}
	iter := rc.rdb.Scan(ctx, 0, rc.cfg.Prefix+":*", 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		if k := iter.Val(); k != rc.genKey() {
			keys = append(keys, k)
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return rc.rdb.Del(ctx, keys...).Err()
}

// Middleware serves hits and records misses.  Headers and body are stored
// so clients see the identical response.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
	if !rc.cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	maxBody := int64(rc.cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rc.cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			gen, ok := rc.generation(c.Request().Context())
			if !ok {
				return next(c)
			}
			key := rc.key(c, gen)

			if bs, ok := rc.get(c.Request().Context(), key); ok {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, "Content-Length") {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					if len(body) > 0 {
						_, _ = c.Response().Write(body)
					}
					return nil
				}
			}

			// Miss: capture
			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
				return nil
			}
			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
				rc.set(key, payload)
			}
			return nil
		}
	}
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	hdr := make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, hdr, bs[8+hlen:], true
}
