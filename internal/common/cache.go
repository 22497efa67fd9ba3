package common

import (
	"encoding/hex"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

type Cache struct {
	*cache.Cache
}

func NewCache(expirationTime, cleanupTime time.Duration) *Cache {
	return &Cache{cache.New(expirationTime, cleanupTime)}
}

func (c *Cache) Set(key string, value interface{}, expiration ...time.Duration) {
	if len(expiration) > 0 {
		c.Cache.Set(key, value, expiration[0])
		return
	}
	c.Cache.Set(key, value, cache.DefaultExpiration)
}

// Add stores value only if key is absent or expired. It reports whether the value was stored.
func (c *Cache) Add(key string, value interface{}, expiration ...time.Duration) bool {
	d := cache.DefaultExpiration
	if len(expiration) > 0 {
		d = expiration[0]
	}
	return c.Cache.Add(key, value, d) == nil
}

// Hit counts one request against the window stored at key and returns the running count with the
// time the window ends. A missing or expired window starts a new one lasting window.
func (c *Cache) Hit(key string, window time.Duration) (int, time.Time) {
	if c.Cache.Add(key, 1, window) == nil {
		return 1, time.Now().Add(window)
	}

	n, err := c.Cache.IncrementInt(key, 1)
	if err != nil {
		// The window expired between Add and IncrementInt.
		c.Cache.Set(key, 1, window)
		return 1, time.Now().Add(window)
	}

	_, expiry, _ := c.Cache.GetWithExpiration(key)
	return n, expiry
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.Cache.Get(key)
}

func (c *Cache) Delete(key string) {
	c.Cache.Delete(key)
}

func (c *Cache) Flush() {
	c.Cache.Flush()
}

func CacheKeyPostHTML(id int64) string {
	return "post_html:" + strconv.FormatInt(id, 10)
}

func CacheKeyRateLimit(ip string) string {
	return "rate_limit:" + ip
}

func CacheKeySession(tokenHash []byte) string {
	return "session:" + hex.EncodeToString(tokenHash)
}
