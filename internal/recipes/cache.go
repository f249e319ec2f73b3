package recipes

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"cuisinehub/pkg/models"
)

const catalogCacheTTL = 5 * time.Minute

// Cache is an optional Redis read-through layer on the catalog listing.
// A nil *Cache (or nil client) is valid and degrades to direct repo
// reads, so the server runs fine without Redis.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

type cachedListing struct {
	Items []models.Recipe `json:"items"`
	Total int             `json:"total"`
}

func (c *Cache) getListing(ctx context.Context, key string) (*cachedListing, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("recipes cache get: %v", err)
		}
		return nil, false
	}
	var listing cachedListing
	if err := json.Unmarshal([]byte(raw), &listing); err != nil {
		return nil, false
	}
	return &listing, true
}

func (c *Cache) setListing(ctx context.Context, key string, listing cachedListing) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(listing)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, catalogCacheTTL).Err(); err != nil {
		log.Printf("recipes cache set: %v", err)
	}
}

func listingKey(f ListFilter) string {
	return fmt.Sprintf("recipes:list:q=%s:c=%s:cat=%d:s=%s:l=%d:o=%d",
		f.Query, f.Country, f.CategoryID, f.Sort, f.Limit, f.Offset)
}
