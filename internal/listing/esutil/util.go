package esutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"yad2_tracker/internal/listing"
)

// ListingToElasticsearchDoc converts a freshly discovered listing to its search
// mirror document. indexedAt is stored alongside so the mirror can be pruned
// the same way the seen set is.
func ListingToElasticsearchDoc(l *listing.Listing, indexedAt time.Time) (string, error) {
	if l == nil {
		return "", errors.New("listing cannot be nil")
	}
	if l.ID == "" {
		return "", errors.New("listing id cannot be empty")
	}

	doc := map[string]interface{}{
		"title":         l.Title,
		"address":       l.Address,
		"price":         l.Price,
		"seller_kind":   string(l.SellerKind),
		"link":          l.Link,
		"discovered_at": l.DiscoveredAt,
		"indexed_at":    indexedAt,
	}
	if len(l.Tags) > 0 {
		doc["tags"] = l.Tags
	}
	if l.ImageURL != "" {
		doc["image_url"] = l.ImageURL
	}

	docBytes, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("error marshalling listing to JSON for ES: %w", err)
	}
	return string(docBytes), nil
}
