package esutil

import (
	"encoding/json"
	"testing"
	"time"

	"yad2_tracker/internal/listing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingToElasticsearchDoc(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	l := &listing.Listing{
		ID:           "abc123",
		Title:        "Apartment, 3 rooms, 80 sqm",
		Address:      "Herzl 10, Tel Aviv",
		Price:        "5,500 ₪",
		SellerKind:   listing.SellerPrivate,
		Link:         "https://www.yad2.co.il/item/abc123",
		Tags:         []string{"renovated"},
		DiscoveredAt: at,
	}

	raw, err := ListingToElasticsearchDoc(l, at)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "Apartment, 3 rooms, 80 sqm", doc["title"])
	assert.Equal(t, "private", doc["seller_kind"])
	assert.Equal(t, []interface{}{"renovated"}, doc["tags"])
	assert.NotContains(t, doc, "image_url")
}

func TestListingToElasticsearchDoc_Invalid(t *testing.T) {
	_, err := ListingToElasticsearchDoc(nil, time.Now())
	assert.Error(t, err)

	_, err = ListingToElasticsearchDoc(&listing.Listing{}, time.Now())
	assert.Error(t, err)
}
