package elasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"yad2_tracker/internal/listing"
	"yad2_tracker/internal/listing/esutil"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const SeenListingsIndexName = "seen_listings"

func defineSeenListingsMapping() (string, error) {
	keyword := map[string]interface{}{"type": "keyword"}
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title":         map[string]interface{}{"type": "text"},
				"address":       map[string]interface{}{"type": "text"},
				"price":         keyword,
				"seller_kind":   keyword,
				"link":          keyword,
				"tags":          keyword,
				"image_url":     map[string]interface{}{"type": "keyword", "index": false},
				"discovered_at": map[string]interface{}{"type": "date"},
				"indexed_at":    map[string]interface{}{"type": "date"},
			},
		},
	}
	mappingBytes, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling seen listings mapping to JSON: %w", err)
	}
	return string(mappingBytes), nil
}

// CreateSeenListingsIndexIfNotExists creates the mirror index with its mapping
// if it does not already exist.
func CreateSeenListingsIndexIfNotExists(ctx context.Context, client *ESClientWrapper, logger *zap.Logger) error {
	log := logger.Named("elasticsearch_index_setup")

	res, err := esapi.IndicesExistsRequest{Index: []string{SeenListingsIndexName}}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error checking if seen listings index exists: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		log.Debug("Seen listings index already exists", zap.String("index_name", SeenListingsIndexName))
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("error checking if seen listings index exists: status %s", res.Status())
	}

	mappingJSON, err := defineSeenListingsMapping()
	if err != nil {
		return err
	}

	createRes, err := esapi.IndicesCreateRequest{
		Index: SeenListingsIndexName,
		Body:  strings.NewReader(mappingJSON),
	}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error creating seen listings index %s: %w", SeenListingsIndexName, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		log.Error("Failed to create seen listings index",
			zap.String("status", createRes.Status()),
			zap.Any("error_details", decodeError(createRes)),
		)
		return fmt.Errorf("failed to create seen listings index %s: status %s", SeenListingsIndexName, createRes.Status())
	}

	log.Info("Seen listings index created successfully", zap.String("index_name", SeenListingsIndexName))
	return nil
}

// Indexer mirrors newly discovered listings into Elasticsearch.
type Indexer struct {
	client *ESClientWrapper
	index  string
	now    func() time.Time
	logger *zap.Logger
}

// NewIndexer returns nil when the mirror is disabled, which the tracker treats
// as "no indexer".
func NewIndexer(client *ESClientWrapper, logger *zap.Logger) *Indexer {
	if client == nil {
		return nil
	}
	return &Indexer{
		client: client,
		index:  SeenListingsIndexName,
		now:    time.Now,
		logger: logger.Named("elasticsearch_indexer"),
	}
}

// Index writes one document per listing keyed by the listing ID, so indexing
// the same listing twice overwrites rather than duplicates. Individual failures
// are joined and returned after every listing has been attempted.
func (ix *Indexer) Index(ctx context.Context, listings []listing.Listing) error {
	indexedAt := ix.now().UTC()
	var errs []error
	for i := range listings {
		l := &listings[i]
		doc, err := esutil.ListingToElasticsearchDoc(l, indexedAt)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		res, err := esapi.IndexRequest{
			Index:      ix.index,
			DocumentID: l.ID,
			Body:       strings.NewReader(doc),
		}.Do(ctx, ix.client.Client)
		if err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", l.ID, err))
			continue
		}
		if res.IsError() {
			errs = append(errs, fmt.Errorf("index %s: status %s", l.ID, res.Status()))
		}
		res.Body.Close()
	}

	if len(errs) > 0 {
		ix.logger.Warn("Some listings were not mirrored", zap.Int("failed", len(errs)), zap.Int("total", len(listings)))
	}
	return errors.Join(errs...)
}
