package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"yad2_tracker/internal/listing"
	"yad2_tracker/internal/listing/esutil"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// BatchSource pages through the persisted seen set.
type BatchSource interface {
	FindAllForSync(ctx context.Context, offset, limit int) ([]listing.SeenListing, error)
}

// SyncResult counts documents written and rejected by a Sync.
type SyncResult struct {
	Synced int
	Failed int
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string                 `json:"_id"`
			Status int                    `json:"status"`
			Error  map[string]interface{} `json:"error,omitempty"`
		} `json:"index"`
	} `json:"items"`
}

// Sync rebuilds the mirror from src using the bulk API, batchSize rows at a
// time. refresh is passed through as the bulk refresh policy. A failed batch
// is counted and skipped; an error is returned only when src fails or when
// any document could not be written.
func (ix *Indexer) Sync(ctx context.Context, src BatchSource, batchSize int, refresh string) (SyncResult, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	log := ix.logger.With(zap.Int("batch_size", batchSize))
	log.Info("Starting search mirror sync")

	var result SyncResult
	for offset, batch := 0, 1; ; batch++ {
		rows, err := src.FindAllForSync(ctx, offset, batchSize)
		if err != nil {
			return result, fmt.Errorf("fetch batch %d: %w", batch, err)
		}
		if len(rows) == 0 {
			break
		}
		offset += len(rows)

		body, ids := ix.bulkBody(rows, &result)
		if len(ids) == 0 {
			continue
		}

		synced, failed := ix.sendBulk(ctx, body, refresh, batch)
		if synced+failed < len(ids) {
			failed = len(ids) - synced
		}
		result.Synced += synced
		result.Failed += failed
		log.Debug("Batch processed", zap.Int("batch", batch), zap.Int("synced", synced), zap.Int("failed", failed))
	}

	log.Info("Search mirror sync finished", zap.Int("synced", result.Synced), zap.Int("failed", result.Failed))
	if result.Failed > 0 {
		return result, fmt.Errorf("%d listings failed to sync", result.Failed)
	}
	return result, nil
}

func (ix *Indexer) bulkBody(rows []listing.SeenListing, result *SyncResult) (string, []string) {
	indexedAt := ix.now().UTC()
	var b strings.Builder
	ids := make([]string, 0, len(rows))
	for i := range rows {
		l := rows[i].ToListing()
		doc, err := esutil.ListingToElasticsearchDoc(&l, indexedAt)
		if err != nil {
			ix.logger.Warn("Skipping listing that cannot be converted", zap.String("listing_id", l.ID), zap.Error(err))
			result.Failed++
			continue
		}
		fmt.Fprintf(&b, `{"index":{"_index":%q,"_id":%q}}`+"\n", ix.index, l.ID)
		b.WriteString(doc)
		b.WriteString("\n")
		ids = append(ids, l.ID)
	}
	return b.String(), ids
}

func (ix *Indexer) sendBulk(ctx context.Context, body, refresh string, batch int) (synced, failed int) {
	res, err := esapi.BulkRequest{
		Body:    strings.NewReader(body),
		Refresh: refresh,
	}.Do(ctx, ix.client.Client)
	if err != nil {
		ix.logger.Error("Bulk request failed", zap.Int("batch", batch), zap.Error(err))
		return 0, 0
	}
	defer res.Body.Close()

	if res.IsError() {
		ix.logger.Error("Bulk request rejected",
			zap.Int("batch", batch),
			zap.String("status", res.Status()),
			zap.Any("error_details", decodeError(res)),
		)
		return 0, 0
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		ix.logger.Error("Failed to parse bulk response", zap.Int("batch", batch), zap.Error(err))
		return 0, 0
	}
	for _, item := range parsed.Items {
		if item.Index.Error != nil {
			ix.logger.Warn("Document rejected by bulk request",
				zap.String("listing_id", item.Index.ID),
				zap.Int("status", item.Index.Status),
				zap.Any("error", item.Index.Error),
			)
			failed++
			continue
		}
		synced++
	}
	return synced, failed
}
