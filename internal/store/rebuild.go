// Package store provides the rebuild procedure that repopulates record
// stores from the blob backend. Record state in the Memory class is a
// cache: only blob bytes are durable there, so a restarted process replays
// the backend manifest to recover its records.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/factvault/factvault/internal/blob"
	"github.com/factvault/factvault/internal/model"
)

// RebuildFromBackend replays every blob the backend enumerates into the
// record stores. Blob payloads carry a kind envelope written at store
// time, so facts and comments can be told apart. Payloads that are not
// envelopes are skipped: the backend may hold blobs written by other
// tools.
//
// Returns the number of records restored.
func RebuildFromBackend(ctx context.Context, backend blob.Store, stores *Stores, log *logrus.Logger) (int, error) {
	enum, ok := backend.(blob.Enumerator)
	if !ok {
		return 0, fmt.Errorf("backend does not support enumeration")
	}

	restored := 0
	for _, id := range enum.ManifestIDs() {
		payload, err := backend.Retrieve(ctx, id)
		if err != nil {
			return restored, fmt.Errorf("retrieving blob %s: %w", id, err)
		}

		var env model.BlobEnvelope
		if err := json.Unmarshal(payload, &env); err != nil || env.Kind == "" {
			continue
		}

		switch env.Kind {
		case model.KindFact:
			var fact model.Fact
			if err := json.Unmarshal(env.Payload, &fact); err != nil {
				log.WithFields(logrus.Fields{"blob_id": id}).
					Warn("skipping malformed fact blob during rebuild")
				continue
			}
			fact.BlobID = id
			// Later blobs for the same fact id overwrite earlier ones;
			// manifest order is the replay order.
			if err := stores.Facts.Upsert(model.StoredFactRecord{
				Fact:   fact,
				BlobID: id,
				BlobMetadata: model.BlobMetadata{
					BlobID: id,
					Size:   int64(len(payload)),
				},
			}); err != nil {
				return restored, fmt.Errorf("restoring fact %s: %w", fact.ID, err)
			}
			restored++
		case model.KindComment:
			var comment model.ContextComment
			if err := json.Unmarshal(env.Payload, &comment); err != nil {
				log.WithFields(logrus.Fields{"blob_id": id}).
					Warn("skipping malformed comment blob during rebuild")
				continue
			}
			if err := stores.Comments.Upsert(model.StoredCommentRecord{
				Comment: comment,
				BlobID:  id,
				BlobMetadata: model.BlobMetadata{
					BlobID: id,
					Size:   int64(len(payload)),
				},
			}); err != nil {
				return restored, fmt.Errorf("restoring comment %s: %w", comment.ID, err)
			}
			restored++
		}
	}

	log.WithFields(logrus.Fields{"records": restored}).Info("record stores rebuilt from backend")
	return restored, nil
}
