package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alanyoungcy/predicthub/internal/domain"
)

// snapshotSource is the part of domain.PriceSnapshotStore the archiver
// needs.
type snapshotSource interface {
	ListBefore(ctx context.Context, before time.Time) ([]domain.PriceSnapshot, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// existsChecker is the part of domain.BlobReader used to skip uploads that
// an earlier run already made.
type existsChecker interface {
	Exists(ctx context.Context, path string) (bool, error)
}

// SnapshotArchiver implements domain.Archiver: it uploads old price
// snapshots as JSONL and then prunes them from the primary store.
type SnapshotArchiver struct {
	writer domain.BlobWriter
	exists existsChecker
	store  snapshotSource
	prune  bool
	// Payloads of at least this many bytes go through PutMultipart.
	multipartAt int64
}

var _ domain.Archiver = (*SnapshotArchiver)(nil)

// NewSnapshotArchiver creates an archiver. exists may be nil, in which case
// every run uploads. When prune is false the archived rows stay in the
// store.
func NewSnapshotArchiver(writer domain.BlobWriter, exists existsChecker, store snapshotSource, prune bool) *SnapshotArchiver {
	return &SnapshotArchiver{
		writer:      writer,
		exists:      exists,
		store:       store,
		prune:       prune,
		multipartAt: minPartSize,
	}
}

// ArchiveSnapshots returns the number of snapshots written. Nothing is
// deleted unless the upload succeeded or the object for this cutoff is
// already in the bucket; in the latter case the count is zero.
func (a *SnapshotArchiver) ArchiveSnapshots(ctx context.Context, before time.Time) (int64, error) {
	snaps, err := a.store.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive snapshots query: %w", err)
	}
	if len(snaps) == 0 {
		return 0, nil
	}

	path := archivePath("price_snapshots", before)
	if a.exists != nil {
		found, err := a.exists.Exists(ctx, path)
		if err != nil {
			return 0, fmt.Errorf("s3blob: archive snapshots exists: %w", err)
		}
		if found {
			return 0, a.pruneBefore(ctx, before)
		}
	}

	buf, err := marshalJSONL(snaps)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive snapshots marshal: %w", err)
	}
	if int64(len(buf)) >= a.multipartAt {
		err = a.writer.PutMultipart(ctx, path, bytes.NewReader(buf), ndjsonContentType, minPartSize)
	} else {
		err = a.writer.Put(ctx, path, bytes.NewReader(buf), ndjsonContentType)
	}
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive snapshots upload: %w", err)
	}

	count := int64(len(snaps))
	return count, a.pruneBefore(ctx, before)
}

func (a *SnapshotArchiver) pruneBefore(ctx context.Context, before time.Time) error {
	if a.prune {
		if _, err := a.store.DeleteBefore(ctx, before); err != nil {
			return fmt.Errorf("s3blob: archive snapshots prune: %w", err)
		}
	}
	return nil
}

const ndjsonContentType = "application/x-ndjson"

// archivePath partitions archives by month, one object per cutoff:
//
//	archive/price_snapshots/2025-01/20250115T000000Z.jsonl
func archivePath(kind string, before time.Time) string {
	before = before.UTC()
	return fmt.Sprintf("archive/%s/%s/%s.jsonl", kind, before.Format("2006-01"), before.Format("20060102T150405Z"))
}

// marshalJSONL encodes one compact JSON document per line.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
