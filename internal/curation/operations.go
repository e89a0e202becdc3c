package curation

import (
	"context"

	"gallery-delivery-api/pkg/lambda"
)

// RestoredAsset is one entry of a restore acknowledgment
type RestoredAsset struct {
	AssetID    string `json:"assetId"`
	RestoredAt int64  `json:"restoredAt"`
}

// RestoreResult acknowledges a restore command
type RestoreResult struct {
	GalleryID string          `json:"galleryId"`
	Restored  []RestoredAsset `json:"restored"`
}

// FinalizedSet is the selection locked by a finalize command
type FinalizedSet struct {
	AssetIDs    []string `json:"assetIds"`
	FinalizedAt int64    `json:"finalizedAt"`
}

// FinalizeResult acknowledges a finalize command
type FinalizeResult struct {
	GalleryID string       `json:"galleryId"`
	FolderID  string       `json:"folderId"`
	Finalized FinalizedSet `json:"finalized"`
}

// DeleteItemsResult acknowledges removal of assets from a folder. The assets
// are marked removed; their prior existence is not verified.
type DeleteItemsResult struct {
	GalleryID string   `json:"galleryId"`
	FolderID  string   `json:"folderId"`
	Removed   []string `json:"removed"`
}

// TrashedAsset is one entry of a trash acknowledgment
type TrashedAsset struct {
	AssetID   string `json:"assetId"`
	TrashedAt int64  `json:"trashedAt"`
	TTLDays   int    `json:"ttlDays"`
}

// TrashResult acknowledges a trash command
type TrashResult struct {
	GalleryID string         `json:"galleryId"`
	Trashed   []TrashedAsset `json:"trashed"`
}

// HealthResult is the liveness payload
type HealthResult struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}

func (a *API) health(ctx context.Context, req *lambda.Request) (interface{}, error) {
	return HealthResult{OK: true, Service: "vip"}, nil
}

func (a *API) restore(ctx context.Context, req *lambda.Request) (interface{}, error) {
	galleryID := pathIDOrUnknown(req.PathParams, "galleryId")

	parsed := ParseBody(req)
	fields, ok := parsed.OK()
	if !ok {
		return nil, parsed.Err()
	}

	assetIDs, verr := requireAssetIDs(fields)
	if verr != nil {
		return nil, verr
	}

	now := a.now()
	restored := make([]RestoredAsset, len(assetIDs))
	for i, id := range assetIDs {
		restored[i] = RestoredAsset{AssetID: id, RestoredAt: now}
	}

	effect := Effect{Operation: OpRestore, GalleryID: galleryID, AssetIDs: assetIDs, At: now}
	if err := a.record(ctx, effect); err != nil {
		return nil, err
	}

	return RestoreResult{GalleryID: galleryID, Restored: restored}, nil
}

func (a *API) finalize(ctx context.Context, req *lambda.Request) (interface{}, error) {
	galleryID := pathIDOrUnknown(req.PathParams, "galleryId")

	parsed := ParseBody(req)
	fields, ok := parsed.OK()
	if !ok {
		return nil, parsed.Err()
	}

	// folderId is checked before assetIds
	if !isNonEmptyString(fields["folderId"]) {
		return nil, validationError("`folderId` must be a non-empty string", nil)
	}
	folderID := fields["folderId"].(string)

	assetIDs, verr := requireAssetIDs(fields)
	if verr != nil {
		return nil, verr
	}

	now := a.now()
	effect := Effect{Operation: OpFinalize, GalleryID: galleryID, FolderID: folderID, AssetIDs: assetIDs, At: now}
	if err := a.record(ctx, effect); err != nil {
		return nil, err
	}

	return FinalizeResult{
		GalleryID: galleryID,
		FolderID:  folderID,
		Finalized: FinalizedSet{AssetIDs: assetIDs, FinalizedAt: now},
	}, nil
}

func (a *API) deleteItems(ctx context.Context, req *lambda.Request) (interface{}, error) {
	galleryID := pathIDOrUnknown(req.PathParams, "galleryId")
	folderID := pathIDOrUnknown(req.PathParams, "folderId")

	parsed := ParseBody(req)
	fields, ok := parsed.OK()
	if !ok {
		return nil, parsed.Err()
	}

	assetIDs, verr := requireAssetIDs(fields)
	if verr != nil {
		return nil, verr
	}

	effect := Effect{Operation: OpDeleteItems, GalleryID: galleryID, FolderID: folderID, AssetIDs: assetIDs, At: a.now()}
	if err := a.record(ctx, effect); err != nil {
		return nil, err
	}

	return DeleteItemsResult{GalleryID: galleryID, FolderID: folderID, Removed: assetIDs}, nil
}

func (a *API) trash(ctx context.Context, req *lambda.Request) (interface{}, error) {
	galleryID := pathIDOrUnknown(req.PathParams, "galleryId")

	parsed := ParseBody(req)
	fields, ok := parsed.OK()
	if !ok {
		return nil, parsed.Err()
	}

	assetIDs, verr := requireAssetIDs(fields)
	if verr != nil {
		return nil, verr
	}

	ttlDays, verr := coerceTTLDays(fields)
	if verr != nil {
		return nil, verr
	}

	now := a.now()
	trashed := make([]TrashedAsset, len(assetIDs))
	for i, id := range assetIDs {
		trashed[i] = TrashedAsset{AssetID: id, TrashedAt: now, TTLDays: ttlDays}
	}

	effect := Effect{Operation: OpTrash, GalleryID: galleryID, AssetIDs: assetIDs, TTLDays: ttlDays, At: now}
	if err := a.record(ctx, effect); err != nil {
		return nil, err
	}

	return TrashResult{GalleryID: galleryID, Trashed: trashed}, nil
}
