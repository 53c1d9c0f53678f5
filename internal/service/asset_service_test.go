package service

import (
	"context"
	"testing"

	"animal-nexus-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAssetRepo() *fakeAssetRepo {
	repo := &fakeAssetRepo{}
	_ = repo.Create(&model.Asset{PublicID: "images/cow-1", ResourceType: "image", FileName: "cow.jpg"})
	_ = repo.Create(&model.Asset{PublicID: "pdfs/manual-2", ResourceType: "raw", FileName: "manual.pdf"})
	return repo
}

// TestListAssets 验证列表应答最新的在前。
func TestListAssets(t *testing.T) {
	repo := seedAssetRepo()
	svc := NewAssetService(repo, &fakeMedia{})

	assets, err := svc.ListAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "pdfs/manual-2", assets[0].PublicID)
	assert.Equal(t, "images/cow-1", assets[1].PublicID)
}

// TestDeleteAsset 验证先删托管端再删记录，且携带记录中的资源类型。
func TestDeleteAsset(t *testing.T) {
	repo := seedAssetRepo()
	media := &fakeMedia{}
	svc := NewAssetService(repo, media)

	err := svc.DeleteAsset(context.Background(), "pdfs/manual-2")
	require.NoError(t, err)

	require.Len(t, media.destroyed, 1)
	assert.Equal(t, [2]string{"pdfs/manual-2", "raw"}, media.destroyed[0])

	_, err = repo.FindByPublicID("pdfs/manual-2")
	assert.Error(t, err, "记录应已删除")
}

// TestDeleteAsset_NotFound 验证不存在的标识归入 ErrAssetNotFound，且不触碰托管端。
func TestDeleteAsset_NotFound(t *testing.T) {
	media := &fakeMedia{}
	svc := NewAssetService(seedAssetRepo(), media)

	err := svc.DeleteAsset(context.Background(), "images/nope")
	assert.ErrorIs(t, err, ErrAssetNotFound)
	assert.Empty(t, media.destroyed)
}

// TestDeleteAsset_DestroyFailureKeepsRecord 验证托管端删除失败时保留本地记录。
func TestDeleteAsset_DestroyFailureKeepsRecord(t *testing.T) {
	repo := seedAssetRepo()
	media := &fakeMedia{destroyErr: assert.AnError}
	svc := NewAssetService(repo, media)

	err := svc.DeleteAsset(context.Background(), "images/cow-1")
	require.Error(t, err)

	record, findErr := repo.FindByPublicID("images/cow-1")
	require.NoError(t, findErr)
	assert.Equal(t, "cow.jpg", record.FileName)
}
