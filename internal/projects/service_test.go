package projects

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-backend/internal/uploads"
	"realestate-backend/internal/validation"
)

func newTestService() (*Service, *memoryRepo, *fakeImages) {
	repo := newMemoryRepo()
	images := &fakeImages{}
	svc := NewService(repo, images, validation.New(), time.UTC)
	svc.now = steppedClock()
	return svc, repo, images
}

func someImage() *uploads.Upload {
	return &uploads.Upload{Filename: "a.png", ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}
}

func strptr(s string) *string { return &s }

func TestCreateTrimsAndStoresImage(t *testing.T) {
	svc, repo, _ := newTestService()

	item, err := svc.Create(context.Background(), CreateRequest{Name: "  Sky Villa ", Description: " Sea view "}, someImage())
	require.NoError(t, err)

	assert.Len(t, item.ID, 24)
	assert.Equal(t, "Sky Villa", item.Name)
	assert.Equal(t, "Sea view", item.Description)
	assert.True(t, strings.HasSuffix(item.Image, "-cropped.jpg"))
	assert.Equal(t, item.CreatedAt, item.UpdatedAt)
	assert.Len(t, repo.items, 1)
}

func TestCreateValidation(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateRequest{Name: "   ", Description: strings.Repeat("d", 501)}, someImage())
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "name is required", verrs["name"])
	assert.Equal(t, "description cannot exceed 500 characters", verrs["description"])
	assert.Empty(t, repo.items)
}

func TestCreateRequiresImage(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateRequest{Name: "A", Description: "B"}, nil)
	require.ErrorIs(t, err, ErrImageRequired)
	assert.Empty(t, repo.items)
}

func TestCreateRemovesImageWhenInsertFails(t *testing.T) {
	svc, repo, images := newTestService()
	repo.createErr = errors.New("write failed")

	_, err := svc.Create(context.Background(), CreateRequest{Name: "A", Description: "B"}, someImage())
	require.Error(t, err)
	require.Len(t, images.removed, 1)
	assert.True(t, strings.HasSuffix(images.removed[0], "-cropped.jpg"))
}

func TestCreatePropagatesPipelineErrors(t *testing.T) {
	svc, _, images := newTestService()
	images.err = uploads.ErrUnsupportedMediaType

	_, err := svc.Create(context.Background(), CreateRequest{Name: "A", Description: "B"}, someImage())
	require.ErrorIs(t, err, uploads.ErrUnsupportedMediaType)
}

func TestUpdateMergesSuppliedFields(t *testing.T) {
	svc, _, images := newTestService()
	created, err := svc.Create(context.Background(), CreateRequest{Name: "A", Description: "B"}, someImage())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateRequest{Description: strptr(" New ")}, nil)
	require.NoError(t, err)

	assert.Equal(t, "A", updated.Name)
	assert.Equal(t, "New", updated.Description)
	assert.Equal(t, created.Image, updated.Image)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.Empty(t, images.removed)
}

func TestUpdateReplacesImage(t *testing.T) {
	svc, _, images := newTestService()
	created, err := svc.Create(context.Background(), CreateRequest{Name: "A", Description: "B"}, someImage())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateRequest{}, someImage())
	require.NoError(t, err)

	assert.NotEqual(t, created.Image, updated.Image)
	assert.Equal(t, []string{created.Image}, images.removed)
}

func TestUpdateBlankFieldIsIgnored(t *testing.T) {
	svc, _, _ := newTestService()
	created, err := svc.Create(context.Background(), CreateRequest{Name: "A", Description: "B"}, someImage())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateRequest{Name: strptr("   ")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "A", updated.Name)
}

func TestUpdateUnknownID(t *testing.T) {
	svc, _, images := newTestService()

	_, err := svc.Update(context.Background(), "missing", UpdateRequest{Name: strptr("x")}, someImage())
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, images.removed)
}

func TestUpdateValidatesSuppliedFields(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Update(context.Background(), "any", UpdateRequest{Name: strptr(strings.Repeat("n", 101))}, nil)
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "name")
}

func TestDeleteRemovesImage(t *testing.T) {
	svc, repo, images := newTestService()
	created, err := svc.Create(context.Background(), CreateRequest{Name: "A", Description: "B"}, someImage())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Empty(t, repo.items)
	assert.Equal(t, []string{created.Image}, images.removed)

	require.ErrorIs(t, svc.Delete(context.Background(), created.ID), ErrNotFound)
}

func TestSearch(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Create(ctx, CreateRequest{Name: "Harbour Lofts", Description: "Modern"}, someImage())
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateRequest{Name: "Hill House", Description: "Close to the harbour"}, someImage())
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateRequest{Name: "Garden", Description: "Quiet"}, someImage())
	require.NoError(t, err)

	items, err := svc.Search(ctx, "  HARBOUR ")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Hill House", items[0].Name)

	_, err = svc.Search(ctx, "  ")
	require.ErrorIs(t, err, ErrQueryRequired)
}
