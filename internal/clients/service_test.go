package clients

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

func photo() *uploads.Upload {
	return &uploads.Upload{Filename: "face.jpg", ContentType: "image/jpeg", Size: 4, Body: strings.NewReader("jpeg")}
}

func testimonial(name, designation string) CreateRequest {
	return CreateRequest{Name: name, Description: "Great experience buying with this team.", Designation: designation}
}

func TestCreateClient(t *testing.T) {
	svc, repo, _ := newTestService()

	item, err := svc.Create(context.Background(), CreateRequest{
		Name:        " Rowan Ellis ",
		Description: " Found our dream home. ",
		Designation: " CEO, Foo Inc ",
	}, photo())
	require.NoError(t, err)

	assert.Equal(t, "Rowan Ellis", item.Name)
	assert.Equal(t, "Found our dream home.", item.Description)
	assert.Equal(t, "CEO, Foo Inc", item.Designation)
	assert.NotEmpty(t, item.Image)
	assert.Contains(t, repo.items, item.ID)
}

func TestCreateClientRequiresDesignationAndPhoto(t *testing.T) {
	svc, repo, images := newTestService()

	_, err := svc.Create(context.Background(), testimonial("Rowan", ""), photo())
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "designation is required", verrs["designation"])

	_, err = svc.Create(context.Background(), testimonial("Rowan", "Architect"), nil)
	require.ErrorIs(t, err, ErrImageRequired)

	assert.Empty(t, repo.items)
	assert.Zero(t, images.next)
}

func TestCreateClientCleansUpOnInsertFailure(t *testing.T) {
	svc, repo, images := newTestService()
	repo.createErr = errors.New("primary stepped down")

	_, err := svc.Create(context.Background(), testimonial("Rowan", "Architect"), photo())
	require.Error(t, err)
	assert.Len(t, images.removed, 1)
}

func TestUpdateClientDesignationOnly(t *testing.T) {
	svc, _, images := newTestService()
	created, err := svc.Create(context.Background(), testimonial("Rowan", "Architect"), photo())
	require.NoError(t, err)

	designation := "Lead Architect"
	updated, err := svc.Update(context.Background(), created.ID, UpdateRequest{Designation: &designation}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Lead Architect", updated.Designation)
	assert.Equal(t, created.Name, updated.Name)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.Empty(t, images.removed)
}

func TestUpdateClientPhotoReplacesOldFile(t *testing.T) {
	svc, _, images := newTestService()
	created, err := svc.Create(context.Background(), testimonial("Rowan", "Architect"), photo())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateRequest{}, photo())
	require.NoError(t, err)
	assert.NotEqual(t, created.Image, updated.Image)
	assert.Equal(t, []string{created.Image}, images.removed)
}

func TestUpdateUnknownClientDiscardsNothing(t *testing.T) {
	svc, _, images := newTestService()

	_, err := svc.Update(context.Background(), "6650f0c2a3b4c5d6e7f80912", UpdateRequest{}, photo())
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, images.next)
}

func TestDeleteClient(t *testing.T) {
	svc, _, images := newTestService()
	created, err := svc.Create(context.Background(), testimonial("Rowan", "Architect"), photo())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Equal(t, []string{created.Image}, images.removed)
	require.ErrorIs(t, svc.Delete(context.Background(), created.ID), ErrNotFound)
}

func TestSearchClientsMatchesDesignation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	for _, req := range []CreateRequest{
		testimonial("Ana", "Interior Designer"),
		testimonial("Bo", "Web Designer"),
		testimonial("Cy", "Surveyor"),
	} {
		_, err := svc.Create(ctx, req, photo())
		require.NoError(t, err)
	}

	items, err := svc.Search(ctx, "designer")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Bo", items[0].Name)
	assert.Equal(t, "Ana", items[1].Name)

	_, err = svc.Search(ctx, "")
	require.ErrorIs(t, err, ErrQueryRequired)
}
