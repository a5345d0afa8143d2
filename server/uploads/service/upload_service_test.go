package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	projectsvc "reno_server/server/projects/service"
	"reno_server/server/uploads/domain"
)

const testBaseURL = "http://localhost:9000/reno-photos/"

// fakeObjectStore signs nothing; it fabricates presigned URLs and lets
// tests decide whether an object "exists".
type fakeObjectStore struct {
	objects map[string]struct{}
}

func (f *fakeObjectStore) PresignedPutObject(_ context.Context, bucket, objectKey string, expires time.Duration) (*url.URL, error) {
	raw := fmt.Sprintf("http://localhost:9000/%s/%s?X-Amz-Expires=%d&X-Amz-Signature=fake", bucket, objectKey, int(expires.Seconds()))
	return url.Parse(raw)
}

func (f *fakeObjectStore) StatObject(_ context.Context, _, objectKey string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if _, ok := f.objects[objectKey]; !ok {
		return minio.ObjectInfo{}, errors.New("object not found")
	}
	return minio.ObjectInfo{Key: objectKey}, nil
}

type fakeRecorder struct {
	existing map[string]struct{} // "owner/project"
	photos   map[string]string   // "owner/project/category/space/shot" -> url
}

func newFakeRecorder(keys ...string) *fakeRecorder {
	existing := map[string]struct{}{}
	for _, key := range keys {
		existing[key] = struct{}{}
	}
	return &fakeRecorder{existing: existing, photos: map[string]string{}}
}

func (f *fakeRecorder) ProjectExists(_ context.Context, ownerID, projectID string) error {
	if _, ok := f.existing[ownerID+"/"+projectID]; !ok {
		return projectsvc.ErrNotFound
	}
	return nil
}

func (f *fakeRecorder) RecordPhotoReference(_ context.Context, ownerID, projectID, category, spaceID, shotID, imageURL string) error {
	f.photos[strings.Join([]string{ownerID, projectID, category, spaceID, shotID}, "/")] = imageURL
	return nil
}

func newTestService(t *testing.T, cfg Config) (*UploadService, *fakeObjectStore, *fakeRecorder, *GrantTracker) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := &fakeObjectStore{objects: map[string]struct{}{}}
	recorder := newFakeRecorder("u1/PROJ-1")
	tracker := NewGrantTracker(client)

	cfg.Bucket = "reno-photos"
	cfg.PublicBaseURL = testBaseURL
	return NewUploadService(store, recorder, tracker, cfg), store, recorder, tracker
}

func TestCreateGrant_Scenario(t *testing.T) {
	svc, _, _, tracker := newTestService(t, Config{})
	ctx := context.Background()

	grant, err := svc.CreateGrant(ctx, "u1", "PROJ-1", "before", "living", "living_front", "image/jpeg")
	require.NoError(t, err)

	assert.NotEmpty(t, grant.UploadURL)
	assert.NotEmpty(t, grant.ImageURL)
	assert.NotEmpty(t, grant.ObjectKey)
	assert.NotEmpty(t, grant.ID)

	// The read URL is the public prefix plus the object key, nothing else.
	assert.Equal(t, testBaseURL+grant.ObjectKey, grant.ImageURL)
	assert.Contains(t, grant.ObjectKey, "projects/u1/PROJ-1/before/living/living_front_")
	assert.True(t, strings.HasSuffix(grant.ObjectKey, ".jpg"))
	assert.WithinDuration(t, time.Now().Add(GrantTTL), grant.ExpiresAt, 5*time.Second)

	stored, found, err := tracker.Consume(ctx, "u1", grant.ObjectKey)
	require.NoError(t, err)
	require.True(t, found, "issued grant must be tracked")
	assert.Equal(t, grant.ID, stored.ID)
}

func TestCreateGrant_ContentTypeExtension(t *testing.T) {
	svc, _, _, _ := newTestService(t, Config{})
	ctx := context.Background()

	cases := map[string]string{
		"image/png":                ".png",
		"image/webp":               ".webp",
		"application/octet-stream": ".jpg", // unknown types fall back
	}
	for contentType, ext := range cases {
		grant, err := svc.CreateGrant(ctx, "u1", "PROJ-1", "after", "living", "shot", contentType)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(grant.ObjectKey, ext), "%s -> %s", contentType, grant.ObjectKey)
	}
}

func TestCreateGrant_Validation(t *testing.T) {
	svc, _, _, _ := newTestService(t, Config{})
	ctx := context.Background()

	_, err := svc.CreateGrant(ctx, "u1", "PROJ-1", "during", "living", "shot", "image/jpeg")
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = svc.CreateGrant(ctx, "u1", "PROJ-1", "before", "", "shot", "image/jpeg")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.CreateGrant(ctx, "u1", "PROJ-unknown", "before", "living", "shot", "image/jpeg")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestCommit_RecordsReference(t *testing.T) {
	svc, _, recorder, _ := newTestService(t, Config{})
	ctx := context.Background()

	grant, err := svc.CreateGrant(ctx, "u1", "PROJ-1", "after", "living", "living_front", "image/jpeg")
	require.NoError(t, err)

	imageURL, err := svc.Commit(ctx, "u1", "PROJ-1", domain.CommitRequest{
		ImageURL: grant.ImageURL,
		Category: "after",
		SpaceID:  "living",
		ShotID:   "living_front",
	})
	require.NoError(t, err)
	assert.Equal(t, grant.ImageURL, imageURL)
	assert.Equal(t, grant.ImageURL, recorder.photos["u1/PROJ-1/after/living/living_front"])
}

func TestCommit_TwiceSameFinalState(t *testing.T) {
	svc, _, recorder, _ := newTestService(t, Config{})
	ctx := context.Background()

	grant, err := svc.CreateGrant(ctx, "u1", "PROJ-1", "after", "living", "living_front", "image/jpeg")
	require.NoError(t, err)

	req := domain.CommitRequest{ImageURL: grant.ImageURL, Category: "after", SpaceID: "living", ShotID: "living_front"}
	_, err = svc.Commit(ctx, "u1", "PROJ-1", req)
	require.NoError(t, err)
	// Second commit: the grant is spent, but without RequireGrant the
	// commit stays an upsert and the store ends in the same state.
	_, err = svc.Commit(ctx, "u1", "PROJ-1", req)
	require.NoError(t, err)

	assert.Len(t, recorder.photos, 1)
	assert.Equal(t, grant.ImageURL, recorder.photos["u1/PROJ-1/after/living/living_front"])
}

func TestCommit_RequireGrant(t *testing.T) {
	svc, _, _, _ := newTestService(t, Config{RequireGrant: true})
	ctx := context.Background()

	grant, err := svc.CreateGrant(ctx, "u1", "PROJ-1", "after", "living", "living_front", "image/jpeg")
	require.NoError(t, err)

	req := domain.CommitRequest{ImageURL: grant.ImageURL, Category: "after", SpaceID: "living", ShotID: "living_front"}
	_, err = svc.Commit(ctx, "u1", "PROJ-1", req)
	require.NoError(t, err)

	_, err = svc.Commit(ctx, "u1", "PROJ-1", req)
	assert.ErrorIs(t, err, ErrGrantNotFound, "a grant is consumed by its first commit")
}

func TestCommit_ForeignImageURL(t *testing.T) {
	svc, _, _, _ := newTestService(t, Config{})

	_, err := svc.Commit(context.Background(), "u1", "PROJ-1", domain.CommitRequest{
		ImageURL: "https://attacker.example.com/reno-photos/x.jpg",
		Category: "after",
		SpaceID:  "living",
		ShotID:   "shot",
	})
	assert.ErrorIs(t, err, ErrForeignImageURL)
}

func TestCommit_VerifyObject(t *testing.T) {
	svc, store, _, _ := newTestService(t, Config{VerifyObject: true})
	ctx := context.Background()

	grant, err := svc.CreateGrant(ctx, "u1", "PROJ-1", "before", "living", "shot", "image/jpeg")
	require.NoError(t, err)

	req := domain.CommitRequest{ImageURL: grant.ImageURL, Category: "before", SpaceID: "living", ShotID: "shot"}
	_, err = svc.Commit(ctx, "u1", "PROJ-1", req)
	assert.ErrorIs(t, err, ErrObjectMissing, "nothing was uploaded yet")

	store.objects[grant.ObjectKey] = struct{}{}
	_, err = svc.Commit(ctx, "u1", "PROJ-1", req)
	assert.NoError(t, err)
}

func TestGrantTracker_Expiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	tracker := NewGrantTracker(client)
	ctx := context.Background()

	grant := domain.Grant{
		ID:        "g1",
		OwnerID:   "u1",
		ObjectKey: "projects/u1/PROJ-1/before/living/shot_1.jpg",
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, tracker.Record(ctx, grant))

	mr.FastForward(2 * time.Minute)

	_, found, err := tracker.Consume(ctx, "u1", grant.ObjectKey)
	require.NoError(t, err)
	assert.False(t, found, "expired grants disappear with their TTL")
}
