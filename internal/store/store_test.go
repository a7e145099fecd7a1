package store_test

import (
	"context"
	"fmt"
	"testing"

	"picvoice/internal/store"
	"picvoice/internal/testsupport"
)

func seedUser(t *testing.T, st *store.Store) *store.User {
	t.Helper()
	user, err := st.GetOrCreateUser(context.Background(), "testuser@gmail.com")
	if err != nil {
		t.Fatalf("GetOrCreateUser failed: %v", err)
	}
	return user
}

func insertImage(t *testing.T, st *store.Store, userID int64, filename, session string) *store.Image {
	t.Helper()
	img, err := st.InsertImage(context.Background(), store.ImageParams{
		UserID:       userID,
		Filename:     filename,
		OriginalName: filename,
		SessionID:    session,
	})
	if err != nil {
		t.Fatalf("InsertImage failed: %v", err)
	}
	return img
}

func TestOpenSeedsDefaultUser(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	user, err := st.GetUserByEmail(context.Background(), cfg.Account.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if user == nil {
		t.Fatal("expected default user to be seeded")
	}
	if user.ID == 0 {
		t.Fatal("expected user ID to be assigned")
	}
}

func TestGetOrCreateUserIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first, err := st.GetOrCreateUser(ctx, "someone@example.com")
	if err != nil {
		t.Fatalf("GetOrCreateUser failed: %v", err)
	}
	second, err := st.GetOrCreateUser(ctx, "someone@example.com")
	if err != nil {
		t.Fatalf("GetOrCreateUser second call failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected stable user id, got %d then %d", first.ID, second.ID)
	}
}

func TestInsertAndListImages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	user := seedUser(t, st)

	ctx := context.Background()
	insertImage(t, st, user.ID, "cat_1.jpg", "session-a")
	insertImage(t, st, user.ID, "dog_2.jpg", "session-a")

	images, err := st.ListImages(ctx, user.ID, store.ImageFilter{})
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}

	bySession, err := st.ListImages(ctx, user.ID, store.ImageFilter{SessionID: "session-a"})
	if err != nil {
		t.Fatalf("ListImages by session failed: %v", err)
	}
	if len(bySession) != 2 {
		t.Fatalf("expected 2 session images, got %d", len(bySession))
	}
}

func TestInsertImageRejectsDuplicateFilename(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	user := seedUser(t, st)

	insertImage(t, st, user.ID, "same.jpg", "session-a")
	if _, err := st.InsertImage(context.Background(), store.ImageParams{
		UserID:       user.ID,
		Filename:     "same.jpg",
		OriginalName: "same.jpg",
		SessionID:    "session-b",
	}); err == nil {
		t.Fatal("expected unique constraint failure for duplicate filename")
	}
}

func TestSoftDeletedImagesExcludedFromAllListings(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	user := seedUser(t, st)

	ctx := context.Background()
	keep := insertImage(t, st, user.ID, "keep.jpg", "session-a")
	gone := insertImage(t, st, user.ID, "gone.jpg", "session-a")

	if _, err := st.ToggleFavorite(ctx, gone.ID); err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	ok, err := st.SoftDeleteImage(ctx, gone.ID)
	if err != nil || !ok {
		t.Fatalf("SoftDeleteImage failed: ok=%v err=%v", ok, err)
	}

	favorite := true
	filters := []store.ImageFilter{
		{},
		{SessionID: "session-a"},
		{Favorite: &favorite},
	}
	for i, filter := range filters {
		images, err := st.ListImages(ctx, user.ID, filter)
		if err != nil {
			t.Fatalf("ListImages filter %d failed: %v", i, err)
		}
		for _, img := range images {
			if img.ID == gone.ID {
				t.Fatalf("filter %d returned soft-deleted image", i)
			}
		}
	}

	// The row itself is retained.
	row, err := st.GetImageByID(ctx, gone.ID)
	if err != nil {
		t.Fatalf("GetImageByID failed: %v", err)
	}
	if row == nil || !row.Deleted {
		t.Fatalf("expected retained deleted row, got %#v", row)
	}
	if row.ID == keep.ID {
		t.Fatal("unexpected row identity")
	}

	// Deleting again reports not-found.
	ok, err = st.SoftDeleteImage(ctx, gone.ID)
	if err != nil {
		t.Fatalf("second SoftDeleteImage errored: %v", err)
	}
	if ok {
		t.Fatal("expected second soft delete to affect zero rows")
	}
}

func TestToggleFavoriteRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	user := seedUser(t, st)

	ctx := context.Background()
	img := insertImage(t, st, user.ID, "fav.jpg", "session-a")

	updated, err := st.ToggleFavorite(ctx, img.ID)
	if err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if updated == nil || !updated.Favorite {
		t.Fatalf("expected favorite set, got %#v", updated)
	}

	updated, err = st.ToggleFavorite(ctx, img.ID)
	if err != nil {
		t.Fatalf("second ToggleFavorite failed: %v", err)
	}
	if updated == nil || updated.Favorite {
		t.Fatalf("expected favorite cleared, got %#v", updated)
	}

	missing, err := st.ToggleFavorite(ctx, 9999)
	if err != nil {
		t.Fatalf("ToggleFavorite on missing id errored: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing image")
	}
}

func TestSetRotation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	user := seedUser(t, st)

	ctx := context.Background()
	img := insertImage(t, st, user.ID, "rot.jpg", "session-a")

	for _, degrees := range []int{90, 180, 270, 0} {
		ok, err := st.SetRotation(ctx, img.ID, degrees)
		if err != nil || !ok {
			t.Fatalf("SetRotation(%d) failed: ok=%v err=%v", degrees, ok, err)
		}
		got, err := st.GetImageByID(ctx, img.ID)
		if err != nil {
			t.Fatalf("GetImageByID failed: %v", err)
		}
		if got.Rotation != degrees {
			t.Fatalf("expected rotation %d, got %d", degrees, got.Rotation)
		}
	}

	if _, err := st.SetRotation(ctx, img.ID, 45); err == nil {
		t.Fatal("expected error for rotation not on a 90-degree step")
	}

	ok, err := st.SetRotation(ctx, 9999, 90)
	if err != nil {
		t.Fatalf("SetRotation on missing id errored: %v", err)
	}
	if ok {
		t.Fatal("expected false for missing image")
	}
}

func TestSetReadyBulkTouchesOnlyGivenIDs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	user := seedUser(t, st)

	ctx := context.Background()
	a := insertImage(t, st, user.ID, "a.jpg", "session-a")
	b := insertImage(t, st, user.ID, "b.jpg", "session-a")
	c := insertImage(t, st, user.ID, "c.jpg", "session-a")
	other := insertImage(t, st, user.ID, "other.jpg", "session-a")

	affected, err := st.SetReady(ctx, []int64{a.ID, b.ID, c.ID}, true)
	if err != nil {
		t.Fatalf("SetReady failed: %v", err)
	}
	if affected != 3 {
		t.Fatalf("expected 3 rows affected, got %d", affected)
	}

	for _, id := range []int64{a.ID, b.ID, c.ID} {
		img, err := st.GetImageByID(ctx, id)
		if err != nil {
			t.Fatalf("GetImageByID failed: %v", err)
		}
		if !img.Ready {
			t.Fatalf("expected image %d ready", id)
		}
	}
	untouched, err := st.GetImageByID(ctx, other.ID)
	if err != nil {
		t.Fatalf("GetImageByID failed: %v", err)
	}
	if untouched.Ready {
		t.Fatal("expected untouched image to stay not-ready")
	}

	affected, err = st.SetReady(ctx, nil, true)
	if err != nil {
		t.Fatalf("SetReady with empty ids errored: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 rows for empty id set, got %d", affected)
	}
}

func TestSessionGrouping(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	user := seedUser(t, st)

	ctx := context.Background()
	first := insertImage(t, st, user.ID, "s1_a.jpg", "session-1")
	insertImage(t, st, user.ID, "s1_b.jpg", "session-1")
	insertImage(t, st, user.ID, "s2_a.jpg", "session-2")

	if _, err := st.SetReady(ctx, []int64{first.ID}, true); err != nil {
		t.Fatalf("SetReady failed: %v", err)
	}

	sessions, err := st.ListSessions(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}

	byID := make(map[string]store.SessionSummary, len(sessions))
	for _, s := range sessions {
		byID[s.SessionID] = s
	}
	if got := byID["session-1"]; got.ImageCount != 2 || got.ReadyCount != 1 {
		t.Fatalf("unexpected session-1 summary: %+v", got)
	}
	if got := byID["session-2"]; got.ImageCount != 1 || got.ReadyCount != 0 {
		t.Fatalf("unexpected session-2 summary: %+v", got)
	}

	current, err := st.CurrentSessionID(ctx, user.ID)
	if err != nil {
		t.Fatalf("CurrentSessionID failed: %v", err)
	}
	if current != "session-2" {
		t.Fatalf("expected session-2 current, got %q", current)
	}
}

func TestCurrentSessionEmptyWithoutImages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	user := seedUser(t, st)

	current, err := st.CurrentSessionID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("CurrentSessionID failed: %v", err)
	}
	if current != "" {
		t.Fatalf("expected empty session id, got %q", current)
	}
}

func TestTagRoundTripAndCascade(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	user := seedUser(t, st)

	ctx := context.Background()
	tag, err := st.InsertTag(ctx, user.ID, "landscape", "#00ff00", "")
	if err != nil {
		t.Fatalf("InsertTag failed: %v", err)
	}
	if tag.Category != "general" {
		t.Fatalf("expected default category, got %q", tag.Category)
	}

	tags, err := st.ListTags(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "landscape" || tags[0].Color != "#00ff00" {
		t.Fatalf("unexpected tag listing: %#v", tags)
	}

	// Duplicate name per user fails.
	if _, err := st.InsertTag(ctx, user.ID, "landscape", "#ffffff", ""); err == nil {
		t.Fatal("expected duplicate tag name to fail")
	}

	img := insertImage(t, st, user.ID, "tagged.jpg", "session-a")
	if err := st.AddImageTag(ctx, img.ID, tag.ID); err != nil {
		t.Fatalf("AddImageTag failed: %v", err)
	}
	// Idempotent attach.
	if err := st.AddImageTag(ctx, img.ID, tag.ID); err != nil {
		t.Fatalf("second AddImageTag failed: %v", err)
	}

	attached, err := st.ListImageTags(ctx, img.ID)
	if err != nil {
		t.Fatalf("ListImageTags failed: %v", err)
	}
	if len(attached) != 1 || attached[0].ID != tag.ID {
		t.Fatalf("unexpected attached tags: %#v", attached)
	}

	filtered, err := st.ListImages(ctx, user.ID, store.ImageFilter{TagID: tag.ID})
	if err != nil {
		t.Fatalf("ListImages by tag failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != img.ID {
		t.Fatalf("unexpected tag-filtered images: %#v", filtered)
	}

	ok, err := st.DeleteTag(ctx, tag.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteTag failed: ok=%v err=%v", ok, err)
	}

	attached, err = st.ListImageTags(ctx, img.ID)
	if err != nil {
		t.Fatalf("ListImageTags after delete failed: %v", err)
	}
	if len(attached) != 0 {
		t.Fatalf("expected tag removed from image, got %#v", attached)
	}

	ok, err = st.DeleteTag(ctx, tag.ID)
	if err != nil {
		t.Fatalf("second DeleteTag errored: %v", err)
	}
	if ok {
		t.Fatal("expected not-found for already-deleted tag")
	}
}

func TestRemoveImageTagNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	user := seedUser(t, st)

	img := insertImage(t, st, user.ID, "img.jpg", "session-a")
	ok, err := st.RemoveImageTag(context.Background(), img.ID, 42)
	if err != nil {
		t.Fatalf("RemoveImageTag errored: %v", err)
	}
	if ok {
		t.Fatal("expected false for missing association")
	}
}

func TestAnnotationLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	user := seedUser(t, st)

	ctx := context.Background()
	img := insertImage(t, st, user.ID, "pic.jpg", "session-a")

	var inserted []*store.Annotation
	for i := 0; i < 3; i++ {
		ann, err := st.InsertAnnotation(ctx, store.AnnotationParams{
			UserID:        user.ID,
			ImageID:       &img.ID,
			ImageFilename: img.Filename,
			AudioFilename: fmt.Sprintf("pic_%d.mp3", i),
			SessionID:     "session-a",
		})
		if err != nil {
			t.Fatalf("InsertAnnotation failed: %v", err)
		}
		if ann.Name != store.DefaultAnnotationName {
			t.Fatalf("expected default name, got %q", ann.Name)
		}
		inserted = append(inserted, ann)
	}

	all, err := st.ListAnnotations(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListAnnotations failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 annotations, got %d", len(all))
	}
	// Newest first.
	if all[0].ID != inserted[2].ID {
		t.Fatalf("expected newest annotation first, got id %d", all[0].ID)
	}

	forImage, err := st.ListImageAnnotations(ctx, user.ID, img.Filename)
	if err != nil {
		t.Fatalf("ListImageAnnotations failed: %v", err)
	}
	if len(forImage) != 3 {
		t.Fatalf("expected 3 annotations for image, got %d", len(forImage))
	}

	summary, err := st.AnnotationSummary(ctx, user.ID)
	if err != nil {
		t.Fatalf("AnnotationSummary failed: %v", err)
	}
	if len(summary) != 1 || summary[0].ImageFilename != img.Filename || summary[0].Count != 3 {
		t.Fatalf("unexpected summary: %#v", summary)
	}

	ok, err := st.DeleteAnnotation(ctx, inserted[0].ID)
	if err != nil || !ok {
		t.Fatalf("DeleteAnnotation failed: ok=%v err=%v", ok, err)
	}
	// Deleting the same id again signals not-found rather than crashing.
	ok, err = st.DeleteAnnotation(ctx, inserted[0].ID)
	if err != nil {
		t.Fatalf("second DeleteAnnotation errored: %v", err)
	}
	if ok {
		t.Fatal("expected not-found for repeated delete")
	}
}

func TestInsertAnnotationWithoutImageRow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	user := seedUser(t, st)

	ann, err := st.InsertAnnotation(context.Background(), store.AnnotationParams{
		UserID:        user.ID,
		ImageFilename: "orphan.jpg",
		AudioFilename: "orphan.mp3",
		SessionID:     "session-x",
	})
	if err != nil {
		t.Fatalf("InsertAnnotation failed: %v", err)
	}
	if ann.ImageID != nil {
		t.Fatalf("expected nil image id, got %v", *ann.ImageID)
	}
}

func TestListAnnotationsByImageID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	user := seedUser(t, st)

	ctx := context.Background()
	img := insertImage(t, st, user.ID, "linked.jpg", "session-a")
	for i := 0; i < 2; i++ {
		if _, err := st.InsertAnnotation(ctx, store.AnnotationParams{
			UserID:        user.ID,
			ImageID:       &img.ID,
			ImageFilename: img.Filename,
			AudioFilename: fmt.Sprintf("linked_%d.mp3", i),
			SessionID:     "session-a",
		}); err != nil {
			t.Fatalf("InsertAnnotation failed: %v", err)
		}
	}

	linked, err := st.ListAnnotationsByImageID(ctx, img.ID)
	if err != nil {
		t.Fatalf("ListAnnotationsByImageID failed: %v", err)
	}
	if len(linked) != 2 {
		t.Fatalf("expected 2 linked annotations, got %d", len(linked))
	}
}

func TestStatsCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	user := seedUser(t, st)

	ctx := context.Background()
	img := insertImage(t, st, user.ID, "one.jpg", "session-a")
	insertImage(t, st, user.ID, "two.jpg", "session-b")
	if _, err := st.InsertTag(ctx, user.ID, "t", "#fff", ""); err != nil {
		t.Fatalf("InsertTag failed: %v", err)
	}
	if _, err := st.SoftDeleteImage(ctx, img.ID); err != nil {
		t.Fatalf("SoftDeleteImage failed: %v", err)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Images != 1 || stats.Deleted != 1 || stats.Tags != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestCheckHealthReportsTables(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	health, err := st.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable {
		t.Fatalf("unexpected health: %+v", health)
	}
	if len(health.MissingTables) != 0 {
		t.Fatalf("expected no missing tables, got %v", health.MissingTables)
	}
	if !health.IntegrityCheck {
		t.Fatal("expected integrity check to pass")
	}
}
