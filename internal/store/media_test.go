package store

import (
	"testing"

	"github.com/google/uuid"

	"kbpress/internal/models"
)

func TestMediaLifecycle(t *testing.T) {
	db := testDB(t)
	admins := NewAdminStore(db)
	s := NewMediaStore(db)

	// Media rows need an uploader; deleting the admin cascades.
	admin, err := admins.Create(testUsername(), "uploader-password")
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	t.Cleanup(func() { db.Exec(`DELETE FROM admins WHERE id = $1`, admin.ID) })

	created, err := s.Create(&models.Media{
		Filename:     uuid.New().String() + ".png",
		OriginalName: "diagram.png",
		ContentType:  "image/png",
		SizeBytes:    2048,
		Bucket:       "kbpress-media",
		S3Key:        "media/" + uuid.New().String() + ".png",
		UploaderID:   admin.ID,
	})
	if err != nil {
		t.Fatalf("create media: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("created media has no id")
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if found == nil {
		t.Fatal("created media not found")
	}
	if found.OriginalName != "diagram.png" || found.ContentType != "image/png" {
		t.Errorf("found = %+v, want the created record", found)
	}
	if !found.IsImage() {
		t.Error("png record not recognized as an image")
	}

	missing, err := s.FindByID(uuid.New())
	if err != nil {
		t.Fatalf("find missing: %v", err)
	}
	if missing != nil {
		t.Errorf("got %v, want nil for unknown id", missing)
	}

	deleted, err := s.Delete(created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted == nil || deleted.S3Key != created.S3Key {
		t.Fatalf("delete returned %+v, want the row with its s3 key", deleted)
	}

	gone, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("find after delete: %v", err)
	}
	if gone != nil {
		t.Error("media still resolvable after delete")
	}

	again, err := s.Delete(created.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if again != nil {
		t.Error("second delete returned a row")
	}
}
