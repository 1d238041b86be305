package banners

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/techzonevn/storefront-backend/internal/testsupport"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
)

func TestActiveBannersRespectWindowAndPosition(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	svc, err := NewService(NewRepository(testsupport.OpenSQLite(t)), func() time.Time { return now })
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := context.Background()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	off := false
	inputs := []CreateBannerRequest{
		{Title: "Tết 2026", ImageURL: "https://cdn.example.vn/tet.jpg", Position: 2},
		{Title: "Flash sale", ImageURL: "https://cdn.example.vn/flash.jpg", Position: 1, StartAt: &past, EndAt: &future},
		{Title: "Hết hạn", ImageURL: "https://cdn.example.vn/old.jpg", Position: 0, EndAt: &past},
		{Title: "Sắp tới", ImageURL: "https://cdn.example.vn/soon.jpg", Position: 0, StartAt: &future},
		{Title: "Tắt", ImageURL: "https://cdn.example.vn/off.jpg", Position: 0, IsActive: &off},
	}
	for _, in := range inputs {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("Create(%s): %v", in.Title, err)
		}
	}

	active, err := svc.Active(ctx)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if len(active) != 2 || active[0].Title != "Flash sale" || active[1].Title != "Tết 2026" {
		t.Fatalf("unexpected active banners: %+v", active)
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 banners, got %d", len(all))
	}
}

func TestUpdateAndDeleteBanner(t *testing.T) {
	svc, err := NewService(NewRepository(testsupport.OpenSQLite(t)), nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateBannerRequest{Title: "Laptop", ImageURL: "https://cdn.example.vn/laptop.jpg"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	if _, err := svc.Update(ctx, created.ID, UpdateBannerRequest{StartAt: &start, EndAt: &end}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for inverted window, got %v", err)
	}

	pos := 3
	updated, err := svc.Update(ctx, created.ID, UpdateBannerRequest{Position: &pos})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Position != 3 {
		t.Fatalf("expected position 3, got %d", updated.Position)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if _, err := svc.Update(ctx, uuid.New(), UpdateBannerRequest{}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
