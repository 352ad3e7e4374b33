package ads

import (
	"sync"
	"testing"
	"time"

	"github.com/ostrenko/feedcast/app/database"
)

type fakeAdRepo struct {
	mu        sync.Mutex
	campaigns []database.Advertisement
	views     map[string]int
}

func newFakeAdRepo(campaigns ...database.Advertisement) *fakeAdRepo {
	return &fakeAdRepo{campaigns: campaigns, views: make(map[string]int)}
}

func (r *fakeAdRepo) GetActiveAdvertisements(day time.Time) ([]database.Advertisement, error) {
	return r.campaigns, nil
}

func (r *fakeAdRepo) GetAdvertisement(id string) (*database.Advertisement, error) {
	for i := range r.campaigns {
		if r.campaigns[i].ID == id {
			return &r.campaigns[i], nil
		}
	}
	return nil, nil
}

func (r *fakeAdRepo) IncrementViews(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[id]++
	return nil
}

type fakeCategoryRepo struct {
	categories map[string]database.Category
}

func (r *fakeCategoryRepo) GetCategory(id string) (*database.Category, error) {
	for _, c := range r.categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryRepo) GetCategoryByTitle(title string) (*database.Category, error) {
	if c, ok := r.categories[title]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *fakeCategoryRepo) UpsertCategory(title, image string) (string, error) {
	return "", nil
}

func testCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[string]database.Category{
		"Technology": {ID: "cat-tech", Title: "Technology"},
		"Sports":     {ID: "cat-sports", Title: "Sports"},
	}}
}

func newTestAllocator(adRepo *fakeAdRepo, intn func(int) int) *Allocator {
	allocator := NewAllocator(adRepo, testCategoryRepo())
	if intn != nil {
		allocator.intn = intn
	}
	return allocator
}

func TestAllocator_Run_PayingUserGetsNoAd(t *testing.T) {
	adRepo := newFakeAdRepo(database.Advertisement{ID: "ad-1", Priority: 5, CategoriesIDs: "0"})
	allocator := newTestAllocator(adRepo, nil)

	placement, err := allocator.Run("Technology", true)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if placement != nil {
		t.Errorf("Expected no placement for a paying user, got %+v", placement)
	}
	if len(adRepo.views) != 0 {
		t.Errorf("Expected no view counted for a paying user")
	}
}

func TestAllocator_Run_EmptyPool(t *testing.T) {
	allocator := newTestAllocator(newFakeAdRepo(), nil)

	placement, err := allocator.Run("Technology", false)
	if err != nil {
		t.Fatalf("Expected no error for an empty pool, got: %v", err)
	}
	if placement != nil {
		t.Errorf("Expected no placement from an empty pool, got %+v", placement)
	}
}

func TestAllocator_Run_CategoryFiltering(t *testing.T) {
	adRepo := newFakeAdRepo(
		database.Advertisement{ID: "ad-sports", Priority: 1, CategoriesIDs: "cat-sports"},
		database.Advertisement{ID: "ad-tech", Priority: 1, CategoriesIDs: "cat-tech,cat-science"},
	)
	allocator := newTestAllocator(adRepo, nil)

	for i := 0; i < 20; i++ {
		placement, err := allocator.Run("Technology", false)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if placement == nil {
			t.Fatalf("Expected a placement for an eligible campaign")
		}
		if placement.ID != "ad-tech" {
			t.Errorf("Expected only the technology campaign, got %q", placement.ID)
		}
	}
}

func TestAllocator_Run_AllCategoriesSentinel(t *testing.T) {
	adRepo := newFakeAdRepo(database.Advertisement{ID: "ad-any", Priority: 1, CategoriesIDs: "0"})
	allocator := newTestAllocator(adRepo, nil)

	placement, err := allocator.Run("Sports", false)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if placement == nil || placement.ID != "ad-any" {
		t.Errorf("Expected the all-categories campaign for any category, got %+v", placement)
	}
}

func TestAllocator_Run_UnknownCategory(t *testing.T) {
	adRepo := newFakeAdRepo(
		database.Advertisement{ID: "ad-tech", Priority: 1, CategoriesIDs: "cat-tech"},
		database.Advertisement{ID: "ad-any", Priority: 1, CategoriesIDs: "0"},
	)
	allocator := newTestAllocator(adRepo, nil)

	placement, err := allocator.Run("Nonexistent", false)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if placement == nil || placement.ID != "ad-any" {
		t.Errorf("Expected only the all-categories campaign for an unknown category, got %+v", placement)
	}
}

func TestAllocator_Run_ZeroPriorityExcluded(t *testing.T) {
	adRepo := newFakeAdRepo(database.Advertisement{ID: "ad-idle", Priority: 0, CategoriesIDs: "0"})
	allocator := newTestAllocator(adRepo, nil)

	placement, err := allocator.Run("Technology", false)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if placement != nil {
		t.Errorf("Expected no placement when every campaign has zero priority, got %+v", placement)
	}
}

func TestAllocator_Run_WeightedSelection(t *testing.T) {
	adRepo := newFakeAdRepo(
		database.Advertisement{ID: "ad-heavy", Priority: 3, CategoriesIDs: "0"},
		database.Advertisement{ID: "ad-light", Priority: 1, CategoriesIDs: "0"},
	)

	// Walk every slot of the cumulative weight range once.
	next := 0
	allocator := newTestAllocator(adRepo, func(n int) int {
		if n != 4 {
			t.Fatalf("Expected a weight range of 4, got %d", n)
		}
		v := next % n
		next++
		return v
	})

	for i := 0; i < 4; i++ {
		if _, err := allocator.Run("Technology", false); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	if adRepo.views["ad-heavy"] != 3 {
		t.Errorf("Expected 3 selections of the heavy campaign, got %d", adRepo.views["ad-heavy"])
	}
	if adRepo.views["ad-light"] != 1 {
		t.Errorf("Expected 1 selection of the light campaign, got %d", adRepo.views["ad-light"])
	}
}

func TestAllocator_Run_ViewCountedPerAllocation(t *testing.T) {
	adRepo := newFakeAdRepo(database.Advertisement{ID: "ad-1", Priority: 2, CategoriesIDs: "0"})
	allocator := newTestAllocator(adRepo, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := allocator.Run("Technology", false); err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		}()
	}
	wg.Wait()

	if adRepo.views["ad-1"] != 10 {
		t.Errorf("Expected 10 views after 10 allocations, got %d", adRepo.views["ad-1"])
	}
}

func TestAllocator_Run_PlacementHidesInternalFields(t *testing.T) {
	adRepo := newFakeAdRepo(database.Advertisement{
		ID:            "ad-1",
		Name:          "internal-campaign-name",
		Title:         "Visit Example",
		Image:         "https://example.com/banner.png",
		URL:           "https://example.com",
		Priority:      5,
		DisplayOrder:  2,
		CategoriesIDs: "0",
	})
	allocator := newTestAllocator(adRepo, nil)

	placement, err := allocator.Run("Technology", false)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if placement == nil {
		t.Fatalf("Expected a placement")
	}
	if placement.Title != "Visit Example" || placement.Image != "https://example.com/banner.png" ||
		placement.URL != "https://example.com" {
		t.Errorf("Expected display fields to carry over, got %+v", placement)
	}
	if placement.Order != 2 {
		t.Errorf("Expected display order 2, got %d", placement.Order)
	}
}

func TestPickWeighted_EmptyPool(t *testing.T) {
	if selected := pickWeighted(nil, func(int) int { return 0 }); selected != nil {
		t.Errorf("Expected nil from an empty pool, got %+v", selected)
	}
}

func TestPickWeighted_SkipsZeroWeight(t *testing.T) {
	campaigns := []database.Advertisement{
		{ID: "ad-zero", Priority: 0},
		{ID: "ad-one", Priority: 1},
	}

	for target := 0; target < 1; target++ {
		selected := pickWeighted(campaigns, func(int) int { return target })
		if selected == nil || selected.ID != "ad-one" {
			t.Errorf("Expected the weighted campaign for target %d, got %+v", target, selected)
		}
	}
}
