package ads

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/ostrenko/feedcast/app/database"
)

// AllCategoriesSentinel marks a campaign eligible for every category.
const AllCategoriesSentinel = "0"

// Placement is the display projection of an allocated campaign. Internal
// fields (name, category set, date window, priority, audit timestamps) are
// never exposed to callers.
type Placement struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
	URL   string `json:"url"`

	// Order is the zero-based position in the article list that receives
	// this placement.
	Order int `json:"order"`
}

// Allocator selects one advertisement campaign per response. Selection is
// weighted linearly by campaign priority and restricted to campaigns whose
// date window is active and whose category set matches.
type Allocator struct {
	adRepo       database.AdvertisementRepository
	categoryRepo database.CategoryRepository
	now          func() time.Time
	intn         func(int) int
}

func NewAllocator(adRepo database.AdvertisementRepository, categoryRepo database.CategoryRepository) *Allocator {
	return &Allocator{
		adRepo:       adRepo,
		categoryRepo: categoryRepo,
		now:          time.Now,
		intn:         rand.Intn,
	}
}

// Run allocates a campaign for the given category. Paying users never see
// ads. A nil placement with a nil error means no campaign was eligible;
// that is a valid outcome, not a fault. Every successful allocation counts
// one view on the selected campaign, whether or not the caller ends up
// rendering the slot.
func (a *Allocator) Run(categoryTitle string, payingUser bool) (*Placement, error) {
	if payingUser {
		return nil, nil
	}

	category, err := a.categoryRepo.GetCategoryByTitle(categoryTitle)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}

	campaigns, err := a.adRepo.GetActiveAdvertisements(a.now())
	if err != nil {
		return nil, fmt.Errorf("failed to get active advertisements: %w", err)
	}

	var categoryID string
	if category != nil {
		categoryID = category.ID
	}

	eligible := make([]database.Advertisement, 0, len(campaigns))
	for _, campaign := range campaigns {
		if isEligible(campaign, categoryID) {
			eligible = append(eligible, campaign)
		}
	}

	selected := pickWeighted(eligible, a.intn)
	if selected == nil {
		return nil, nil
	}

	if err := a.adRepo.IncrementViews(selected.ID); err != nil {
		return nil, fmt.Errorf("failed to count advertisement view: %w", err)
	}

	return &Placement{
		ID:    selected.ID,
		Title: selected.Title,
		Image: selected.Image,
		URL:   selected.URL,
		Order: selected.DisplayOrder,
	}, nil
}

func isEligible(campaign database.Advertisement, categoryID string) bool {
	if campaign.CategoriesIDs == AllCategoriesSentinel {
		return true
	}
	if categoryID == "" {
		return false
	}
	for _, id := range strings.Split(campaign.CategoriesIDs, ",") {
		if strings.TrimSpace(id) == categoryID {
			return true
		}
	}
	return false
}

// pickWeighted samples one campaign with probability proportional to its
// priority, using cumulative weights and a binary search. Priority zero
// contributes no weight. Returns nil when the pool is empty.
func pickWeighted(campaigns []database.Advertisement, intn func(int) int) *database.Advertisement {
	cumulative := make([]int, len(campaigns))
	total := 0
	for i, campaign := range campaigns {
		if campaign.Priority > 0 {
			total += campaign.Priority
		}
		cumulative[i] = total
	}

	if total == 0 {
		return nil
	}

	target := intn(total)
	idx := sort.Search(len(cumulative), func(i int) bool { return cumulative[i] > target })
	return &campaigns[idx]
}
