package reader

import (
	"github.com/ostrenko/feedcast/app/ads"
	"github.com/ostrenko/feedcast/app/feed"
)

// Article is a normalized article annotated with per-user interaction flags
// and, for at most one position per response, an advertisement placement.
type Article struct {
	feed.Article

	Bookmarked bool `json:"bookmarked"`
	Followed   bool `json:"followed"`
	Viewed     bool `json:"viewed"`

	// Rating is populated only by the popularity ranking; everywhere else
	// it stays null.
	Rating *string `json:"rating"`

	Advertisement *ads.Placement `json:"advertisement"`
}
