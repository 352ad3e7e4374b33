package feed

import (
	"cmp"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

// dateFormat is the human-readable publish date attached to every article,
// e.g. "Jan 2, 2024 3:04 pm".
const dateFormat = "Jan 2, 2006 3:04 pm"

// imageTagPattern matches an img element, self-closing or with a separate
// closing tag, so a spacer can be appended after each one.
var imageTagPattern = regexp.MustCompile(`(?i)(<img[^>]+>(?:</img>)?)`)

// Normalizer converts raw feed items into the canonical article
// representation.
type Normalizer struct {
	stripPolicy *bluemonday.Policy
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		stripPolicy: bluemonday.StrictPolicy(),
	}
}

func (n *Normalizer) Run(item *gofeed.Item, src Source) Article {
	publishedAt := time.Now().UTC()
	if item.PublishedParsed != nil {
		publishedAt = item.PublishedParsed.UTC()
	}

	content := cmp.Or(item.Content, item.Description)

	article := Article{
		ID:            cmp.Or(item.GUID, item.Link),
		Title:         item.Title,
		Date:          publishedAt.Format(dateFormat),
		Description:   strings.TrimSpace(n.stripPolicy.Sanitize(item.Description)),
		URL:           item.Link,
		FeedID:        src.FeedID,
		FeedTitle:     src.FeedTitle,
		CategoryTitle: src.CategoryTitle,
		Image:         resolveImage(item, content),
		PublishedAt:   publishedAt,
	}

	// Image resolution reads the original content; the spacer rewrite
	// comes after.
	article.Content = RewriteImageTags(content)

	return article
}

// resolveImage picks the article image: an image-typed enclosure wins,
// otherwise the first inline img src in the content, otherwise nil.
func resolveImage(item *gofeed.Item, content string) *string {
	for _, enclosure := range item.Enclosures {
		if enclosure != nil && strings.Contains(enclosure.Type, "image") && enclosure.URL != "" {
			url := enclosure.URL
			return &url
		}
	}

	if strings.Contains(content, "<img") {
		if src, ok := ExtractFirstImageSrc(content); ok {
			return &src
		}
	}

	return nil
}

// ExtractFirstImageSrc parses an HTML fragment and returns the src of its
// first img element.
func ExtractFirstImageSrc(fragment string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", false
	}

	src, ok := doc.Find("img").First().Attr("src")
	if !ok || src == "" {
		return "", false
	}

	return src, true
}

// RewriteImageTags appends three line breaks after every img element to
// force visual separation in downstream rendering.
func RewriteImageTags(content string) string {
	return imageTagPattern.ReplaceAllString(content, "$1<br /><br /><br />")
}
