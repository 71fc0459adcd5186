package mutation

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/content"
)

// Kind names an editable entity type.
type Kind string

const (
	KindSection      Kind = "section"
	KindTestimonials Kind = "testimonials"
	KindVideos       Kind = "videos"
	KindProcessSteps Kind = "process_steps"
	KindServices     Kind = "services"
	KindProjects     Kind = "projects"
)

// RecordKinds lists the domain table kinds.
var RecordKinds = []Kind{KindTestimonials, KindVideos, KindProcessSteps, KindServices, KindProjects}

// ParseKind accepts both the table name and the URL slug (process-steps).
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ReplaceAll(s, "-", "_"))
	if k == KindSection {
		return k, true
	}
	for _, rk := range RecordKinds {
		if k == rk {
			return k, true
		}
	}
	return "", false
}

// Slug is the URL segment for the kind.
func (k Kind) Slug() string {
	return strings.ReplaceAll(string(k), "_", "-")
}

// Op is the persistence operation of a mutation.
type Op string

const (
	OpUpsert Op = "upsert"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

var (
	rating      = Field{Name: "rating", Type: Int, Min: bound(1), Max: bound(5)}
	order       = Field{Name: "display_order", Type: Int}
	nonNegative = bound(0)
)

// RecordForms declares the console form of each record kind.
var RecordForms = map[Kind]Form{
	KindTestimonials: {
		{Name: "client_name", Type: Text, Required: true},
		{Name: "client_role", Type: Text},
		{Name: "quote", Type: Text, Required: true},
		rating,
		{Name: "image_url", Type: Text},
		{Name: "show_on_homepage", Type: Bool},
		order,
	},
	KindVideos: {
		{Name: "title", Type: Text, Required: true},
		{Name: "description", Type: Text},
		{Name: "video_url", Type: Text, Required: true},
		{Name: "thumbnail_url", Type: Text},
		{Name: "category", Type: Text},
		{Name: "featured", Type: Bool},
		order,
	},
	KindProcessSteps: {
		{Name: "step_number", Type: Int, Required: true, Min: bound(1)},
		{Name: "title", Type: Text, Required: true},
		{Name: "description", Type: Text, Required: true},
		{Name: "icon", Type: Text},
		order,
	},
	KindServices: {
		{Name: "title", Type: Text, Required: true},
		{Name: "slug", Type: Text},
		{Name: "description", Type: Text, Required: true},
		{Name: "features", Type: Lines},
		{Name: "image_url", Type: Text},
		{Name: "published", Type: Bool},
		order,
	},
	KindProjects: {
		{Name: "title", Type: Text, Required: true},
		{Name: "category", Type: Text, Required: true},
		{Name: "location", Type: Text},
		{Name: "description", Type: Text},
		{Name: "image_url", Type: Text, Required: true},
		{Name: "gallery_urls", Type: Lines},
		{Name: "year", Type: Int, Min: bound(1900), Max: bound(2200)},
		{Name: "featured", Type: Bool},
		order,
	},
}

// SectionForms declares the console form of each known section. Submitting a
// text field empty clears it; leaving it out of the form restores the default.
var SectionForms = map[string]Form{
	content.KeyHero: {
		{Name: "title", Type: Text, Required: true},
		{Name: "subtitle", Type: Text},
		{Name: "cta_text", Type: Text},
		{Name: "cta_link", Type: Text},
		{Name: "background_image_url", Type: Text},
	},
	content.KeyAbout: {
		{Name: "title", Type: Text},
		{Name: "description", Type: Text},
		{Name: "image_url", Type: Text},
		{Name: "years_experience", Type: Int, Min: nonNegative},
		{Name: "values", Type: Lines},
	},
	content.KeyContactInfo: {
		{Name: "phone", Type: Text},
		{Name: "email", Type: Text},
		{Name: "address", Type: Text},
		{Name: "whatsapp_number", Type: Text},
		{Name: "business_hours", Type: Text},
		{Name: "map_embed_url", Type: Text},
	},
	content.KeyFooter: {
		{Name: "tagline", Type: Text},
		{Name: "copyright", Type: Text},
		{Name: "facebook_url", Type: Text},
		{Name: "instagram_url", Type: Text},
		{Name: "youtube_url", Type: Text},
		{Name: "linkedin_url", Type: Text},
	},
	content.KeyWhyChooseUs: {
		{Name: "title", Type: Text},
		{Name: "subtitle", Type: Text},
		{Name: "reasons", Type: Reasons},
	},
	content.KeyProjectStats: {
		{Name: "projects_completed", Type: Int, Min: nonNegative},
		{Name: "happy_clients", Type: Int, Min: nonNegative},
		{Name: "years_experience", Type: Int, Min: nonNegative},
		{Name: "cities_served", Type: Int, Min: nonNegative},
	},
	content.KeyServiceHighlights: {
		{Name: "highlights", Type: Lines},
	},
}

// Slugify derives a URL slug from a title: accents are stripped, runs of
// anything other than letters and digits become a single hyphen.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			hyphen = false
			continue
		}
		if !hyphen && b.Len() > 0 {
			b.WriteByte('-')
			hyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
