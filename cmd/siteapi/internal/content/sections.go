package content

// Known section keys.
const (
	KeyHero              = "hero"
	KeyAbout             = "about"
	KeyContactInfo       = "contact_info"
	KeyFooter            = "footer"
	KeyWhyChooseUs       = "why_choose_us"
	KeyProjectStats      = "project_stats"
	KeyServiceHighlights = "service_highlights"
)

// Keys lists every known section key in console order.
var Keys = []string{
	KeyHero,
	KeyAbout,
	KeyServiceHighlights,
	KeyWhyChooseUs,
	KeyProjectStats,
	KeyContactInfo,
	KeyFooter,
}

// Known reports whether key is one of the typed sections.
func Known(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// Content is a decoded section document. The concrete type is determined by
// the section key; unrecognised keys decode to Unknown.
type Content interface {
	SectionKey() string
}

// Hero is the landing banner.
type Hero struct {
	Title              string `json:"title"`
	Subtitle           string `json:"subtitle"`
	CTAText            string `json:"cta_text"`
	CTALink            string `json:"cta_link"`
	BackgroundImageURL string `json:"background_image_url"`
}

// About is the company introduction.
type About struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	ImageURL        string   `json:"image_url"`
	YearsExperience int      `json:"years_experience"`
	Values          []string `json:"values"`
}

// ContactInfo holds the public contact details.
type ContactInfo struct {
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	WhatsAppNumber string `json:"whatsapp_number"`
	BusinessHours  string `json:"business_hours"`
	MapEmbedURL    string `json:"map_embed_url"`
}

// Footer holds the footer copy and social links.
type Footer struct {
	Tagline      string `json:"tagline"`
	Copyright    string `json:"copyright"`
	FacebookURL  string `json:"facebook_url"`
	InstagramURL string `json:"instagram_url"`
	YouTubeURL   string `json:"youtube_url"`
	LinkedInURL  string `json:"linkedin_url"`
}

// Reason is one entry of the why-choose-us grid.
type Reason struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// WhyChooseUs is the selling-points grid.
type WhyChooseUs struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Reasons  []Reason `json:"reasons"`
}

// ProjectStats are the counters shown on the home page.
type ProjectStats struct {
	ProjectsCompleted int `json:"projects_completed"`
	HappyClients      int `json:"happy_clients"`
	YearsExperience   int `json:"years_experience"`
	CitiesServed      int `json:"cities_served"`
}

// ServiceHighlights feeds the public marquee.
type ServiceHighlights struct {
	Highlights []string `json:"highlights"`
}

// Unknown wraps a document stored under an unrecognised key.
type Unknown struct {
	Key      string   `json:"key"`
	Document Document `json:"content"`
}

func (Hero) SectionKey() string              { return KeyHero }
func (About) SectionKey() string             { return KeyAbout }
func (ContactInfo) SectionKey() string       { return KeyContactInfo }
func (Footer) SectionKey() string            { return KeyFooter }
func (WhyChooseUs) SectionKey() string       { return KeyWhyChooseUs }
func (ProjectStats) SectionKey() string      { return KeyProjectStats }
func (ServiceHighlights) SectionKey() string { return KeyServiceHighlights }
func (u Unknown) SectionKey() string         { return u.Key }

// Typed accessors. Defaults are what the public site renders before the
// first edit and what fills fields missing from older stored shapes.
var (
	HeroSection = Section[Hero]{Key: KeyHero, Defaults: func() Hero {
		return Hero{
			Title:    "Interiors crafted around the way you live",
			Subtitle: "Residential and commercial interior design, from concept to handover.",
			CTAText:  "Get a free consultation",
			CTALink:  "/contact",
		}
	}}

	AboutSection = Section[About]{Key: KeyAbout, Defaults: func() About {
		return About{Title: "About us", Values: []string{}}
	}}

	ContactInfoSection = Section[ContactInfo]{Key: KeyContactInfo, Defaults: func() ContactInfo {
		return ContactInfo{}
	}}

	FooterSection = Section[Footer]{Key: KeyFooter, Defaults: func() Footer {
		return Footer{}
	}}

	WhyChooseUsSection = Section[WhyChooseUs]{Key: KeyWhyChooseUs, Defaults: func() WhyChooseUs {
		return WhyChooseUs{Title: "Why choose us", Reasons: []Reason{}}
	}}

	ProjectStatsSection = Section[ProjectStats]{Key: KeyProjectStats, Defaults: func() ProjectStats {
		return ProjectStats{}
	}}

	ServiceHighlightsSection = Section[ServiceHighlights]{Key: KeyServiceHighlights, Defaults: func() ServiceHighlights {
		return ServiceHighlights{Highlights: []string{}}
	}}
)
