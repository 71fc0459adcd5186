package mutation

// Registry maps an entity kind to every path whose response reads it.
// The admin listing for the kind is always included.
type Registry struct {
	// AdminPrefix is the protected console prefix, e.g. /admin.
	AdminPrefix string
	// PublicPrefix is the public read API prefix, e.g. /api/site.
	PublicPrefix string
}

// DefaultRegistry matches the routes mounted by the server package.
var DefaultRegistry = Registry{AdminPrefix: "/admin", PublicPrefix: "/api/site"}

// homeReaders are the kinds and sections rendered by the public home payload.
var homeReaders = map[string]bool{
	"hero":               true,
	"service_highlights": true,
	"project_stats":      true,
	"why_choose_us":      true,
	"testimonials":       true,
	"projects":           true,
	"services":           true,
}

// Paths returns the paths to invalidate after a committed write.
// key is the section key for KindSection and ignored otherwise.
func (r Registry) Paths(kind Kind, key string) []string {
	var paths []string
	if kind == KindSection {
		paths = append(paths, r.PublicPrefix+"/sections/"+key)
		if homeReaders[key] {
			paths = append(paths, r.PublicPrefix+"/home")
		}
		paths = append(paths, r.Listing(kind, key))
		return paths
	}

	paths = append(paths, r.PublicPrefix+"/"+kind.Slug())
	if homeReaders[string(kind)] {
		paths = append(paths, r.PublicPrefix+"/home")
	}
	paths = append(paths, r.Listing(kind, key))
	return paths
}

// Listing is the admin view a successful mutation returns to.
func (r Registry) Listing(kind Kind, key string) string {
	if kind == KindSection {
		return r.AdminPrefix + "/sections/" + key
	}
	return r.AdminPrefix + "/" + kind.Slug()
}
