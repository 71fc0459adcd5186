package migrations

import (
	"context"
	"fmt"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260301000000, down_20260301000000)
}

type tableSpec struct {
	name  string
	model any
}

var initTables = []tableSpec{
	{"users", (*models.User)(nil)},
	{"administrator_profiles", (*models.AdministratorProfile)(nil)},
	{"sessions", (*models.Session)(nil)},
	{"content_sections", (*models.ContentSection)(nil)},
	{"testimonials", (*models.Testimonial)(nil)},
	{"videos", (*models.Video)(nil)},
	{"process_steps", (*models.ProcessStep)(nil)},
	{"services", (*models.Service)(nil)},
	{"projects", (*models.Project)(nil)},
	{"render_cache", (*models.RenderCacheEntry)(nil)},
}

// up_20260301000000 creates the console schema
func up_20260301000000(ctx context.Context, db *bun.DB) error {
	for _, t := range initTables {
		fmt.Printf(" [up] creating %s table...", t.name)
		q := db.NewCreateTable().Model(t.model).IfNotExists()
		switch t.name {
		case "administrator_profiles":
			q = q.ForeignKey(`("id") REFERENCES "users" ("id") ON DELETE CASCADE`)
		case "sessions":
			q = q.ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
		fmt.Println(" OK")
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_testimonials_order ON testimonials(display_order)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_order ON videos(display_order)`,
		`CREATE INDEX IF NOT EXISTS idx_services_order ON services(display_order)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_order ON projects(display_order, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_render_cache_expires_at ON render_cache(expires_at)`,
	}
	fmt.Print(" [up] creating indexes...")
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	fmt.Println(" OK")

	return nil
}

// down_20260301000000 drops the console schema
func down_20260301000000(ctx context.Context, db *bun.DB) error {
	for i := len(initTables) - 1; i >= 0; i-- {
		t := initTables[i]
		fmt.Printf(" [down] dropping %s table...", t.name)
		if _, err := db.NewDropTable().Model(t.model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop %s table: %w", t.name, err)
		}
		fmt.Println(" OK")
	}
	return nil
}
