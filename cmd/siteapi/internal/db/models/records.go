package models

import (
	"context"
	"time"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/bunx"
	"github.com/uptrace/bun"
)

// Record is implemented by every domain table managed through the console.
type Record interface {
	// RecordID returns the primary key.
	RecordID() string
	// ListOrder returns ORDER BY clauses applied to listings.
	ListOrder() []string
	// ListFlags returns the boolean columns that listings may filter on.
	ListFlags() []string
}

// RecordBase carries the columns shared by all domain records.
type RecordBase struct {
	ID           string    `bun:"id,pk,type:uuid" json:"id"`
	DisplayOrder int       `bun:"display_order,notnull,default:0" json:"display_order"`
	CreatedAt    time.Time `bun:"created_at,notnull,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,nullzero,default:current_timestamp" json:"updated_at"`
}

// RecordID returns the primary key.
func (b *RecordBase) RecordID() string { return b.ID }

// BeforeAppendModel assigns a UUIDv7 on insert and bumps updated_at on update.
func (b *RecordBase) BeforeAppendModel(_ context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == "" {
			b.ID = bunx.NewUUIDv7()
		}
		now := time.Now().UTC()
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		b.UpdatedAt = now
	case *bun.UpdateQuery:
		b.UpdatedAt = time.Now().UTC()
	}
	return nil
}

var byDisplayOrder = []string{"display_order ASC", "created_at ASC"}

// Testimonial is a client quote shown on the site.
type Testimonial struct {
	bun.BaseModel `bun:"table:testimonials,alias:t"`
	RecordBase

	ClientName     string  `bun:"client_name,notnull" json:"client_name"`
	ClientRole     *string `bun:"client_role" json:"client_role"`
	Quote          string  `bun:"quote,notnull" json:"quote"`
	Rating         int     `bun:"rating,notnull,default:5" json:"rating"`
	ImageURL       *string `bun:"image_url" json:"image_url"`
	ShowOnHomepage bool    `bun:"show_on_homepage,notnull" json:"show_on_homepage"`
}

func (*Testimonial) ListOrder() []string { return byDisplayOrder }
func (*Testimonial) ListFlags() []string { return []string{"show_on_homepage"} }

// Video is an embedded walkthrough or reel.
type Video struct {
	bun.BaseModel `bun:"table:videos,alias:v"`
	RecordBase

	Title        string  `bun:"title,notnull" json:"title"`
	Description  *string `bun:"description" json:"description"`
	VideoURL     string  `bun:"video_url,notnull" json:"video_url"`
	ThumbnailURL *string `bun:"thumbnail_url" json:"thumbnail_url"`
	Category     *string `bun:"category" json:"category"`
	Featured     bool    `bun:"featured,notnull" json:"featured"`
}

func (*Video) ListOrder() []string { return byDisplayOrder }
func (*Video) ListFlags() []string { return []string{"featured"} }

// ProcessStep is one step of the "how we work" timeline.
type ProcessStep struct {
	bun.BaseModel `bun:"table:process_steps,alias:ps"`
	RecordBase

	StepNumber  int     `bun:"step_number,notnull" json:"step_number"`
	Title       string  `bun:"title,notnull" json:"title"`
	Description string  `bun:"description,notnull" json:"description"`
	Icon        *string `bun:"icon" json:"icon"`
}

func (*ProcessStep) ListOrder() []string { return []string{"step_number ASC", "display_order ASC"} }
func (*ProcessStep) ListFlags() []string { return nil }

// Service is an offered service line.
type Service struct {
	bun.BaseModel `bun:"table:services,alias:svc"`
	RecordBase

	Title       string   `bun:"title,notnull" json:"title"`
	Slug        string   `bun:"slug,notnull,unique" json:"slug"`
	Description string   `bun:"description,notnull" json:"description"`
	Features    []string `bun:"features,type:jsonb" json:"features"`
	ImageURL    *string  `bun:"image_url" json:"image_url"`
	Published   bool     `bun:"published,notnull" json:"published"`
}

func (*Service) ListOrder() []string { return byDisplayOrder }
func (*Service) ListFlags() []string { return []string{"published"} }

// Project is a portfolio entry.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`
	RecordBase

	Title       string   `bun:"title,notnull" json:"title"`
	Category    string   `bun:"category,notnull" json:"category"`
	Location    *string  `bun:"location" json:"location"`
	Description *string  `bun:"description" json:"description"`
	ImageURL    string   `bun:"image_url,notnull" json:"image_url"`
	GalleryURLs []string `bun:"gallery_urls,type:jsonb" json:"gallery_urls"`
	Year        *int     `bun:"year" json:"year"`
	Featured    bool     `bun:"featured,notnull" json:"featured"`
}

// Newest portfolio entries first unless an explicit order was set.
func (*Project) ListOrder() []string { return []string{"display_order ASC", "created_at DESC"} }
func (*Project) ListFlags() []string { return []string{"featured"} }

var (
	_ Record                   = (*Testimonial)(nil)
	_ Record                   = (*Video)(nil)
	_ Record                   = (*ProcessStep)(nil)
	_ Record                   = (*Service)(nil)
	_ Record                   = (*Project)(nil)
	_ bun.BeforeAppendModelHook = (*Testimonial)(nil)
)
