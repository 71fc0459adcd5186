package mutation

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/repository"
)

// Records bundles the domain table repositories the pipeline writes to.
type Records struct {
	Testimonials repository.RecordRepository[models.Testimonial]
	Videos       repository.RecordRepository[models.Video]
	ProcessSteps repository.RecordRepository[models.ProcessStep]
	Services     repository.RecordRepository[models.Service]
	Projects     repository.RecordRepository[models.Project]
}

// recordWriter persists coerced fields for one kind with a single statement each.
type recordWriter interface {
	create(ctx context.Context, fields map[string]any) (string, error)
	update(ctx context.Context, id string, fields map[string]any) error
	delete(ctx context.Context, id string) error
}

type recordAdapter[T any, P interface {
	*T
	models.Record
}] struct {
	repo repository.RecordRepository[T]
}

func (a recordAdapter[T, P]) create(ctx context.Context, fields map[string]any) (string, error) {
	rec := new(T)
	if err := bind(fields, rec); err != nil {
		return "", err
	}
	if err := a.repo.Create(ctx, rec); err != nil {
		return "", err
	}
	return P(rec).RecordID(), nil
}

func (a recordAdapter[T, P]) update(ctx context.Context, id string, fields map[string]any) error {
	withID := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		withID[k] = v
	}
	withID["id"] = id

	rec := new(T)
	if err := bind(withID, rec); err != nil {
		return err
	}
	return a.repo.Update(ctx, rec)
}

func (a recordAdapter[T, P]) delete(ctx context.Context, id string) error {
	return a.repo.Delete(ctx, id)
}

// bind decodes coerced form fields onto a model using its json tags.
func bind(fields map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	if err := dec.Decode(fields); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

func (r Records) writers() map[Kind]recordWriter {
	w := map[Kind]recordWriter{}
	if r.Testimonials != nil {
		w[KindTestimonials] = recordAdapter[models.Testimonial, *models.Testimonial]{repo: r.Testimonials}
	}
	if r.Videos != nil {
		w[KindVideos] = recordAdapter[models.Video, *models.Video]{repo: r.Videos}
	}
	if r.ProcessSteps != nil {
		w[KindProcessSteps] = recordAdapter[models.ProcessStep, *models.ProcessStep]{repo: r.ProcessSteps}
	}
	if r.Services != nil {
		w[KindServices] = recordAdapter[models.Service, *models.Service]{repo: r.Services}
	}
	if r.Projects != nil {
		w[KindProjects] = recordAdapter[models.Project, *models.Project]{repo: r.Projects}
	}
	return w
}
