package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"maps"
	"reflect"
	"slices"

	"github.com/mitchellh/mapstructure"
)

// Document is a schema-free section document as stored.
type Document map[string]any

// decodeInto decodes doc over out, which must point at a struct already
// holding defaults. Values of the wrong type are coerced where possible ("12"
// to 12). Each top-level field is decoded on its own copy and only kept when
// it decodes cleanly, so a bad field keeps its default whole. The combined
// error is returned for logging only, out is always usable.
func decodeInto(doc Document, out any) error {
	target := reflect.ValueOf(out).Elem()
	var errs []error
	for _, key := range slices.Sorted(maps.Keys(doc)) {
		next := reflect.New(target.Type())
		next.Elem().Set(target)
		if err := decodeField(key, doc[key], next.Interface()); err != nil {
			errs = append(errs, err)
			continue
		}
		target.Set(next.Elem())
	}
	return errors.Join(errs...)
}

// decodeField decodes a single key. ZeroFields makes slices and maps
// decode into fresh values instead of the defaults' backing storage.
func decodeField(key string, val any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		ZeroFields:       true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	return dec.Decode(map[string]any{key: val})
}

// encode converts a typed section to its stored document form. The JSON
// round trip yields the same shapes the store returns (map[string]any, []any,
// float64), so a freshly written document compares equal to a re-read one.
func encode(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode section: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode section: %w", err)
	}
	return doc, nil
}

// Decode turns a stored document into its typed form. Unknown keys yield
// Unknown. Field-level decode problems are logged and the defaults kept.
func Decode(key string, doc Document) Content {
	switch key {
	case KeyHero:
		return HeroSection.decode(doc)
	case KeyAbout:
		return AboutSection.decode(doc)
	case KeyContactInfo:
		return ContactInfoSection.decode(doc)
	case KeyFooter:
		return FooterSection.decode(doc)
	case KeyWhyChooseUs:
		return WhyChooseUsSection.decode(doc)
	case KeyProjectStats:
		return ProjectStatsSection.decode(doc)
	case KeyServiceHighlights:
		return ServiceHighlightsSection.decode(doc)
	default:
		return Unknown{Key: key, Document: doc}
	}
}

func logDecodeProblem(key string, err error) {
	if err != nil {
		log.Printf("content: section %s does not match its current shape, defaults kept for bad fields: %v", key, err)
	}
}
