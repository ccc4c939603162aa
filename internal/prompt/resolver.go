// Package prompt resolves versioned prompt templates and the model settings
// attached to them.
package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	vocerr "voc-insights-go/internal/errors"
	"voc-insights-go/internal/types"
)

const stage = "prompt"

// Definition is a versioned prompt with its named variants.
type Definition struct {
	ID             string    `json:"id" yaml:"id"`
	Name           string    `json:"name" yaml:"name"`
	Version        string    `json:"version" yaml:"version"`
	DefaultVariant string    `json:"defaultVariant" yaml:"defaultVariant"`
	Variants       []Variant `json:"variants" yaml:"variants"`
}

// Variant is one named template of a Definition.
type Variant struct {
	Name             string                `json:"name" yaml:"name"`
	ModelID          string                `json:"modelId" yaml:"modelId"`
	System           string                `json:"system" yaml:"system"`
	User             string                `json:"user" yaml:"user"`
	Inference        types.InferenceParams `json:"inference" yaml:"inference"`
	AdditionalFields map[string]any        `json:"additionalModelRequestFields,omitempty" yaml:"additionalModelRequestFields,omitempty"`
}

// TemplateStore looks prompt definitions up by identifier and version.
type TemplateStore interface {
	GetPromptTemplate(ctx context.Context, identifier, version string) (*Definition, error)
}

// Resolver picks the variant to use from a TemplateStore, optionally
// through a Cache.
type Resolver struct {
	store TemplateStore
	cache Cache
	log   *logrus.Entry
}

// NewResolver creates a resolver. cache may be nil.
func NewResolver(store TemplateStore, cache Cache, log *logrus.Entry) *Resolver {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Resolver{store: store, cache: cache, log: log.WithField("component", "prompt-resolver")}
}

// Resolve returns the template for (identifier, version). An empty variant
// selects the definition's default variant; a named one must be declared.
func (r *Resolver) Resolve(ctx context.Context, identifier, version, variant string) (types.PromptTemplate, error) {
	key := cacheKey(identifier, version, variant)
	if r.cache != nil {
		tmpl, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.log.WithError(err).WithField("cache_key", key).Warn("prompt cache read failed")
		} else if ok {
			return tmpl, nil
		}
	}

	def, err := r.store.GetPromptTemplate(ctx, identifier, version)
	if err != nil {
		return types.PromptTemplate{}, vocerr.Wrap(err, vocerr.ErrResolution, stage, fmt.Sprintf("get prompt %s version %s", identifier, version))
	}
	if def == nil {
		return types.PromptTemplate{}, vocerr.New(vocerr.ErrResolution, stage, "prompt %s version %s not found", identifier, version)
	}

	tmpl, err := Select(def, variant)
	if err != nil {
		return types.PromptTemplate{}, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, tmpl); err != nil {
			r.log.WithError(err).WithField("cache_key", key).Warn("prompt cache write failed")
		}
	}
	r.log.WithFields(logrus.Fields{
		"prompt_identifier": identifier,
		"prompt_version":    version,
		"variant":           tmpl.Variant,
		"model_id":          tmpl.ModelID,
	}).Debug("prompt resolved")
	return tmpl, nil
}

// Select picks a variant from def and joins its system and user text.
func Select(def *Definition, variant string) (types.PromptTemplate, error) {
	name := variant
	if name == "" {
		name = def.DefaultVariant
	}
	for _, v := range def.Variants {
		if v.Name != name {
			continue
		}
		if strings.TrimSpace(v.ModelID) == "" {
			return types.PromptTemplate{}, vocerr.New(vocerr.ErrResolution, stage, "variant %s of prompt %s has no model id", name, def.ID)
		}
		return types.PromptTemplate{
			Text:       v.System + "\n" + v.User,
			SystemText: v.System,
			UserText:   v.User,
			ModelID:    v.ModelID,
			Variant:    v.Name,
			Inference:  v.Inference,
		}, nil
	}
	return types.PromptTemplate{}, vocerr.New(vocerr.ErrResolution, stage, "variant %q not declared by prompt %s version %s", name, def.ID, def.Version)
}

func cacheKey(identifier, version, variant string) string {
	if variant == "" {
		variant = "default"
	}
	return "prompt:" + identifier + ":" + version + ":" + variant
}
