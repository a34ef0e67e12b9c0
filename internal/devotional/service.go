// Package devotional implements get-or-generate for personalized devotionals:
// serve a cached artifact when one exists for the key, otherwise generate,
// persist and return a new one.
package devotional

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/mesh-intelligence/devotional/internal/cache"
	"github.com/mesh-intelligence/devotional/internal/generate"
	"github.com/mesh-intelligence/devotional/pkg/types"
)

const tracerName = "github.com/mesh-intelligence/devotional/internal/devotional"

// VerseResolver finds today's scheduled verse.
type VerseResolver interface {
	ResolveToday(ctx context.Context, churchID string) (*types.VerseSchedule, error)
}

// Cache is the lookup and write path for artifacts.
type Cache interface {
	Lookup(ctx context.Context, key types.CacheKey) (cache.LookupResult, error)
	Store(ctx context.Context, key types.CacheKey, content types.DevotionalContent, model string) (*types.CachedArtifact, error)
}

// Result is the outcome of Service.Devotional.
type Result struct {
	Key      types.CacheKey          `json:"key"`
	Verse    types.VerseSchedule     `json:"verse"`
	Content  types.DevotionalContent `json:"content"`
	Artifact *types.CachedArtifact   `json:"artifact,omitempty"`

	// CacheHit is true when the content came from the store.
	CacheHit bool `json:"cache_hit"`
	// Degraded is true when the generator output could not be parsed and
	// default content was served. Degraded content is never stored.
	Degraded bool `json:"degraded"`
	// PremiumEligible is true the first time a session is served.
	PremiumEligible bool    `json:"premium_eligible"`
	Session         Session `json:"session"`
}

// outcome is the part of a Result shared between de-duplicated callers.
type outcome struct {
	content  types.DevotionalContent
	artifact *types.CachedArtifact
	cacheHit bool
	degraded bool
}

// Service orchestrates verse resolution, cache lookup, generation and
// persistence.
type Service struct {
	verses VerseResolver
	cache  Cache
	text   generate.Generator
	images generate.ImageGenerator
	logger *slog.Logger
	tracer trace.Tracer
	flight *singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithImages enables hero image generation.
func WithImages(g generate.ImageGenerator) Option {
	return func(s *Service) { s.images = g }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer sets the tracer. The default is the global provider's tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithDedupe collapses concurrent misses for the same key into a single
// generation when enabled. Callers that join an in-flight generation receive
// the same content.
func WithDedupe(enabled bool) Option {
	return func(s *Service) {
		if enabled {
			s.flight = &singleflight.Group{}
		} else {
			s.flight = nil
		}
	}
}

// NewService returns a Service.
func NewService(verses VerseResolver, c Cache, text generate.Generator, opts ...Option) *Service {
	s := &Service{
		verses: verses,
		cache:  c,
		text:   text,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Devotional returns the devotional for req, generating and storing it on a
// cache miss. When the request names no verse, today's scheduled verse is
// used; types.ErrNoVerseScheduled is returned if there is none. Generator
// transport failures return types.ErrGenerationFailed and write nothing.
func (s *Service) Devotional(ctx context.Context, req Request) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "devotional.get_or_generate")
	defer span.End()

	res, err := s.devotional(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("devotional.verse", res.Key.VerseReference),
		attribute.Bool("devotional.church_scoped", !res.Key.IsGlobal()),
		attribute.Bool("devotional.cache_hit", res.CacheHit),
		attribute.Bool("devotional.degraded", res.Degraded),
	)
	return res, nil
}

func (s *Service) devotional(ctx context.Context, req Request) (*Result, error) {
	key, err := normalizeFields(req)
	if err != nil {
		return nil, err
	}

	verse := types.VerseSchedule{
		ChurchID:       key.ChurchID,
		VerseReference: key.VerseReference,
		VerseText:      req.VerseText,
	}
	if key.VerseReference == "" {
		v, err := s.verses.ResolveToday(ctx, key.ChurchID)
		if err != nil {
			return nil, err
		}
		verse = *v
		key.VerseReference = v.VerseReference
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}

	out, err := s.getOrGenerate(ctx, key, verse.VerseText, req.Style)
	if err != nil {
		return nil, err
	}

	if verse.VerseText == "" {
		verse.VerseText = out.content.VerseText
	}

	session, eligible := req.Session.claimPremium()
	return &Result{
		Key:             key,
		Verse:           verse,
		Content:         out.content,
		Artifact:        out.artifact,
		CacheHit:        out.cacheHit,
		Degraded:        out.degraded,
		PremiumEligible: eligible,
		Session:         session,
	}, nil
}

func (s *Service) getOrGenerate(ctx context.Context, key types.CacheKey, verseText, style string) (outcome, error) {
	if s.flight == nil {
		return s.lookupOrGenerate(ctx, key, verseText, style)
	}
	// The shared generation ignores the leader's cancellation; each caller
	// stops waiting on its own context.
	ch := s.flight.DoChan(key.String(), func() (any, error) {
		return s.lookupOrGenerate(context.WithoutCancel(ctx), key, verseText, style)
	})
	select {
	case <-ctx.Done():
		return outcome{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return outcome{}, r.Err
		}
		if r.Shared {
			s.logger.DebugContext(ctx, "joined in-flight generation", "key", key.String())
		}
		return r.Val.(outcome), nil
	}
}

func (s *Service) lookupOrGenerate(ctx context.Context, key types.CacheKey, verseText, style string) (outcome, error) {
	// Lookup errors are logged by the accessor and served as a miss.
	if res, err := s.cache.Lookup(ctx, key); err == nil && res.Hit {
		s.logger.InfoContext(ctx, "cache hit", "key", key.String(), "id", res.Artifact.ID)
		return outcome{content: res.Artifact.Content, artifact: res.Artifact, cacheHit: true}, nil
	}

	s.logger.InfoContext(ctx, "cache miss, generating", "key", key.String())
	generated, err := s.text.Generate(ctx, generate.BuildPrompt(generate.PersonaForKey(key, verseText, style)))
	if err != nil {
		s.logger.ErrorContext(ctx, "generation failed", "key", key.String(), "error", err)
		return outcome{}, fmt.Errorf("%w: %w", types.ErrGenerationFailed, err)
	}

	parsed, err := generate.ParseContent(generated.Text)
	if err != nil {
		s.logger.WarnContext(ctx, "unparseable generator output, serving default content",
			"key", key.String(), "error", err)
		return outcome{content: generate.DefaultContent(key.VerseReference, verseText), degraded: true}, nil
	}

	content := parsed.Content
	content.VerseText = verseText
	if s.images != nil && parsed.ImagePrompt != "" {
		url, err := s.images.GenerateImage(ctx, parsed.ImagePrompt, key.AgeRange)
		if err != nil {
			s.logger.WarnContext(ctx, "hero image generation failed", "key", key.String(), "error", err)
		} else {
			content.ImageURL = url
		}
	}

	artifact, err := s.cache.Store(ctx, key, content, generated.Model)
	if err != nil {
		// Logged by the accessor; the reader still gets the content.
		return outcome{content: content}, nil
	}
	return outcome{content: content, artifact: artifact}, nil
}

// IsClientError reports whether err was caused by the request rather than by
// the service or its collaborators.
func IsClientError(err error) bool {
	return errors.Is(err, types.ErrInvalidKey)
}
