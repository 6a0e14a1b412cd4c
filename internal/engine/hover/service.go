// Package hover runs the hover pipeline: match, resolve, load, render, link.
package hover

import (
	"context"
	"strings"

	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/intellitip/internal/engine/modcache"
	"go.trai.ch/intellitip/internal/engine/render"
	"go.trai.ch/intellitip/internal/engine/resolve"
	"go.trai.ch/intellitip/internal/engine/trigger"
)

// Request is one hover position.
type Request struct {
	// Line is the text of the line under the cursor.
	Line string
	// Column is the cursor's character offset into Line.
	Column int
	// FilePath is the absolute path of the open file. It determines the site.
	FilePath string
	// WorkspaceRoot is the absolute workspace root.
	WorkspaceRoot string
}

// Result is the rendered hover.
type Result struct {
	Markdown string
	Trigger  domain.Trigger
	Entity   *domain.Entity
}

// Service resolves hover requests. Every outcome other than rendered Markdown,
// including errors, is reported as "nothing to show".
type Service struct {
	matcher  *trigger.Matcher
	resolver *resolve.Resolver
	cache    *modcache.Cache
	renderer *render.Renderer
	linker   *render.Linker
	tracer   ports.Tracer
	logger   ports.Logger
}

// NewService creates a Service from its stages.
func NewService(
	matcher *trigger.Matcher,
	resolver *resolve.Resolver,
	cache *modcache.Cache,
	renderer *render.Renderer,
	linker *render.Linker,
	tracer ports.Tracer,
	logger ports.Logger,
) *Service {
	return &Service{
		matcher:  matcher,
		resolver: resolver,
		cache:    cache,
		renderer: renderer,
		linker:   linker,
		tracer:   tracer,
		logger:   logger,
	}
}

// Hover runs the pipeline for req under settings.
func (s *Service) Hover(ctx context.Context, req Request, settings *domain.Settings) (*Result, bool) {
	ctx, span := s.tracer.Start(ctx, "hover",
		ports.WithAttribute("file", req.FilePath),
		ports.WithAttribute("column", req.Column),
	)
	defer span.End()

	t, ok := s.match(ctx, req, settings)
	if !ok {
		span.SetAttribute("found", false)
		return nil, false
	}
	span.SetAttribute("trigger", t.Key)
	span.SetAttribute("target", t.TargetName())

	bc := domain.BaseContext{
		Site:          domain.SiteFromPath(req.WorkspaceRoot, req.FilePath),
		WorkspaceRoot: req.WorkspaceRoot,
	}

	candidates, ct, err := s.resolve(ctx, t, bc, settings)
	if err != nil {
		// Configuration problems end the request silently.
		span.RecordError(err)
		s.logger.Debug("hover: " + err.Error())
		return nil, false
	}

	entity, ok := s.load(ctx, domain.NewCacheKey(t, bc), candidates)
	if !ok {
		span.SetAttribute("found", false)
		return nil, false
	}

	md, ok := s.render(ctx, render.Input{
		Trigger:         t,
		Entity:          entity,
		ContentFunction: ct.ContentFunction,
		WorkspaceRoot:   req.WorkspaceRoot,
	})
	if !ok || strings.TrimSpace(md) == "" {
		span.SetAttribute("found", false)
		return nil, false
	}

	md = s.link(ctx, md, settings, bc)
	span.SetAttribute("found", true)
	return &Result{Markdown: md, Trigger: t, Entity: entity}, true
}

func (s *Service) match(ctx context.Context, req Request, settings *domain.Settings) (domain.Trigger, bool) {
	_, span := s.tracer.Start(ctx, "hover.match")
	defer span.End()

	t, ok := s.matcher.Match(req.Line, req.Column, settings)
	if !ok {
		s.logger.Debug("hover: no trigger under cursor")
		return t, false
	}
	s.logger.Debug("hover: matched " + t.SectionKey() + " " + t.Key + " " + t.TargetName() + postfixSuffix(t))
	return t, true
}

func (s *Service) resolve(
	ctx context.Context,
	t domain.Trigger,
	bc domain.BaseContext,
	settings *domain.Settings,
) ([]domain.Candidate, domain.CustomType, error) {
	ctx, span := s.tracer.Start(ctx, "hover.resolve")
	defer span.End()

	binding, ok := settings.Binding(t)
	if !ok {
		return nil, domain.CustomType{}, domain.ErrInvalidBasePath
	}

	var ct domain.CustomType
	if t.Section == domain.SectionCustomTypes {
		ct, _ = settings.CustomType(t.CustomType)
	}

	candidates, err := s.resolver.Resolve(ctx, t, binding.BasePath, bc, resolve.InfoFileOnly(ct.UseInfoFile))
	if err != nil {
		span.RecordError(err)
		return nil, ct, err
	}
	span.SetAttribute("candidates", len(candidates))
	return candidates, ct, nil
}

func (s *Service) load(ctx context.Context, key domain.CacheKey, candidates []domain.Candidate) (*domain.Entity, bool) {
	ctx, span := s.tracer.Start(ctx, "hover.load", ports.WithAttribute("key", key.String()))
	defer span.End()

	entity, ok := s.cache.Load(ctx, key, candidates)
	if ok {
		span.SetAttribute("path", entity.FilePath)
	}
	return entity, ok
}

func (s *Service) render(ctx context.Context, in render.Input) (string, bool) {
	ctx, span := s.tracer.Start(ctx, "hover.render")
	defer span.End()

	md, ok := s.renderer.Render(ctx, in)
	span.SetAttribute("bytes", len(md))
	return md, ok
}

func (s *Service) link(ctx context.Context, md string, settings *domain.Settings, bc domain.BaseContext) string {
	ctx, span := s.tracer.Start(ctx, "hover.link")
	defer span.End()

	return s.linker.Link(ctx, md, settings.SchemaBasePaths(), bc)
}

func postfixSuffix(t domain.Trigger) string {
	if t.Postfix == domain.PostfixNone {
		return ""
	}
	return " --" + string(t.Postfix)
}
