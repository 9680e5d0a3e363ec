package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coursegen-backend/internal/metrics"
	"coursegen-backend/internal/models"
)

// ImageGenerator turns a prompt into raster image bytes.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, width, height int) ([]byte, error)
}

// ImageStore materializes image bytes and returns a URL for them.
type ImageStore interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

type AssetCategory string

const (
	CategoryCover   AssetCategory = "cover"
	CategoryModule  AssetCategory = "module"
	CategorySlide   AssetCategory = "slide"
	CategorySection AssetCategory = "section"
	CategoryLesson  AssetCategory = "lesson"
)

var styleSuffixes = map[AssetCategory]string{
	CategoryCover:   "professional education course cover, modern design, academic, clean layout, educational technology, vibrant colors, professional typography",
	CategoryModule:  "educational concept visualization, informative, clear composition, learning-focused, professional illustration",
	CategorySlide:   "presentation slide visual, clean design, educational content, professional graphics, easy to understand",
	CategorySection: "detailed educational illustration, concept visualization, professional diagram style",
	CategoryLesson:  "educational concept visualization, informative, clear composition, learning-focused, professional illustration",
}

// SubAssetCap is the number of images attempted beyond the cover.
func SubAssetCap(kind models.OutputKind) int {
	switch kind {
	case models.KindSlides, models.KindDocument, models.KindCourse:
		return 3
	default:
		return 0
	}
}

// ImageAsset is one planned image: its map key, the prompt sent to the
// provider, and the subject text placeholders are derived from.
type ImageAsset struct {
	Key      string
	Category AssetCategory
	Prompt   string
	Subject  string
}

var errNotAnImage = errors.New("provider returned non-image data")

type EnricherConfig struct {
	Width  int
	Height int
	// Delay is enforced between consecutive provider calls.
	Delay time.Duration
}

type Enricher struct {
	images ImageGenerator
	store  ImageStore
	cfg    EnricherConfig
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewEnricher builds an Enricher. A nil images provider makes every asset a
// placeholder without any call.
func NewEnricher(images ImageGenerator, store ImageStore, cfg EnricherConfig, logger *zap.Logger) *Enricher {
	if cfg.Width <= 0 {
		cfg.Width = 512
	}
	if cfg.Height <= 0 {
		cfg.Height = 512
	}
	return &Enricher{
		images: images,
		store:  store,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "image_enricher")),
		sleep:  sleepContext,
	}
}

// Enrich resolves an image for the cover and for up to SubAssetCap(kind)
// sub-assets of content. Calls are made one at a time. The returned map has
// an entry for every planned asset.
func (e *Enricher) Enrich(ctx context.Context, content models.Content, title string, kind models.OutputKind) models.ImageAssetMap {
	assets := PlanAssets(content, title, kind)
	batch := uuid.NewString()
	out := make(models.ImageAssetMap, len(assets))

	calls := 0
	for _, asset := range assets {
		if e.images != nil && calls > 0 {
			if err := e.sleep(ctx, e.cfg.Delay); err != nil {
				e.logger.Debug("image pacing interrupted", zap.Error(err))
			}
		}
		if e.images != nil {
			calls++
		}
		out[asset.Key] = e.ResolveImageOrPlaceholder(ctx, batch, asset)
	}
	return out
}

// ResolveImageOrPlaceholder makes a single provider attempt for asset and
// falls back to the placeholder for any failure.
func (e *Enricher) ResolveImageOrPlaceholder(ctx context.Context, batch string, asset ImageAsset) models.ImageRef {
	url, err := e.generate(ctx, batch, asset)
	if err != nil {
		metrics.ImageRequests.WithLabelValues(string(asset.Category), "placeholder").Inc()
		e.logger.Warn("image unavailable, using placeholder",
			zap.String("asset", asset.Key),
			zap.Error(err),
		)
		return models.ImageRef{URL: PlaceholderURL(asset.Subject), Source: models.ImagePlaceholder}
	}
	metrics.ImageRequests.WithLabelValues(string(asset.Category), "generated").Inc()
	return models.ImageRef{URL: url, Source: models.ImageGenerated}
}

func (e *Enricher) generate(ctx context.Context, batch string, asset ImageAsset) (string, error) {
	if e.images == nil {
		return "", errors.New("no image provider configured")
	}
	data, err := e.images.GenerateImage(ctx, asset.Prompt, e.cfg.Width, e.cfg.Height)
	if err != nil {
		return "", err
	}
	contentType := http.DetectContentType(data)
	if len(data) == 0 || !strings.HasPrefix(contentType, "image/") {
		return "", errNotAnImage
	}
	if e.store == nil {
		return "", errors.New("no image store configured")
	}
	name := fmt.Sprintf("courses/%s/%s%s", batch, assetFileName(asset.Key), extensionFor(contentType))
	return e.store.Save(ctx, name, data, contentType)
}

// PlanAssets lists the images to attempt, cover first, in content order.
func PlanAssets(content models.Content, title string, kind models.OutputKind) []ImageAsset {
	planner := assetPlanner{title: title, seen: map[string]bool{}, limit: 1 + SubAssetCap(kind)}

	cover := coverBrief(content)
	if cover == "" {
		cover = "Professional course cover image for " + title
	}
	planner.add("cover", CategoryCover, cover, title)

	switch c := content.(type) {
	case *models.SlideDeck:
		for i, s := range c.Slides {
			planner.add("slide:"+strconv.Itoa(i), CategorySlide, firstNonEmpty(s.ImageBrief, s.Title), s.Title)
		}
	case *models.Document:
		for _, s := range c.SectionImages {
			if s.Section == "" {
				continue
			}
			planner.add("section:"+s.Section, CategorySection, firstNonEmpty(s.ImageBrief, s.Section), s.Section)
		}
	case *models.Course:
		for _, m := range c.Modules {
			if m.Title == "" {
				continue
			}
			planner.add("module:"+m.Title, CategoryModule, firstNonEmpty(m.ImageBrief, m.Title), m.Title)
		}
		if len(c.Modules) > 0 {
			for _, l := range c.Modules[0].Lessons {
				if l.Title == "" {
					continue
				}
				planner.add("lesson:"+l.Title, CategoryLesson, l.Title, c.Modules[0].Title)
			}
		}
	}
	return planner.assets
}

type assetPlanner struct {
	title  string
	seen   map[string]bool
	limit  int
	assets []ImageAsset
}

func (p *assetPlanner) add(key string, category AssetCategory, brief, topic string) {
	if len(p.assets) >= p.limit || p.seen[key] || strings.TrimSpace(brief) == "" {
		return
	}
	p.seen[key] = true

	ctxText := p.title
	if topic != "" && topic != p.title {
		ctxText = p.title + " - " + topic
	}
	p.assets = append(p.assets, ImageAsset{
		Key:      key,
		Category: category,
		Prompt:   enhancePrompt(brief, ctxText, category),
		Subject:  strings.TrimSpace(brief + " " + p.title),
	})
}

func enhancePrompt(brief, topic string, category AssetCategory) string {
	return fmt.Sprintf("%s. Topic: %s. Style: %s, high quality, detailed", strings.TrimSpace(brief), topic, styleSuffixes[category])
}

func coverBrief(c models.Content) string {
	switch v := c.(type) {
	case *models.SlideDeck:
		return v.CoverImageBrief
	case *models.Summary:
		return v.CoverImageBrief
	case *models.Document:
		return v.CoverImageBrief
	case *models.Course:
		return v.CoverImageBrief
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func assetFileName(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, key)
	if len(name) > 60 {
		name = name[:60]
	}
	return name
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
