// Package generate composes prompts for creator content, titles, cover
// images, trend summaries and hot content analysis, and runs them against
// the user's provider or the built-in default backend.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/hoanghai1803/creatorpilot/internal/ai"
	"github.com/hoanghai1803/creatorpilot/internal/feeds"
	"github.com/hoanghai1803/creatorpilot/internal/metrics"
	"github.com/hoanghai1803/creatorpilot/internal/models"
)

// ConfigSource returns the unmasked provider configuration of a capability.
type ConfigSource interface {
	Active(ctx context.Context, capability ai.Capability) (ai.ProviderConfig, error)
}

// ProviderClient calls a user-configured provider.
type ProviderClient interface {
	ChatCompletion(ctx context.Context, cfg ai.ProviderConfig, messages []ai.ChatMessage, opts ai.ChatOptions) (string, error)
	GenerateImage(ctx context.Context, cfg ai.ProviderConfig, prompt string, opts ai.ImageOptions) (string, error)
}

// Completer is the default text backend.
type Completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// ImageGenerator is the default image backend.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// Searcher finds news related to a query.
type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]feeds.SearchResult, error)
}

// HotRepository loads and stores hot content analyses.
type HotRepository interface {
	ListUnanalyzedHotContents(ctx context.Context, ids []string) ([]models.HotContent, error)
	SaveHotAnalysis(ctx context.Context, id string, a models.HotAnalysis) error
}

// Deps are the collaborators of a Service. DefaultText, DefaultImage and
// Search may be nil; operations that need a missing one fail with
// ErrNoBackend.
type Deps struct {
	Config       ConfigSource
	Client       ProviderClient
	DefaultText  Completer
	DefaultImage ImageGenerator
	Search       Searcher
	Hot          HotRepository
}

// Service runs generation requests. It holds no mutable state.
type Service struct {
	config       ConfigSource
	client       ProviderClient
	defaultText  Completer
	defaultImage ImageGenerator
	search       Searcher
	hot          HotRepository
	now          func() time.Time
}

// NewService creates a Service from d.
func NewService(d Deps) *Service {
	return &Service{
		config:       d.Config,
		client:       d.Client,
		defaultText:  d.DefaultText,
		defaultImage: d.DefaultImage,
		search:       d.Search,
		hot:          d.Hot,
		now:          time.Now,
	}
}

// Limits and defaults of the operations.
const (
	DefaultTitleCount = 5
	MaxTitleCount     = 10
	DefaultTrendTopic = "美食"
	DefaultTrendCount = 10
	MaxTrendCount     = 20
	trendContextSize  = 8
	MaxBatchAnalyze   = 5
)

// ContentRequest asks for a piece of platform-tailored content.
type ContentRequest struct {
	Topic       string `json:"topic"`
	Platform    string `json:"platform"`
	Style       string `json:"style"`
	ContentType string `json:"contentType"`
	Category    string `json:"category"`
}

// ContentResult is the generated content with the request parameters echoed.
type ContentResult struct {
	Content            string `json:"content"`
	Platform           string `json:"platform"`
	Style              string `json:"style"`
	ContentType        string `json:"contentType"`
	Category           string `json:"category"`
	UsedCustomProvider bool   `json:"usedCustomProvider"`
}

// TitleRequest asks for title suggestions for a piece of content.
type TitleRequest struct {
	Content  string `json:"content"`
	Platform string `json:"platform"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// TitleResult lists the suggested titles in the order the model gave them.
type TitleResult struct {
	Titles             []string `json:"titles"`
	Platform           string   `json:"platform"`
	UsedCustomProvider bool     `json:"usedCustomProvider"`
}

// ImageRequest asks for a cover image.
type ImageRequest struct {
	Prompt   string `json:"prompt"`
	Style    string `json:"style"`
	Category string `json:"category"`
}

// ImageResult carries the image as base64 or a URL, and the prompt actually
// sent.
type ImageResult struct {
	Image              string `json:"image"`
	Prompt             string `json:"prompt"`
	UsedCustomProvider bool   `json:"usedCustomProvider"`
}

// TrendRequest asks for a summary of current trends around a topic.
type TrendRequest struct {
	Topic    string
	Num      int
	Category string
}

// TrendResult holds the raw search hits and the model's analysis.
type TrendResult struct {
	Trends             []feeds.SearchResult `json:"trends"`
	Analysis           string               `json:"analysis"`
	Keywords           string               `json:"keywords"`
	StyleTags          string               `json:"styleTags"`
	Topic              string               `json:"topic"`
	UsedCustomProvider bool                 `json:"usedCustomProvider"`
}

// HotAnalysisRequest asks for an analysis of one trending post. When ID is
// set the stored record is updated.
type HotAnalysisRequest struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// HotAnalysisResult is the analysis with its extracted labels.
type HotAnalysisResult struct {
	Analysis           string `json:"analysis"`
	Keywords           string `json:"keywords"`
	StyleTags          string `json:"styleTags"`
	UsedCustomProvider bool   `json:"usedCustomProvider"`
}

// BatchItemResult reports the outcome for one record of a batch.
type BatchItemResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BatchResult summarizes a batch analysis.
type BatchResult struct {
	SuccessCount int               `json:"successCount"`
	Remaining    int               `json:"remaining"`
	Results      []BatchItemResult `json:"results"`
}

// GenerateContent drafts content for r.Topic.
func (s *Service) GenerateContent(ctx context.Context, r ContentRequest) (*ContentResult, error) {
	if strings.TrimSpace(r.Topic) == "" {
		return nil, invalidArgument("请输入话题")
	}

	system, user := contentPrompts(r)
	text, custom, err := s.complete(ctx, "content", system, user)
	if err != nil {
		return nil, err
	}
	return &ContentResult{
		Content:            text,
		Platform:           r.Platform,
		Style:              r.Style,
		ContentType:        r.ContentType,
		Category:           r.Category,
		UsedCustomProvider: custom,
	}, nil
}

// GenerateTitles suggests titles for r.Content. Count defaults to 5 and is
// clamped to 1..10.
func (s *Service) GenerateTitles(ctx context.Context, r TitleRequest) (*TitleResult, error) {
	if strings.TrimSpace(r.Content) == "" {
		return nil, invalidArgument("请输入内容")
	}

	count := r.Count
	if count <= 0 {
		count = DefaultTitleCount
	}
	count = min(count, MaxTitleCount)

	system, user := titlePrompts(r, count)
	text, custom, err := s.complete(ctx, "titles", system, user)
	if err != nil {
		return nil, err
	}
	return &TitleResult{
		Titles:             SplitTitles(text),
		Platform:           r.Platform,
		UsedCustomProvider: custom,
	}, nil
}

// SplitTitles splits raw model output into titles, one per line, dropping
// blank lines. Titles are otherwise returned untouched.
func SplitTitles(text string) []string {
	return lo.Filter(strings.Split(text, "\n"), func(line string, _ int) bool {
		return strings.TrimSpace(line) != ""
	})
}

// GenerateImage creates a cover image for r.Prompt.
func (s *Service) GenerateImage(ctx context.Context, r ImageRequest) (*ImageResult, error) {
	if strings.TrimSpace(r.Prompt) == "" {
		return nil, invalidArgument("请输入图片描述")
	}

	prompt := imagePrompt(r)
	image, custom, err := s.image(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return &ImageResult{Image: image, Prompt: prompt, UsedCustomProvider: custom}, nil
}

// SearchTrends searches news about r.Topic and asks the model to summarize
// the trends found in the top results.
func (s *Service) SearchTrends(ctx context.Context, r TrendRequest) (*TrendResult, error) {
	topic := strings.TrimSpace(r.Topic)
	if topic == "" {
		topic = DefaultTrendTopic
	}
	num := r.Num
	if num <= 0 {
		num = DefaultTrendCount
	}
	num = min(num, MaxTrendCount)

	if s.search == nil {
		s.fail("trends")
		return nil, fmt.Errorf("trend search: %w", ErrNoBackend)
	}

	query := fmt.Sprintf("%s 热点 趋势 %d", topic, s.now().Year())
	results, err := s.search.Search(ctx, query, num)
	if err != nil {
		s.fail("trends")
		return nil, fmt.Errorf("searching trends: %w", err)
	}

	system, user := trendPrompts(r.Category, lo.Subset(results, 0, trendContextSize))
	analysis, custom, err := s.complete(ctx, "trends", system, user)
	if err != nil {
		return nil, err
	}

	keywords, styleTags := extractLabels(analysis)
	return &TrendResult{
		Trends:             results,
		Analysis:           analysis,
		Keywords:           keywords,
		StyleTags:          styleTags,
		Topic:              topic,
		UsedCustomProvider: custom,
	}, nil
}

// AnalyzeHot analyzes a trending post. When r.ID is set the analysis is
// stored on that record and the record is marked analyzed.
func (s *Service) AnalyzeHot(ctx context.Context, r HotAnalysisRequest) (*HotAnalysisResult, error) {
	if strings.TrimSpace(r.Title) == "" {
		return nil, invalidArgument("缺少内容标题")
	}

	system, user := hotAnalysisPrompts(r)
	analysis, custom, err := s.complete(ctx, "hot_analysis", system, user)
	if err != nil {
		return nil, err
	}
	keywords, styleTags := extractLabels(analysis)

	if r.ID != "" && s.hot != nil {
		err := s.hot.SaveHotAnalysis(ctx, r.ID, models.HotAnalysis{
			Analysis:  analysis,
			Keywords:  keywords,
			StyleTags: styleTags,
		})
		if err != nil {
			return nil, fmt.Errorf("saving analysis: %w", err)
		}
	}

	return &HotAnalysisResult{
		Analysis:           analysis,
		Keywords:           keywords,
		StyleTags:          styleTags,
		UsedCustomProvider: custom,
	}, nil
}

// BatchAnalyze analyzes the not yet analyzed records among ids, at most five
// per call and one at a time. A failing record does not stop the batch.
func (s *Service) BatchAnalyze(ctx context.Context, ids []string) (*BatchResult, error) {
	if len(ids) == 0 {
		return nil, invalidArgument("请选择要分析的内容")
	}
	if s.hot == nil {
		return nil, errors.New("hot content repository not configured")
	}

	pending, err := s.hot.ListUnanalyzedHotContents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading hot contents: %w", err)
	}

	batch := lo.Subset(pending, 0, MaxBatchAnalyze)
	result := &BatchResult{
		Remaining: len(pending) - len(batch),
		Results:   make([]BatchItemResult, 0, len(batch)),
	}

	for _, h := range batch {
		item := BatchItemResult{ID: h.ID}
		if err := s.analyzeOne(ctx, h); err != nil {
			slog.Warn("batch analysis item failed", "id", h.ID, "error", err)
			item.Error = publicMessage(err)
		} else {
			item.Success = true
			result.SuccessCount++
		}
		result.Results = append(result.Results, item)
	}

	slog.Info("batch analysis finished",
		"requested", len(ids),
		"processed", len(batch),
		"succeeded", result.SuccessCount,
		"remaining", result.Remaining,
	)
	return result, nil
}

func (s *Service) analyzeOne(ctx context.Context, h models.HotContent) error {
	system, user := batchAnalysisPrompts(h.Title, lo.FromPtr(h.Content))
	analysis, _, err := s.complete(ctx, "batch_analysis", system, user)
	if err != nil {
		return err
	}
	keywords, styleTags := extractLabels(analysis)
	return s.hot.SaveHotAnalysis(ctx, h.ID, models.HotAnalysis{
		Analysis:  analysis,
		Keywords:  keywords,
		StyleTags: styleTags,
	})
}

var (
	keywordsPattern  = regexp.MustCompile(`关键词[：:]\s*([^\n]+)`)
	styleTagsPattern = regexp.MustCompile(`风格标签[：:]\s*([^\n]+)`)
)

// extractLabels pulls the keyword and style tag lines out of free-form
// analysis text. A missing label yields an empty string.
func extractLabels(text string) (keywords, styleTags string) {
	return firstGroup(keywordsPattern, text), firstGroup(styleTagsPattern, text)
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// complete runs a chat completion on the user's text provider when it is
// enabled and has a key, and on the default backend otherwise. An incomplete
// provider configuration falls back to the default backend.
func (s *Service) complete(ctx context.Context, op, system, user string) (string, bool, error) {
	messages := []ai.ChatMessage{
		{Role: ai.RoleSystem, Content: system},
		{Role: ai.RoleUser, Content: user},
	}

	cfg, err := s.config.Active(ctx, ai.CapabilityText)
	if err != nil {
		s.fail(op)
		return "", false, fmt.Errorf("loading text provider configuration: %w", err)
	}

	if cfg.Enabled && cfg.APIKey != "" {
		text, err := s.client.ChatCompletion(ctx, cfg, messages, ai.ChatOptions{})
		switch {
		case err == nil:
			s.record(op, true)
			return text, true, nil
		case !errors.Is(err, ai.ErrNotConfigured):
			s.fail(op)
			return "", true, err
		}
		slog.Warn("text provider incomplete, using default backend", "operation", op, "provider", cfg.Provider)
	}

	if s.defaultText == nil {
		s.fail(op)
		return "", false, ErrNoBackend
	}
	text, err := s.defaultText.Complete(ctx, messages)
	if err != nil {
		s.fail(op)
		return "", false, err
	}
	s.record(op, false)
	return text, false, nil
}

// image mirrors complete for the image capability.
func (s *Service) image(ctx context.Context, prompt string) (string, bool, error) {
	const op = "image"

	cfg, err := s.config.Active(ctx, ai.CapabilityImage)
	if err != nil {
		s.fail(op)
		return "", false, fmt.Errorf("loading image provider configuration: %w", err)
	}

	if cfg.Enabled && cfg.APIKey != "" {
		img, err := s.client.GenerateImage(ctx, cfg, prompt, ai.ImageOptions{})
		switch {
		case err == nil:
			s.record(op, true)
			return img, true, nil
		case !errors.Is(err, ai.ErrNotConfigured):
			s.fail(op)
			return "", true, err
		}
		slog.Warn("image provider incomplete, using default backend", "provider", cfg.Provider)
	}

	if s.defaultImage == nil {
		s.fail(op)
		return "", false, ErrNoBackend
	}
	img, err := s.defaultImage.GenerateImage(ctx, prompt)
	if err != nil {
		s.fail(op)
		return "", false, err
	}
	s.record(op, false)
	return img, false, nil
}

func (s *Service) record(op string, custom bool) {
	path := "default"
	if custom {
		path = "custom"
	}
	metrics.Global().Generations.WithLabelValues(op, path).Inc()
}

func (s *Service) fail(op string) {
	metrics.Global().GenerationFailures.WithLabelValues(op).Inc()
}

// publicMessage renders err for a response body. Upstream errors are reduced
// to their status so that provider bodies are not echoed to clients.
func publicMessage(err error) string {
	var upErr *ai.UpstreamError
	switch {
	case errors.As(err, &upErr) && upErr.StatusCode != 0:
		return fmt.Sprintf("AI请求失败: %d", upErr.StatusCode)
	case errors.As(err, &upErr):
		return "AI请求失败"
	case errors.Is(err, ErrNoBackend):
		return "未配置AI服务"
	default:
		return "分析失败"
	}
}
