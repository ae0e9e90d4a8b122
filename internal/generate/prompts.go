package generate

import (
	"fmt"
	"strings"

	"github.com/hoanghai1803/creatorpilot/internal/feeds"
)

// Lookup table keys that unknown input falls back to.
const (
	DefaultPlatform   = "douyin"
	DefaultCategory   = "general"
	DefaultImageStyle = "food"
)

type platformProfile struct {
	name  string
	tone  string
	title string
}

var platforms = map[string]platformProfile{
	"douyin": {
		name:  "抖音",
		tone:  "抖音短视频风格，口语化、接地气、有节奏感，适合15-60秒视频",
		title: "抖音标题风格：简短有力、悬念感、数字开头、引发好奇",
	},
	"xiaohongshu": {
		name:  "小红书",
		tone:  "小红书风格，精致、有情感共鸣、带emoji表情，适合图文笔记",
		title: "小红书标题风格：精致感、情感共鸣、带emoji、种草感",
	},
	"toutiao": {
		name:  "今日头条",
		tone:  "今日头条风格，新闻感、信息量大、标题党",
		title: "今日头条标题风格：新闻感、信息量大、有争议性",
	},
}

var styles = map[string]string{
	"professional": "专业严谨，数据支撑",
	"casual":       "轻松幽默，接地气",
	"emotional":    "情感共鸣，走心文案",
	"educational":  "知识科普，干货满满",
}

const defaultStyle = "专业且有吸引力"

var contentTypes = map[string]string{
	"copywriting": "文案",
	"script":      "视频脚本",
	"article":     "长文章",
}

const defaultContentType = "文案"

var categories = map[string]string{
	"food":    "美食",
	"pet":     "宠物",
	"general": "综合",
}

var imageStyles = map[string]string{
	"food":      "美食摄影风格，专业打光，精致摆盘，高清细节，食欲感十足",
	"lifestyle": "生活方式风格，温馨氛围，自然光线，生活气息",
	"minimal":   "极简风格，简洁构图，留白设计，高级感",
	"vibrant":   "鲜艳活泼风格，色彩丰富，充满活力，年轻化",
}

// imageCategoryHints steer the subject of a cover image by domain.
var imageCategoryHints = map[string]string{
	"food": "突出食物质感",
	"pet":  "突出宠物神态，萌趣可爱",
}

const imageSuffix = "适合社交媒体封面"

func platformFor(key string) platformProfile {
	if p, ok := platforms[key]; ok {
		return p
	}
	return platforms[DefaultPlatform]
}

func categoryFor(key string) string {
	if c, ok := categories[key]; ok {
		return c
	}
	return categories[DefaultCategory]
}

func lookupOr(table map[string]string, key, fallback string) string {
	if v, ok := table[key]; ok {
		return v
	}
	return fallback
}

func contentPrompts(r ContentRequest) (system, user string) {
	p := platformFor(r.Platform)
	category := categoryFor(r.Category)

	system = fmt.Sprintf(`你是一位专业的%s领域内容创作专家，擅长为%s平台创作爆款内容。
你的创作风格是：%s
创作类型：%s
平台特点：%s

请根据用户输入的话题，创作一篇高质量的%s内容。要求：
1. 标题要吸引眼球，有爆款潜质
2. 内容要有价值，能引发用户互动
3. 符合平台调性和用户习惯
4. 如果是小红书，适当使用emoji
5. 如果是抖音脚本，要标注镜头和台词`,
		category, p.name,
		lookupOr(styles, r.Style, defaultStyle),
		lookupOr(contentTypes, r.ContentType, defaultContentType),
		p.tone, category)

	user = fmt.Sprintf("请为%s领域创作内容，话题：%s", category, r.Topic)
	return system, user
}

func titlePrompts(r TitleRequest, count int) (system, user string) {
	category := categoryFor(r.Category)

	system = fmt.Sprintf(`你是一位专业的%s领域标题优化专家。
平台特点：%s

请根据用户提供的内容，生成%d个爆款标题。要求：
1. 每个标题都要有吸引力，能引发点击欲望
2. 符合平台调性和用户习惯
3. 标题要有差异化，覆盖不同角度
4. 直接输出标题列表，每行一个，不要编号`, category, platformFor(r.Platform).title, count)

	user = fmt.Sprintf("请为以下%s内容生成爆款标题：\n%s", category, r.Content)
	return system, user
}

func imagePrompt(r ImageRequest) string {
	parts := []string{r.Prompt, lookupOr(imageStyles, r.Style, imageStyles[DefaultImageStyle])}
	if hint, ok := imageCategoryHints[r.Category]; ok {
		parts = append(parts, hint)
	}
	parts = append(parts, imageSuffix)
	return strings.Join(parts, "，")
}

func trendPrompts(category string, results []feeds.SearchResult) (system, user string) {
	c := categoryFor(category)

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(r.Title)
		b.WriteString("\n")
		b.WriteString(r.Snippet)
	}

	system = fmt.Sprintf(`你是一位专业的%s领域趋势分析师。请分析给定的搜索结果，提取出当前%s领域的热点趋势和关键词。
请在回答末尾单独输出两行：
关键词：3-5个核心关键词，用逗号分隔
风格标签：2-3个内容风格标签，用逗号分隔`, c, c)
	user = fmt.Sprintf("请分析以下%s相关搜索结果，提取热点趋势：\n\n%s", c, b.String())
	return system, user
}

func hotAnalysisPrompts(r HotAnalysisRequest) (system, user string) {
	system = fmt.Sprintf(`你是一位专业的%s领域内容分析专家。
请分析给定的热门内容，从以下维度进行分析：

1. **内容特点**：分析内容的主题、风格、情感倾向
2. **爆款要素**：分析为什么这篇内容会火，有哪些吸引人的点
3. **目标受众**：分析内容的目标用户群体
4. **创作借鉴**：给出创作者可以借鉴学习的要点
5. **关键词提取**：提取3-5个核心关键词
6. **风格标签**：给出2-3个风格标签

请用简洁清晰的语言回答，每个部分用换行分隔。`, categoryFor(r.Category))

	var b strings.Builder
	b.WriteString("请分析以下热门内容：\n\n标题：")
	b.WriteString(r.Title)
	b.WriteString("\n")
	if r.Content != "" {
		b.WriteString("内容摘要：")
		b.WriteString(r.Content)
	}
	b.WriteString("\n\n请给出详细的分析和建议。")
	return system, b.String()
}

const batchAnalysisSystemPrompt = "你是一位内容分析专家，请简要分析以下热门内容的特点和可借鉴之处。"

func batchAnalysisPrompts(title, content string) (system, user string) {
	return batchAnalysisSystemPrompt, fmt.Sprintf("标题：%s\n%s", title, content)
}
