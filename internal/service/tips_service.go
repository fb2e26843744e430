package service

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/allive/internal/locale"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed tips/*.md
var tipsFS embed.FS

// Tips 是渲染后的分类提示
type Tips struct {
	Category string `json:"category"`
	Language string `json:"language"`
	HTML     string `json:"html"`
}

// TipsService 将内置的 Markdown 提示渲染为安全的 HTML，并按分类与语言缓存
type TipsService struct {
	files    fs.FS
	markdown goldmark.Markdown
	policy   *bluemonday.Policy

	mu    sync.RWMutex
	cache map[string]string
}

// NewTipsService 使用内置提示文件构造 TipsService
func NewTipsService() *TipsService {
	return newTipsService(tipsFS)
}

func newTipsService(files fs.FS) *TipsService {
	return &TipsService{
		files: files,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Table),
			goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
		),
		policy: bluemonday.UGCPolicy(),
		cache:  make(map[string]string),
	}
}

// ForCategory 返回分类提示；缺少所需语言时回退到西班牙语
func (s *TipsService) ForCategory(category, language string) (*Tips, error) {
	if !knownCategory(category) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	language = locale.NormalizeLanguage(language)
	if language == "" {
		language = locale.LanguageSpanish
	}

	rendered, err := s.render(category, language)
	if errors.Is(err, fs.ErrNotExist) && language != locale.LanguageSpanish {
		language = locale.LanguageSpanish
		rendered, err = s.render(category, language)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s tips: %w", category, err)
	}

	return &Tips{Category: category, Language: language, HTML: rendered}, nil
}

func (s *TipsService) render(category, language string) (string, error) {
	name := fmt.Sprintf("tips/%s.%s.md", category, language)

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	source, err := fs.ReadFile(s.files, name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := s.markdown.Convert(source, &buf); err != nil {
		return "", err
	}
	rendered := string(s.policy.SanitizeBytes(buf.Bytes()))

	s.mu.Lock()
	s.cache[name] = rendered
	s.mu.Unlock()
	return rendered, nil
}

func knownCategory(name string) bool {
	for _, category := range Categories {
		if category == name {
			return true
		}
	}
	return false
}
