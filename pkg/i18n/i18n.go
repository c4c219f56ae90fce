package i18n

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

const (
	MsgMalformedResponse = "ErrMalformedResponse"
	MsgNetwork           = "ErrNetwork"
	MsgServerGeneric     = "ErrServerGeneric"
	MsgUnauthorized      = "ErrUnauthorized"
	MsgNoTenant          = "ErrNoTenant"
	MsgInvalidRequest    = "ErrInvalidRequest"
	MsgValidation        = "ErrValidation"
	MsgMissingToken      = "ErrMissingToken"
)

// 翻译文件缺失时的兜底文案
var defaultMessages = map[string]string{
	MsgMalformedResponse: "The server returned an unexpected response. The endpoint may be misconfigured.",
	MsgNetwork:           "Network error. Please check your connection and try again.",
	MsgServerGeneric:     "Something went wrong. Please try again later.",
	MsgUnauthorized:      "Your session has expired. Please log in again.",
	MsgNoTenant:          "Please select a gym first.",
	MsgInvalidRequest:    "The request could not be prepared: {{.Reason}}",
	MsgValidation:        "Please correct the highlighted fields.",
	MsgMissingToken:      "The server did not return a session token.",
}

type Localizer struct {
	bundle *goi18n.Bundle
	lang   string
	loc    *goi18n.Localizer

	mu sync.RWMutex
}

// NewLocalizer loads every *.toml file of fsys; the file name is the language tag.
func NewLocalizer(lang string, fsys fs.FS) (*Localizer, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	if fsys != nil {
		files, err := fs.Glob(fsys, "*.toml")
		if err != nil {
			return nil, err
		}
		for _, name := range files {
			data, err := fs.ReadFile(fsys, name)
			if err != nil {
				return nil, fmt.Errorf("read translation %s: %w", name, err)
			}
			if _, err := bundle.ParseMessageFileBytes(data, path.Base(name)); err != nil {
				return nil, fmt.Errorf("parse translation %s: %w", name, err)
			}
		}
	}

	l := &Localizer{bundle: bundle}
	l.SetLanguage(lang)
	return l, nil
}

func (l *Localizer) SetLanguage(lang string) {
	lang = strings.Replace(strings.TrimSpace(lang), "_", "-", 1)
	if lang == "" {
		lang = language.English.String()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.lang = lang
	l.loc = goi18n.NewLocalizer(l.bundle, lang, language.English.String())
}

// Language is the tag sent as Accept-Language.
func (l *Localizer) Language() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lang
}

func (l *Localizer) Exists(lang string) bool {
	tag, err := language.Parse(lang)
	if err != nil {
		return false
	}
	for _, t := range l.bundle.LanguageTags() {
		if t == tag {
			return true
		}
	}
	return false
}

func (l *Localizer) T(id string) string {
	return l.Tf(id, nil)
}

func (l *Localizer) Tf(id string, data map[string]any) string {
	if l == nil {
		return fallback(id, data)
	}

	l.mu.RLock()
	loc := l.loc
	l.mu.RUnlock()

	cfg := &goi18n.LocalizeConfig{MessageID: id, TemplateData: data}
	if other, ok := defaultMessages[id]; ok {
		cfg.DefaultMessage = &goi18n.Message{ID: id, Other: other}
	}
	msg, err := loc.Localize(cfg)
	if err != nil || msg == "" {
		return fallback(id, data)
	}
	return msg
}

func fallback(id string, data map[string]any) string {
	msg, ok := defaultMessages[id]
	if !ok {
		return id
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{{."+k+"}}", fmt.Sprint(v))
	}
	return msg
}
