package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"lineage/internal/core/errors"
	"lineage/internal/shared/util"
)

type Parser struct {
	loader     *GrammarLoader
	extensions map[string]string

	poolsMu sync.Mutex
	pools   map[string]*ParserPool
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:     loader,
		extensions: make(map[string]string),
		pools:      make(map[string]*ParserPool),
	}
	for lang, spec := range loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
	}
	return p
}

// ParseFile detects the language from path and parses content.
func (p *Parser) ParseFile(path string, content []byte) (*Tree, error) {
	lang := p.DetectLanguage(path)
	if lang == "" {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported language"), errors.CtxPath, path)
	}
	return p.Parse(path, lang, content)
}

// Parse parses content with the grammar of lang. A tree containing syntax
// errors is rejected: callers never see a best-effort tree.
func (p *Parser) Parse(path, lang string, content []byte) (*Tree, error) {
	pool, err := p.pool(lang)
	if err != nil {
		return nil, err
	}

	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, parseFailure(path, lang)
	}
	root := tree.RootNode()
	if root == nil || root.HasError() {
		tree.Close()
		return nil, parseFailure(path, lang)
	}

	return &Tree{Path: path, Language: lang, Source: content, tree: tree}, nil
}

func parseFailure(path, lang string) error {
	err := errors.AddContext(errors.New(errors.CodeParse, "failed to parse"), errors.CtxPath, path)
	return errors.AddContext(err, errors.CtxLanguage, lang)
}

func (p *Parser) pool(lang string) (*ParserPool, error) {
	p.poolsMu.Lock()
	defer p.poolsMu.Unlock()

	if pool, ok := p.pools[lang]; ok {
		return pool, nil
	}
	grammar, ok := p.loader.Language(lang)
	if !ok {
		return nil, errors.New(errors.CodeNotSupported, fmt.Sprintf("grammar not loaded: %s", lang))
	}
	pool := NewParserPool(lang, grammar)
	p.pools[lang] = pool
	return pool, nil
}

func (p *Parser) DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return p.extensions[ext]
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.DetectLanguage(path) != ""
}

func (p *Parser) SupportedExtensions() []string {
	return util.SortedStringKeys(p.extensions)
}

func (p *Parser) SupportedLanguages() []string {
	return p.loader.EnabledLanguages()
}
