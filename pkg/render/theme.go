package render

import (
	"path"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemeConfig flattens a theme manifest and one of its variants into the
// renderer-facing configuration. Variant tokens, templates and asset files
// override the base manifest; every token is also exposed as a CSS custom
// property ("brand" becomes "--brand").
func ThemeConfig(manifest *theme.Manifest, variant string) *theme.RendererConfig {
	if manifest == nil {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:    manifest.Name,
		Variant:  variant,
		Partials: make(map[string]string),
		Tokens:   make(map[string]string),
		CSSVars:  make(map[string]string),
	}

	for key, value := range manifest.Tokens {
		cfg.Tokens[key] = value
	}
	for key, value := range manifest.Templates {
		cfg.Partials[key] = value
	}
	prefix := manifest.Assets.Prefix
	files := make(map[string]string, len(manifest.Assets.Files))
	for key, value := range manifest.Assets.Files {
		files[key] = value
	}

	if selected, ok := manifest.Variants[variant]; ok {
		for key, value := range selected.Tokens {
			cfg.Tokens[key] = value
		}
		for key, value := range selected.Templates {
			cfg.Partials[key] = value
		}
		if selected.Assets.Prefix != "" {
			prefix = selected.Assets.Prefix
		}
		for key, value := range selected.Assets.Files {
			files[key] = value
		}
	}

	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+strings.TrimPrefix(key, "--")] = value
	}
	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if prefix == "" || strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
			return file
		}
		return path.Join(prefix, file)
	}
	return cfg
}

// CSSVarsStyle renders theme CSS variables as an inline style value with
// sorted keys.
func CSSVarsStyle(cfg *theme.RendererConfig) string {
	if cfg == nil || len(cfg.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cfg.CSSVars))
	for key := range cfg.CSSVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var builder strings.Builder
	for idx, key := range keys {
		if idx > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(key)
		builder.WriteString(": ")
		builder.WriteString(cfg.CSSVars[key])
		builder.WriteByte(';')
	}
	return builder.String()
}
