package render_test

import (
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formkit/pkg/render"
)

func TestThemeConfigMergesVariant(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456", "radius": "4px"},
		Templates: map[string]string{
			"forms.input": "themes/acme/input.tmpl",
		},
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme",
			Files:  map[string]string{"stylesheet": "theme.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens:    map[string]string{"brand": "#654321"},
				Templates: map[string]string{"forms.checkbox": "themes/acme/dark/checkbox.tmpl"},
				Assets:    theme.Assets{Files: map[string]string{"vendor": "vendor.dark.js"}},
			},
		},
	}

	cfg := render.ThemeConfig(manifest, "dark")
	if cfg.Theme != "acme" || cfg.Variant != "dark" {
		t.Fatalf("unexpected identity %s/%s", cfg.Theme, cfg.Variant)
	}
	if cfg.Partials["forms.input"] != "themes/acme/input.tmpl" || cfg.Partials["forms.checkbox"] != "themes/acme/dark/checkbox.tmpl" {
		t.Fatalf("partials not merged: %v", cfg.Partials)
	}
	if cfg.Tokens["brand"] != "#654321" || cfg.CSSVars["--brand"] != "#654321" {
		t.Fatalf("variant tokens not applied: %v %v", cfg.Tokens, cfg.CSSVars)
	}
	if got := cfg.AssetURL("vendor"); got != "/assets/themes/acme/vendor.dark.js" {
		t.Fatalf("unexpected vendor url %q", got)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("unexpected url for missing asset %q", got)
	}
	if got := render.CSSVarsStyle(cfg); got != "--brand: #654321; --radius: 4px;" {
		t.Fatalf("unexpected style %q", got)
	}
}
