package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-site-builder/internal/document"
	"github.com/goliatone/go-site-builder/internal/schema"
)

// Context exposes the shared converters to render funcs.
type Context struct {
	markdown *Markdown
	links    LinkResolver
}

// Markdown converts markdown content into HTML.
func (c *Context) Markdown(source string) (string, error) {
	return c.markdown.Convert(source)
}

// Href picks the target of a link. A route wins over url when a resolver is configured; url is
// the fallback when the route cannot be resolved.
func (c *Context) Href(url, route string, params map[string]any) (string, error) {
	url, route = strings.TrimSpace(url), strings.TrimSpace(route)
	if route == "" {
		return url, nil
	}
	if c.links == nil {
		if url != "" {
			return url, nil
		}
		return "", fmt.Errorf("render: route %q needs a route manager", route)
	}
	href, err := c.links.Resolve(route, params, nil)
	if err != nil {
		if url != "" {
			return url, nil
		}
		return "", err
	}
	return href, nil
}

// RenderFunc renders one block whose config has already been decoded and validated.
type RenderFunc func(ctx *Context, block document.Block, cfg schema.Config) (Fragment, error)

// Typed adapts a render func over a concrete config type into a RenderFunc. component is used
// when fn leaves Fragment.Component empty.
func Typed[T schema.Config](component string, fn func(ctx *Context, block document.Block, cfg T) (Fragment, error)) RenderFunc {
	return func(ctx *Context, block document.Block, cfg schema.Config) (Fragment, error) {
		typed, ok := cfg.(T)
		if !ok {
			return Fragment{}, fmt.Errorf("render: %s expects %T config, got %T", block.Kind, typed, cfg)
		}
		fragment, err := fn(ctx, block, typed)
		if err != nil {
			return Fragment{}, err
		}
		if fragment.Component == "" {
			fragment.Component = component
		}
		return fragment, nil
	}
}

func builtinRenderers() map[document.Kind]RenderFunc {
	input := Typed("form.input", renderInput)
	return map[document.Kind]RenderFunc{
		schema.KindText:      input,
		schema.KindEmail:     input,
		schema.KindPhone:     input,
		schema.KindURL:       input,
		schema.KindTextarea:  Typed("form.textarea", renderInput),
		schema.KindNumber:    Typed("form.number", renderNumber),
		schema.KindSelect:    Typed("form.select", renderChoice),
		schema.KindRadio:     Typed("form.radio-group", renderChoice),
		schema.KindCheckbox:  Typed("form.checkbox-group", renderChoice),
		schema.KindDate:      Typed("form.date", renderDate),
		schema.KindRating:    Typed("form.rating", renderRating),
		schema.KindSlider:    Typed("form.slider", renderSlider),
		schema.KindHeading:   Typed("content.heading", renderHeading),
		schema.KindParagraph: Typed("content.paragraph", renderMarkdown),
		schema.KindDivider:   Typed("content.divider", renderDivider),

		schema.KindLink:     Typed("nav.link", renderLink),
		schema.KindGroup:    Typed("nav.group", renderGroup),
		schema.KindButton:   Typed("nav.button", renderButton),
		schema.KindColumn:   Typed("footer.column", renderColumn),
		schema.KindSocial:   Typed("footer.social", renderSocial),
		schema.KindRichText: Typed("footer.text", renderMarkdown),

		schema.KindHero:         Typed("section.hero", renderHero),
		schema.KindFeatures:     Typed("section.features", renderFeatures),
		schema.KindCTABanner:    Typed("section.cta-banner", renderCTABanner),
		schema.KindTestimonials: Typed("section.testimonials", renderTestimonials),
		schema.KindFAQ:          Typed("section.faq", renderFAQ),
		schema.KindContent:      Typed("section.content", renderMarkdown),
		schema.KindFormEmbed:    Typed("section.form", renderFormEmbed),
	}
}

type props map[string]any

func (p props) str(key, value string) props {
	if value = strings.TrimSpace(value); value != "" {
		p[key] = value
	}
	return p
}

func (p props) flag(key string, value bool) props {
	if value {
		p[key] = true
	}
	return p
}

func (p props) set(key string, value any) props {
	p[key] = value
	return p
}

func optional[T any](p props, key string, value *T) props {
	if value != nil {
		p[key] = *value
	}
	return p
}

var inputTypes = map[document.Kind]string{
	schema.KindText:     "text",
	schema.KindEmail:    "email",
	schema.KindPhone:    "tel",
	schema.KindURL:      "url",
	schema.KindTextarea: "textarea",
}

func renderInput(_ *Context, block document.Block, cfg schema.InputConfig) (Fragment, error) {
	p := props{"type": inputTypes[block.Kind]}.
		str("placeholder", cfg.Placeholder).
		str("helpText", cfg.HelpText).
		str("defaultValue", cfg.DefaultValue).
		flag("required", cfg.Required)
	optional(p, "minLength", cfg.MinLength)
	optional(p, "maxLength", cfg.MaxLength)
	if block.Kind == schema.KindTextarea && cfg.Rows > 0 {
		p.set("rows", cfg.Rows)
	}
	return Fragment{Props: p}, nil
}

func renderNumber(_ *Context, _ document.Block, cfg schema.NumberConfig) (Fragment, error) {
	p := props{}.
		str("placeholder", cfg.Placeholder).
		str("helpText", cfg.HelpText).
		flag("required", cfg.Required)
	optional(p, "min", cfg.Min)
	optional(p, "max", cfg.Max)
	if cfg.Step > 0 {
		p.set("step", cfg.Step)
	}
	return Fragment{Props: p}, nil
}

func renderChoice(_ *Context, block document.Block, cfg schema.ChoiceConfig) (Fragment, error) {
	options := make([]map[string]any, 0, len(cfg.Options))
	for _, opt := range cfg.Options {
		options = append(options, map[string]any{"label": opt.Label, "value": opt.Value})
	}
	p := props{"options": options}.
		str("placeholder", cfg.Placeholder).
		str("helpText", cfg.HelpText).
		flag("required", cfg.Required)
	if block.Kind == schema.KindSelect {
		p.flag("multiple", cfg.Multiple)
	}
	return Fragment{Props: p}, nil
}

func renderDate(_ *Context, _ document.Block, cfg schema.DateConfig) (Fragment, error) {
	p := props{}.
		str("helpText", cfg.HelpText).
		str("min", cfg.Min).
		str("max", cfg.Max).
		flag("required", cfg.Required)
	return Fragment{Props: p}, nil
}

func renderRating(_ *Context, _ document.Block, cfg schema.RatingConfig) (Fragment, error) {
	p := props{"max": cfg.Max}.
		str("icon", cfg.Icon).
		str("helpText", cfg.HelpText).
		flag("required", cfg.Required)
	return Fragment{Props: p}, nil
}

func renderSlider(_ *Context, _ document.Block, cfg schema.SliderConfig) (Fragment, error) {
	p := props{"min": cfg.Min, "max": cfg.Max, "step": cfg.Step}.
		str("unit", cfg.Unit).
		str("helpText", cfg.HelpText).
		flag("required", cfg.Required)
	optional(p, "defaultValue", cfg.DefaultValue)
	return Fragment{Props: p}, nil
}

func renderHeading(_ *Context, _ document.Block, cfg schema.HeadingConfig) (Fragment, error) {
	return Fragment{
		Props: props{"level": cfg.Level, "content": cfg.Content},
		HTML:  fmt.Sprintf("<h%d>%s</h%d>", cfg.Level, html.EscapeString(cfg.Content), cfg.Level),
	}, nil
}

func renderMarkdown(ctx *Context, _ document.Block, cfg schema.MarkdownConfig) (Fragment, error) {
	out, err := ctx.Markdown(cfg.Content)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{HTML: out}, nil
}

func renderDivider(_ *Context, _ document.Block, cfg schema.DividerConfig) (Fragment, error) {
	style := cfg.Style
	if style == "" {
		style = "solid"
	}
	return Fragment{Props: props{"style": style}}, nil
}

func renderLink(ctx *Context, _ document.Block, cfg schema.LinkConfig) (Fragment, error) {
	href, err := ctx.Href(cfg.URL, cfg.Route, cfg.Params)
	if err != nil {
		return Fragment{}, err
	}
	p := props{"href": href}.str("icon", cfg.Icon)
	if cfg.OpenInNewTab {
		p.set("target", "_blank").set("rel", "noopener noreferrer")
	}
	return Fragment{Props: p}, nil
}

func renderGroup(_ *Context, _ document.Block, cfg schema.GroupConfig) (Fragment, error) {
	p := props{}.str("icon", cfg.Icon).flag("collapsible", cfg.Collapsible)
	return Fragment{Props: p}, nil
}

func renderButton(ctx *Context, _ document.Block, cfg schema.ButtonConfig) (Fragment, error) {
	href, err := ctx.Href(cfg.URL, cfg.Route, cfg.Params)
	if err != nil {
		return Fragment{}, err
	}
	variant := cfg.Variant
	if variant == "" {
		variant = "primary"
	}
	p := props{"href": href, "variant": variant}
	if cfg.OpenInNewTab {
		p.set("target", "_blank").set("rel", "noopener noreferrer")
	}
	return Fragment{Props: p}, nil
}

func renderColumn(_ *Context, _ document.Block, cfg schema.ColumnConfig) (Fragment, error) {
	span := cfg.Span
	if span == 0 {
		span = 1
	}
	return Fragment{Props: props{"span": span}}, nil
}

func renderSocial(_ *Context, _ document.Block, cfg schema.SocialConfig) (Fragment, error) {
	items := make([]map[string]any, 0, len(cfg.Items))
	for _, item := range cfg.Items {
		items = append(items, map[string]any{
			"platform": strings.ToLower(strings.TrimSpace(item.Platform)),
			"url":      strings.TrimSpace(item.URL),
		})
	}
	return Fragment{Props: props{"items": items}}, nil
}

func renderHero(_ *Context, _ document.Block, cfg schema.HeroConfig) (Fragment, error) {
	alignment := cfg.Alignment
	if alignment == "" {
		alignment = "center"
	}
	p := props{"heading": cfg.Heading, "alignment": alignment}.
		str("subheading", cfg.Subheading).
		str("ctaText", cfg.CTAText).
		str("ctaUrl", cfg.CTAURL).
		str("backgroundImage", cfg.BackgroundImage)
	return Fragment{Props: p}, nil
}

func renderFeatures(_ *Context, _ document.Block, cfg schema.FeaturesConfig) (Fragment, error) {
	items := make([]map[string]any, 0, len(cfg.Items))
	for _, item := range cfg.Items {
		items = append(items, props{"title": item.Title}.
			str("description", item.Description).
			str("icon", item.Icon))
	}
	p := props{"columns": cfg.Columns, "items": items}.str("heading", cfg.Heading)
	return Fragment{Props: p}, nil
}

func renderCTABanner(ctx *Context, _ document.Block, cfg schema.CTABannerConfig) (Fragment, error) {
	body, err := ctx.Markdown(cfg.Body)
	if err != nil {
		return Fragment{}, err
	}
	p := props{"heading": cfg.Heading}.
		str("buttonText", cfg.ButtonText).
		str("buttonUrl", cfg.ButtonURL).
		str("variant", cfg.Variant)
	return Fragment{Props: p, HTML: body}, nil
}

func renderTestimonials(_ *Context, _ document.Block, cfg schema.TestimonialsConfig) (Fragment, error) {
	items := make([]map[string]any, 0, len(cfg.Items))
	for _, item := range cfg.Items {
		items = append(items, props{"quote": item.Quote}.
			str("author", item.Author).
			str("role", item.Role).
			str("avatar", item.Avatar))
	}
	p := props{"items": items}.str("heading", cfg.Heading)
	return Fragment{Props: p}, nil
}

func renderFAQ(ctx *Context, _ document.Block, cfg schema.FAQConfig) (Fragment, error) {
	items := make([]map[string]any, 0, len(cfg.Items))
	for _, item := range cfg.Items {
		answer, err := ctx.Markdown(item.Answer)
		if err != nil {
			return Fragment{}, err
		}
		items = append(items, map[string]any{"question": item.Question, "answer": answer})
	}
	p := props{"items": items}.str("heading", cfg.Heading)
	return Fragment{Props: p}, nil
}

func renderFormEmbed(_ *Context, _ document.Block, cfg schema.FormEmbedConfig) (Fragment, error) {
	p := props{}.str("formId", cfg.FormID).str("heading", cfg.Heading)
	if strings.TrimSpace(cfg.FormID) == "" {
		p.set("empty", true)
	}
	return Fragment{Props: p}, nil
}
