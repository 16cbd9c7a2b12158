package schema

import (
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config is the typed configuration record of a block kind. Every kind decodes its raw
// config map into exactly one Config implementation before it is validated or rendered.
type Config interface {
	validation.Validatable
}

// Option is a single choice of a select, radio or checkbox field.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// InputConfig configures single and multi line text inputs (text, email, phone, url, textarea).
type InputConfig struct {
	Placeholder  string `json:"placeholder,omitempty"`
	HelpText     string `json:"helpText,omitempty"`
	Required     bool   `json:"required,omitempty"`
	DefaultValue string `json:"defaultValue,omitempty"`
	MinLength    *int   `json:"minLength,omitempty"`
	MaxLength    *int   `json:"maxLength,omitempty"`
	Rows         int    `json:"rows,omitempty"`
}

func (c InputConfig) Validate() error {
	errs := validation.Errors{}
	if c.MinLength != nil && *c.MinLength < 0 {
		errs["minLength"] = validation.NewError("input.min_length_negative", "minLength must be zero or positive")
	}
	if c.MaxLength != nil && *c.MaxLength < 1 {
		errs["maxLength"] = validation.NewError("input.max_length_invalid", "maxLength must be at least 1")
	}
	if c.MinLength != nil && c.MaxLength != nil && *c.MinLength > *c.MaxLength {
		errs["minLength"] = validation.NewError("input.length_range", "minLength must not exceed maxLength")
	}
	if c.Rows < 0 {
		errs["rows"] = validation.NewError("input.rows_negative", "rows must be zero or positive")
	}
	return errsOrNil(errs)
}

// NumberConfig configures numeric inputs.
type NumberConfig struct {
	Placeholder string   `json:"placeholder,omitempty"`
	HelpText    string   `json:"helpText,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Step        float64  `json:"step,omitempty"`
}

func (c NumberConfig) Validate() error {
	errs := validation.Errors{}
	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		errs["min"] = validation.NewError("number.range", "min must not exceed max")
	}
	if c.Step < 0 {
		errs["step"] = validation.NewError("number.step_negative", "step must be zero or positive")
	}
	return errsOrNil(errs)
}

// ChoiceConfig configures select, radio and checkbox fields.
type ChoiceConfig struct {
	Placeholder string   `json:"placeholder,omitempty"`
	HelpText    string   `json:"helpText,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Multiple    bool     `json:"multiple,omitempty"`
	Options     []Option `json:"options"`
}

func (c ChoiceConfig) Validate() error {
	errs := validation.Errors{}
	if len(c.Options) == 0 {
		errs["options"] = validation.NewError("choice.options_required", "at least one option is required")
		return errs
	}
	seen := make(map[string]int, len(c.Options))
	for idx, opt := range c.Options {
		key := "options." + strconv.Itoa(idx)
		value := strings.TrimSpace(opt.Value)
		if value == "" {
			errs[key+".value"] = validation.NewError("choice.option_value_required", "option value is required")
			continue
		}
		if first, ok := seen[value]; ok {
			errs[key+".value"] = validation.NewError("choice.option_value_duplicate", "option value duplicates option "+strconv.Itoa(first))
			continue
		}
		seen[value] = idx
		if strings.TrimSpace(opt.Label) == "" {
			errs[key+".label"] = validation.NewError("choice.option_label_required", "option label is required")
		}
	}
	return errsOrNil(errs)
}

// DateConfig configures date pickers. Bounds are ISO dates passed through to the client.
type DateConfig struct {
	HelpText string `json:"helpText,omitempty"`
	Required bool   `json:"required,omitempty"`
	Min      string `json:"min,omitempty"`
	Max      string `json:"max,omitempty"`
}

func (c DateConfig) Validate() error {
	errs := validation.Errors{}
	if c.Min != "" && c.Max != "" && c.Min > c.Max {
		errs["min"] = validation.NewError("date.range", "min must not be after max")
	}
	return errsOrNil(errs)
}

// RatingConfig configures star style ratings.
type RatingConfig struct {
	HelpText string `json:"helpText,omitempty"`
	Required bool   `json:"required,omitempty"`
	Max      int    `json:"max"`
	Icon     string `json:"icon,omitempty"`
}

func (c RatingConfig) Validate() error {
	errs := validation.Errors{}
	if c.Max < 1 {
		errs["max"] = validation.NewError("rating.max_min", "max must be at least 1")
	} else if c.Max > 10 {
		errs["max"] = validation.NewError("rating.max_max", "max must not exceed 10")
	}
	return errsOrNil(errs)
}

// SliderConfig configures range sliders.
type SliderConfig struct {
	HelpText     string   `json:"helpText,omitempty"`
	Required     bool     `json:"required,omitempty"`
	Min          float64  `json:"min"`
	Max          float64  `json:"max"`
	Step         float64  `json:"step"`
	DefaultValue *float64 `json:"defaultValue,omitempty"`
	Unit         string   `json:"unit,omitempty"`
}

func (c SliderConfig) Validate() error {
	errs := validation.Errors{}
	if c.Min >= c.Max {
		errs["min"] = validation.NewError("slider.range", "min must be less than max")
	}
	if c.Step <= 0 {
		errs["step"] = validation.NewError("slider.step", "step must be greater than zero")
	}
	if c.DefaultValue != nil && c.Min < c.Max && (*c.DefaultValue < c.Min || *c.DefaultValue > c.Max) {
		errs["defaultValue"] = validation.NewError("slider.default_range", "defaultValue must be within min and max")
	}
	return errsOrNil(errs)
}

// HeadingConfig configures static headings.
type HeadingConfig struct {
	Content string `json:"content"`
	Level   int    `json:"level"`
}

func (c HeadingConfig) Validate() error {
	errs := validation.Errors{}
	if c.Level < 1 || c.Level > 6 {
		errs["level"] = validation.NewError("heading.level", "level must be between 1 and 6")
	}
	return errsOrNil(errs)
}

// MarkdownConfig carries free form markdown content (paragraphs, footer text, page content).
type MarkdownConfig struct {
	Content string `json:"content"`
}

func (MarkdownConfig) Validate() error { return nil }

// DividerConfig configures horizontal rules.
type DividerConfig struct {
	Style string `json:"style,omitempty"`
}

func (c DividerConfig) Validate() error {
	switch c.Style {
	case "", "solid", "dashed", "dotted", "space":
		return nil
	default:
		return validation.Errors{
			"style": validation.NewError("divider.style", "style must be solid, dashed, dotted or space"),
		}
	}
}

// LinkConfig configures navigation links. Either URL or Route must be present.
type LinkConfig struct {
	URL          string         `json:"url,omitempty"`
	Route        string         `json:"route,omitempty"`
	Params       map[string]any `json:"params,omitempty"`
	OpenInNewTab bool           `json:"openInNewTab,omitempty"`
	Icon         string         `json:"icon,omitempty"`
}

func (c LinkConfig) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(c.URL) == "" && strings.TrimSpace(c.Route) == "" {
		errs["url"] = validation.NewError("link.target_required", "url or route is required")
	}
	return errsOrNil(errs)
}

// GroupConfig configures menu groups that only hold children.
type GroupConfig struct {
	Icon        string `json:"icon,omitempty"`
	Collapsible bool   `json:"collapsible,omitempty"`
}

func (GroupConfig) Validate() error { return nil }

// ButtonConfig configures call to action buttons inside menus.
type ButtonConfig struct {
	URL          string         `json:"url,omitempty"`
	Route        string         `json:"route,omitempty"`
	Params       map[string]any `json:"params,omitempty"`
	Variant      string         `json:"variant,omitempty"`
	OpenInNewTab bool           `json:"openInNewTab,omitempty"`
}

func (c ButtonConfig) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(c.URL) == "" && strings.TrimSpace(c.Route) == "" {
		errs["url"] = validation.NewError("button.target_required", "url or route is required")
	}
	switch c.Variant {
	case "", "primary", "secondary", "outline", "ghost":
	default:
		errs["variant"] = validation.NewError("button.variant", "variant must be primary, secondary, outline or ghost")
	}
	return errsOrNil(errs)
}

// ColumnConfig configures a footer column.
type ColumnConfig struct {
	Span int `json:"span,omitempty"`
}

func (c ColumnConfig) Validate() error {
	if c.Span < 0 || c.Span > 6 {
		return validation.Errors{
			"span": validation.NewError("column.span", "span must be between 0 and 6"),
		}
	}
	return nil
}

// SocialLink is one icon of a social icon group.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// SocialConfig configures a group of social icons.
type SocialConfig struct {
	Items []SocialLink `json:"items"`
}

var socialPlatforms = map[string]struct{}{
	"facebook":  {},
	"instagram": {},
	"linkedin":  {},
	"x":         {},
	"twitter":   {},
	"youtube":   {},
	"tiktok":    {},
	"github":    {},
	"pinterest": {},
}

func (c SocialConfig) Validate() error {
	errs := validation.Errors{}
	if len(c.Items) == 0 {
		errs["items"] = validation.NewError("social.items_required", "at least one social link is required")
		return errs
	}
	for idx, item := range c.Items {
		key := "items." + strconv.Itoa(idx)
		if _, ok := socialPlatforms[strings.ToLower(strings.TrimSpace(item.Platform))]; !ok {
			errs[key+".platform"] = validation.NewError("social.platform", "unknown social platform")
		}
		if strings.TrimSpace(item.URL) == "" {
			errs[key+".url"] = validation.NewError("social.url_required", "url is required")
		}
	}
	return errsOrNil(errs)
}

// HeroConfig configures the page hero section.
type HeroConfig struct {
	Heading         string `json:"heading"`
	Subheading      string `json:"subheading,omitempty"`
	CTAText         string `json:"ctaText,omitempty"`
	CTAURL          string `json:"ctaUrl,omitempty"`
	BackgroundImage string `json:"backgroundImage,omitempty"`
	Alignment       string `json:"alignment,omitempty"`
}

func (c HeroConfig) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(c.Heading) == "" {
		errs["heading"] = validation.NewError("hero.heading_required", "heading is required")
	}
	if strings.TrimSpace(c.CTAText) != "" && strings.TrimSpace(c.CTAURL) == "" {
		errs["ctaUrl"] = validation.NewError("hero.cta_url_required", "ctaUrl is required when ctaText is set")
	}
	switch c.Alignment {
	case "", "left", "center", "right":
	default:
		errs["alignment"] = validation.NewError("hero.alignment", "alignment must be left, center or right")
	}
	return errsOrNil(errs)
}

// FeatureItem is one entry of a features grid.
type FeatureItem struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// FeaturesConfig configures a grid of feature cards.
type FeaturesConfig struct {
	Heading string        `json:"heading,omitempty"`
	Columns int           `json:"columns"`
	Items   []FeatureItem `json:"items"`
}

func (c FeaturesConfig) Validate() error {
	errs := validation.Errors{}
	if c.Columns < 1 || c.Columns > 4 {
		errs["columns"] = validation.NewError("features.columns", "columns must be between 1 and 4")
	}
	for idx, item := range c.Items {
		if strings.TrimSpace(item.Title) == "" {
			errs["items."+strconv.Itoa(idx)+".title"] = validation.NewError("features.title_required", "feature title is required")
		}
	}
	return errsOrNil(errs)
}

// CTABannerConfig configures call to action banners.
type CTABannerConfig struct {
	Heading    string `json:"heading"`
	Body       string `json:"body,omitempty"`
	ButtonText string `json:"buttonText,omitempty"`
	ButtonURL  string `json:"buttonUrl,omitempty"`
	Variant    string `json:"variant,omitempty"`
}

func (c CTABannerConfig) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(c.Heading) == "" {
		errs["heading"] = validation.NewError("cta.heading_required", "heading is required")
	}
	if strings.TrimSpace(c.ButtonText) != "" && strings.TrimSpace(c.ButtonURL) == "" {
		errs["buttonUrl"] = validation.NewError("cta.button_url_required", "buttonUrl is required when buttonText is set")
	}
	return errsOrNil(errs)
}

// Testimonial is one quote of a testimonials section.
type Testimonial struct {
	Quote  string `json:"quote"`
	Author string `json:"author,omitempty"`
	Role   string `json:"role,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// TestimonialsConfig configures a testimonials carousel or grid.
type TestimonialsConfig struct {
	Heading string        `json:"heading,omitempty"`
	Items   []Testimonial `json:"items"`
}

func (c TestimonialsConfig) Validate() error {
	errs := validation.Errors{}
	for idx, item := range c.Items {
		if strings.TrimSpace(item.Quote) == "" {
			errs["items."+strconv.Itoa(idx)+".quote"] = validation.NewError("testimonials.quote_required", "quote is required")
		}
	}
	return errsOrNil(errs)
}

// FAQItem is one question and its markdown answer.
type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
}

// FAQConfig configures a frequently asked questions section.
type FAQConfig struct {
	Heading string    `json:"heading,omitempty"`
	Items   []FAQItem `json:"items"`
}

func (c FAQConfig) Validate() error {
	errs := validation.Errors{}
	for idx, item := range c.Items {
		if strings.TrimSpace(item.Question) == "" {
			errs["items."+strconv.Itoa(idx)+".question"] = validation.NewError("faq.question_required", "question is required")
		}
	}
	return errsOrNil(errs)
}

// FormEmbedConfig references a form document rendered inside a page. An empty FormID renders
// an empty slot so editors can place the section before the form exists.
type FormEmbedConfig struct {
	FormID  string `json:"formId,omitempty"`
	Heading string `json:"heading,omitempty"`
}

func (FormEmbedConfig) Validate() error { return nil }

func errsOrNil(errs validation.Errors) error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
