package schema

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-site-builder/internal/document"
)

// Registry stores the block tables for every document type.
type Registry struct {
	mu     sync.RWMutex
	tables map[document.Type]*Table
}

// NewRegistry constructs a registry seeded with the built in tables.
func NewRegistry() *Registry {
	r := &Registry{tables: make(map[document.Type]*Table)}
	for _, table := range builtinTables() {
		r.tables[table.Type] = table
	}
	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the shared registry holding only the built in kinds.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Table returns the table for docType.
func (r *Registry) Table(docType document.Type) (*Table, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDocumentType, docType)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	table, ok := r.tables[docType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDocumentType, docType)
	}
	return table, nil
}

// Register adds or replaces a kind definition for docType. The table is copied so readers
// holding the previous table are unaffected.
func (r *Registry) Register(docType document.Type, def Definition) error {
	if r == nil {
		return ErrUnknownDocumentType
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.tables[docType]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDocumentType, docType)
	}
	next := NewTable(current.Type, current.Hierarchical, current.RemovePolicy, current.Definitions()...)
	next.add(def)
	r.tables[docType] = next
	return nil
}

// ValidateBlock checks a block config against the default registry. It is a pure function of
// its inputs.
func ValidateBlock(docType document.Type, kind document.Kind, config map[string]any) ValidationErrors {
	table, err := Default().Table(docType)
	if err != nil {
		return ValidationErrors{{
			Kind:    kind,
			Field:   "type",
			Code:    CodeUnsupportedKind,
			Message: err.Error(),
		}}
	}
	return table.ValidateBlock(kind, config)
}

func builtinTables() []*Table {
	return []*Table{
		NewTable(document.TypeForm, false, RemoveFlat,
			Define(KindText, "Text", CategoryField, InputConfig{}, Named()),
			Define(KindEmail, "Email", CategoryField, InputConfig{Placeholder: "you@example.com"}, Named()),
			Define(KindPhone, "Phone", CategoryField, InputConfig{}, Named()),
			Define(KindURL, "Website", CategoryField, InputConfig{Placeholder: "https://"}, Named()),
			Define(KindTextarea, "Message", CategoryField, InputConfig{Rows: 4}, Named()),
			Define(KindNumber, "Number", CategoryField, NumberConfig{Step: 1}, Named()),
			Define(KindSelect, "Select", CategoryField, ChoiceConfig{Options: defaultOptions()}, Named()),
			Define(KindRadio, "Radio Group", CategoryField, ChoiceConfig{Options: defaultOptions()}, Named()),
			Define(KindCheckbox, "Checkboxes", CategoryField, ChoiceConfig{Options: defaultOptions(), Multiple: true}, Named()),
			Define(KindDate, "Date", CategoryField, DateConfig{}, Named()),
			Define(KindRating, "Rating", CategoryField, RatingConfig{Max: 5, Icon: "star"}, Named()),
			Define(KindSlider, "Slider", CategoryField, SliderConfig{Min: 0, Max: 100, Step: 1}, Named()),
			Define(KindHeading, "Heading", CategoryStatic, HeadingConfig{Content: "Heading", Level: 2}),
			Define(KindParagraph, "Paragraph", CategoryStatic, MarkdownConfig{}),
			Define(KindDivider, "Divider", CategoryStatic, DividerConfig{Style: "solid"}),
		),
		NewTable(document.TypeMenu, true, RemovePromote,
			Define(KindLink, "Link", CategoryNavigation, LinkConfig{URL: "#"}, Container()),
			Define(KindGroup, "Group", CategoryNavigation, GroupConfig{}, Container()),
			Define(KindButton, "Button", CategoryNavigation, ButtonConfig{URL: "#", Variant: "primary"}),
		),
		NewTable(document.TypeFooter, true, RemoveCascade,
			Define(KindColumn, "Column", CategoryNavigation, ColumnConfig{}, Container(), RootOnly()),
			Define(KindLink, "Link", CategoryNavigation, LinkConfig{URL: "#"}, ChildOnly()),
			Define(KindSocial, "Social Icons", CategoryNavigation, SocialConfig{
				Items: []SocialLink{{Platform: "facebook", URL: "https://facebook.com"}},
			}, ChildOnly()),
			Define(KindRichText, "Text", CategoryStatic, MarkdownConfig{}, ChildOnly()),
		),
		NewTable(document.TypePage, false, RemoveFlat,
			Define(KindHero, "Hero", CategorySection, HeroConfig{Heading: "Your headline here", Alignment: "center"}),
			Define(KindFeatures, "Features", CategorySection, FeaturesConfig{
				Heading: "Features",
				Columns: 3,
				Items: []FeatureItem{
					{Title: "Feature one"},
					{Title: "Feature two"},
					{Title: "Feature three"},
				},
			}),
			Define(KindCTABanner, "CTA Banner", CategorySection, CTABannerConfig{
				Heading:    "Ready to get started?",
				ButtonText: "Contact us",
				ButtonURL:  "/contact",
				Variant:    "primary",
			}),
			Define(KindTestimonials, "Testimonials", CategorySection, TestimonialsConfig{
				Heading: "What our customers say",
				Items:   []Testimonial{{Quote: "Great service.", Author: "Jane Doe"}},
			}),
			Define(KindFAQ, "FAQ", CategorySection, FAQConfig{
				Heading: "Frequently asked questions",
				Items:   []FAQItem{{Question: "Question?", Answer: "Answer."}},
			}),
			Define(KindContent, "Content", CategorySection, MarkdownConfig{}),
			Define(KindFormEmbed, "Form", CategorySection, FormEmbedConfig{}),
		),
	}
}

func defaultOptions() []Option {
	return []Option{
		{Label: "Option 1", Value: "option_1"},
		{Label: "Option 2", Value: "option_2"},
	}
}
