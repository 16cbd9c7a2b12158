package schema

import "github.com/goliatone/go-site-builder/internal/document"

// Form kinds.
const (
	KindText      document.Kind = "text"
	KindEmail     document.Kind = "email"
	KindPhone     document.Kind = "phone"
	KindURL       document.Kind = "url"
	KindTextarea  document.Kind = "textarea"
	KindNumber    document.Kind = "number"
	KindSelect    document.Kind = "select"
	KindRadio     document.Kind = "radio"
	KindCheckbox  document.Kind = "checkbox"
	KindDate      document.Kind = "date"
	KindRating    document.Kind = "rating"
	KindSlider    document.Kind = "slider"
	KindHeading   document.Kind = "heading"
	KindParagraph document.Kind = "paragraph"
	KindDivider   document.Kind = "divider"
)

// Menu and footer kinds.
const (
	KindLink     document.Kind = "link"
	KindGroup    document.Kind = "group"
	KindButton   document.Kind = "button"
	KindColumn   document.Kind = "column"
	KindSocial   document.Kind = "social"
	KindRichText document.Kind = "rich_text"
)

// Page section kinds.
const (
	KindHero         document.Kind = "hero"
	KindFeatures     document.Kind = "features"
	KindCTABanner    document.Kind = "cta_banner"
	KindTestimonials document.Kind = "testimonials"
	KindFAQ          document.Kind = "faq"
	KindContent      document.Kind = "content"
	KindFormEmbed    document.Kind = "form_embed"
)

// Category groups kinds by the role they play in the editor palette.
type Category string

const (
	CategoryField      Category = "field"
	CategoryStatic     Category = "static"
	CategoryNavigation Category = "navigation"
	CategorySection    Category = "section"
)

// Placement restricts where a kind may sit inside a hierarchical document.
type Placement string

const (
	PlacementAny   Placement = "any"
	PlacementRoot  Placement = "root"
	PlacementChild Placement = "child"
)

// RemovePolicy decides what happens to descendants when a block is removed.
type RemovePolicy string

const (
	RemoveFlat    RemovePolicy = "flat"
	RemovePromote RemovePolicy = "promote"
	RemoveCascade RemovePolicy = "cascade"
)
