// Package program defines the structured drawing instructions a card variant
// hands to the rasterizer.
package program

// Kind identifies a drawing operation
type Kind string

const (
	KindAnnotateText   Kind = "annotate_text"
	KindDrawShape      Kind = "draw_shape"
	KindCompositeImage Kind = "composite_image"
	KindApplyShadow    Kind = "apply_shadow"
	KindResizeCrop     Kind = "resize_crop"
	KindStyleFilter    Kind = "style_filter"
	KindPlaceholder    Kind = "placeholder"
)

// Op is a single drawing operation. Later operations compose over earlier ones.
type Op interface {
	Kind() Kind
}

// Gravity anchors an operation's offset, with ImageMagick semantics: offsets
// point inward from the anchored edge.
type Gravity string

const (
	GravityCenter    Gravity = "center"
	GravityNorth     Gravity = "north"
	GravitySouth     Gravity = "south"
	GravityEast      Gravity = "east"
	GravityWest      Gravity = "west"
	GravityNorthEast Gravity = "northeast"
	GravityNorthWest Gravity = "northwest"
	GravitySouthEast Gravity = "southeast"
	GravitySouthWest Gravity = "southwest"
)

// Role tags what a piece of text or image is on the card
type Role string

const (
	RoleTitle      Role = "title"
	RoleIndex      Role = "index"
	RoleSeason     Role = "season"
	RoleEpisode    Role = "episode"
	RoleDecoration Role = "decoration"
	RoleLogo       Role = "logo"
	RoleMask       Role = "mask"
	RoleLayer      Role = "layer"
)

// Point is a pixel offset
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dimensions is a pixel size
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AnnotateText draws text. Text may contain newlines for stacked lines.
type AnnotateText struct {
	Role             Role    `json:"role"`
	Text             string  `json:"text"`
	Font             string  `json:"font"`
	Size             float64 `json:"size"`
	Color            string  `json:"color"`
	Kerning          float64 `json:"kerning,omitempty"`
	InterlineSpacing float64 `json:"interline_spacing,omitempty"`
	InterwordSpacing float64 `json:"interword_spacing,omitempty"`
	StrokeColor      string  `json:"stroke_color,omitempty"`
	StrokeWidth      float64 `json:"stroke_width,omitempty"`
	Gravity          Gravity `json:"gravity"`
	Offset           Point   `json:"offset"`
	Rotation         float64 `json:"rotation,omitempty"`
}

func (AnnotateText) Kind() Kind { return KindAnnotateText }

// ShapeKind selects the geometry interpretation of DrawShape.Points
type ShapeKind string

const (
	// ShapeRectangle uses Points[0] and Points[1] as opposite corners.
	ShapeRectangle ShapeKind = "rectangle"
	// ShapeRoundRectangle is a rectangle with corner Radius.
	ShapeRoundRectangle ShapeKind = "roundrectangle"
	// ShapeLine joins Points[0] and Points[1].
	ShapeLine ShapeKind = "line"
	// ShapePolygon joins all points and closes the path.
	ShapePolygon ShapeKind = "polygon"
	// ShapeCircle is centered on Points[0] with Radius.
	ShapeCircle ShapeKind = "circle"
)

// DrawShape draws a filled and/or stroked shape in absolute canvas coordinates
type DrawShape struct {
	Shape       ShapeKind `json:"shape"`
	Points      []Point   `json:"points"`
	Radius      float64   `json:"radius,omitempty"`
	Fill        string    `json:"fill,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"stroke_width,omitempty"`
}

func (DrawShape) Kind() Kind { return KindDrawShape }

// CompositeImage layers an image file over the canvas. Path may also be an
// ImageMagick gradient pseudo-image such as "gradient:none-black".
type CompositeImage struct {
	Role    Role       `json:"role"`
	Path    string     `json:"path"`
	Size    Dimensions `json:"size"` // zero keeps the native size
	Gravity Gravity    `json:"gravity"`
	Offset  Point      `json:"offset"`
	Rotate  float64    `json:"rotate,omitempty"`
	// Opacity in [0,1]; zero means fully opaque
	Opacity float64 `json:"opacity,omitempty"`
	// Mask, when set, is a grayscale image whose luminance limits where
	// the composite shows through.
	Mask string `json:"mask,omitempty"`
}

func (CompositeImage) Kind() Kind { return KindCompositeImage }

// ApplyShadow renders Content on its own layer, casts a blurred darkened
// copy of it at Offset, and merges the layer back over the canvas.
type ApplyShadow struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"` // percent
	Sigma   float64 `json:"sigma"`
	Offset  Point   `json:"offset"`
	Content []Op    `json:"content"`
}

func (ApplyShadow) Kind() Kind { return KindApplyShadow }

// ResizeCrop fits the source image to Size by scaling to cover and center
// cropping.
type ResizeCrop struct {
	Size Dimensions `json:"size"`
}

func (ResizeCrop) Kind() Kind { return KindResizeCrop }

// StyleFilter applies post-filters to everything drawn so far
type StyleFilter struct {
	Blur      float64 `json:"blur,omitempty"` // gaussian sigma, zero disables
	Grayscale bool    `json:"grayscale,omitempty"`
}

func (StyleFilter) Kind() Kind { return KindStyleFilter }

// Placeholder reserves a position for operations whose geometry depends on
// a metrics query that has not been answered yet.
type Placeholder struct {
	Key string `json:"key"`
}

func (Placeholder) Kind() Kind { return KindPlaceholder }
