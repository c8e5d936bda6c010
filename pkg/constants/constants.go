// Package constants holds names, enumerations and limits shared across the
// templatelint packages.
package constants

// CLIName is the executable name used in help text and annotations.
const CLIName = "templatelint"

// Default file layout of a template root.
const (
	DefaultTemplatesDir = "templates"
	DefaultIndexFile    = "index.json"
	DefaultSchemaFile   = "index.schema.json"
	DefaultConfigFile   = ".templatelint.yaml"
	WorkflowExtension   = ".json"
)

// MaxThumbnailProbe bounds the sequential {name}-{n} probe.
const MaxThumbnailProbe = 99

// Exit codes returned by the CLI.
const (
	ExitOK    = 0
	ExitFail  = 1
	ExitFatal = 2
)

// MediaTypes are the accepted values of a template's mediaType and a
// category's type.
var MediaTypes = []string{"image", "video", "audio", "3d"}

// ThumbnailVariants are the accepted values of thumbnailVariant. hoverZoom
// and zoomHover are both kept; the latter is a legacy spelling.
var ThumbnailVariants = []string{"compareSlider", "hoverDissolve", "hoverZoom", "zoomHover"}

// ReservedFiles live in a template root without being templates.
var ReservedFiles = []string{".gitignore", "README.md"}
