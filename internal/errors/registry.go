package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Subscriber failed",
		Detail:   "A watcher's reaction panicked while handling a change notification. The remaining subscribers were still notified.",
		DocURL:   "https://vbind.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Evaluation failed",
		Detail:   "Resolving a watcher's expression panicked. Dependency tracking was reset before the failure was reported.",
		DocURL:   "https://vbind.dev/docs/errors/E002",
	},

	// ============================================
	// Compile Errors (E020-E039)
	// ============================================

	"E020": {
		Category: CategoryCompile,
		Message:  "Unknown directive",
		Detail:   "An attribute carries the directive prefix but no handler is registered under that name.",
		DocURL:   "https://vbind.dev/docs/errors/E020",
	},
	"E021": {
		Category: CategoryCompile,
		Message:  "Mount element not found",
		Detail:   "The mount selector did not match any element in the document.",
		DocURL:   "https://vbind.dev/docs/errors/E021",
	},
	"E022": {
		Category: CategoryCompile,
		Message:  "Template parse failed",
		Detail:   "The template could not be parsed as HTML.",
		DocURL:   "https://vbind.dev/docs/errors/E022",
	},
	"E023": {
		Category: CategoryCompile,
		Message:  "Invalid expression",
		Detail:   "Binding expressions are dot-separated property paths such as info.a.",
		DocURL:   "https://vbind.dev/docs/errors/E023",
	},

	// ============================================
	// Source Errors (E040-E059)
	// ============================================

	"E040": {
		Category: CategorySource,
		Message:  "Source not found",
		Detail:   "The template or data source could not be read.",
		DocURL:   "https://vbind.dev/docs/errors/E040",
	},
	"E041": {
		Category: CategorySource,
		Message:  "Unsupported source scheme",
		Detail:   "Sources are local paths, file:// or s3:// URIs.",
		DocURL:   "https://vbind.dev/docs/errors/E041",
	},
	"E042": {
		Category: CategorySource,
		Message:  "Data decode failed",
		Detail:   "Store data must be a JSON or YAML object at the top level.",
		DocURL:   "https://vbind.dev/docs/errors/E042",
	},

	// ============================================
	// Config Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryConfig,
		Message:  "Config parse failed",
		Detail:   "The configuration file is not valid JSON or YAML.",
		DocURL:   "https://vbind.dev/docs/errors/E060",
	},
	"E061": {
		Category: CategoryConfig,
		Message:  "Config not found",
		Detail:   "No vbind.json or vbind.yaml was found.",
		DocURL:   "https://vbind.dev/docs/errors/E061",
	},
	"E062": {
		Category: CategoryConfig,
		Message:  "Invalid config",
		Detail:   "A configuration value is out of range.",
		DocURL:   "https://vbind.dev/docs/errors/E062",
	},

	// ============================================
	// Dev Server Errors (E080-E099)
	// ============================================

	"E080": {
		Category: CategoryDev,
		Message:  "Dev server failed",
		Detail:   "The development server could not start or stopped unexpectedly.",
		DocURL:   "https://vbind.dev/docs/errors/E080",
	},
	"E081": {
		Category: CategoryDev,
		Message:  "Invalid live event",
		Detail:   "A live client sent a message that does not name a bound input.",
		DocURL:   "https://vbind.dev/docs/errors/E081",
	},

	// ============================================
	// CLI Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
		Detail:   "A command-line argument could not be parsed.",
		DocURL:   "https://vbind.dev/docs/errors/E100",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
