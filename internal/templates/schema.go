package templates

// TemplatesConfig is the top-level structure of a templates file.
// Each list item maps a template key to its properties, which keeps the
// file order while letting keys stay dynamic.
type TemplatesConfig []map[string]TemplateProps

// TemplateProps contains the template properties
type TemplateProps struct {
	Title       string   `yaml:"title"`
	Content     string   `yaml:"content,omitempty"`
	Category    string   `yaml:"category,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Description string   `yaml:"description,omitempty"`
}
