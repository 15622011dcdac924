package ventures

// CatalogueFile is the top-level structure of ventures.yaml.
type CatalogueFile struct {
	Ventures []VentureProps `yaml:"ventures"`
}

// VentureProps is one entry of the catalogue.
type VentureProps struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Logo         string `yaml:"logo,omitempty"`
	Href         string `yaml:"href,omitempty"`
	InternalPath string `yaml:"internalPath,omitempty"`
	ComingSoon   bool   `yaml:"comingSoon,omitempty"`
}
