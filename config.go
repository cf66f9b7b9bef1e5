package pagegrab

import "net/url"

// Defaults used when a Config field is left empty.
const (
	DefaultOutputPath     = "icons.json"
	DefaultArchivePath    = "downloadedHtml.html"
	DefaultDownloadFolder = "./downloaded_images"
	DefaultImagePageURL   = "https://www.airbnb.com/"
)

// Config is passed into each pipeline's entry point.
type Config struct {
	// URL is the page to fetch.
	URL string `json:"url"`

	// OutputPath is where the icon pipeline writes its JSON output.
	OutputPath string `json:"outputPath"`

	// ArchivePath is where the icon pipeline saves the raw page.
	// Empty disables archiving.
	ArchivePath string `json:"archivePath"`

	// DownloadFolder is where the image pipeline stores images.
	DownloadFolder string `json:"downloadFolder"`
}

// Validate returns an error if URL is missing or not an absolute URL.
func (c *Config) Validate() error {
	if c.URL == "" {
		return Errorf(EINVALID, "url required")
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Errorf(EINVALID, "invalid url %q", c.URL)
	}
	return nil
}
