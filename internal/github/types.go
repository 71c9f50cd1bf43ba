package github

import "time"

// Release is a tagged publication of assets, as returned by the REST API.
type Release struct {
	ID          int64     `json:"id" yaml:"id"`
	TagName     string    `json:"tag_name" yaml:"tag_name"`
	Name        string    `json:"name" yaml:"name"`
	Draft       bool      `json:"draft" yaml:"draft"`
	Prerelease  bool      `json:"prerelease" yaml:"prerelease"`
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`
	Assets      []Asset   `json:"assets" yaml:"assets"`
}

// Asset is a single downloadable file attached to a release.
type Asset struct {
	ID                 int64     `json:"id" yaml:"id"`
	Name               string    `json:"name" yaml:"name"`
	Size               int64     `json:"size" yaml:"size"`
	DownloadCount      int64     `json:"download_count" yaml:"download_count"`
	ContentType        string    `json:"content_type" yaml:"content_type"`
	CreatedAt          time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" yaml:"updated_at"`
	BrowserDownloadURL string    `json:"browser_download_url" yaml:"browser_download_url"`
}

// AssetNames returns the names of assets in order.
func AssetNames(assets []Asset) []string {
	names := make([]string, len(assets))
	for i, a := range assets {
		names[i] = a.Name
	}
	return names
}

// errorEnvelope is the body GitHub sends instead of a resource,
// e.g. {"message": "Not Found", "documentation_url": "..."}.
type errorEnvelope struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}
