package domain

// RemoteConfig is the bulk store configuration published by the remote API.
type RemoteConfig struct {
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints,omitempty"`
	Versions  []string          `json:"versions"`
}

// VersionInfo describes one version listed by the remote API.
type VersionInfo struct {
	Version       string `json:"version"`
	DocumentURL   string `json:"documentationUrl,omitempty"`
	Date          string `json:"date,omitempty"`
	URL           string `json:"url,omitempty"`
	MappedVersion string `json:"mappedUcdVersion,omitempty"`
	Type          string `json:"type,omitempty"`
}

// StoreManifest is the per-version list of expected files published by the remote API.
type StoreManifest struct {
	ExpectedFiles []ExpectedFile `json:"expectedFiles"`
}
