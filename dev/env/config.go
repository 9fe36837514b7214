package devenv

// BrowserTestConfig points manual end-to-end runs of the browser at a live
// site. Lives in dev/.state/browser_config.json5.
type BrowserTestConfig struct {
	StartUrl string            `json:"start_url"`
	Headers  map[string]string `json:"headers"`
	Cookies  map[string]string `json:"cookies"`
	Proxy    struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	} `json:"proxy"`
}
