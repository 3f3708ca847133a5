// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Browser Automation - these keys configure the headless browser that walks the catalog.
const (
	BrowserHeadless = "browser.headless"
	BrowserTrace    = "browser.trace"
)

// Catalog Structure - these keys describe where episodes live on a season page.
const (
	CatalogEpisodeSelector = "catalog.episode_selector"
	CatalogNumberSelector  = "catalog.number_selector"
	CatalogQualitySelector = "catalog.quality_selector"
	CatalogQualityXPath    = "catalog.quality_xpath"
	CatalogRedirectXPath   = "catalog.redirect_xpath"
)

// Link Resolution - these keys govern the wait for a download link behind the redirect page.
const (
	ResolverTimeout          = "resolver.timeout"
	ResolverPollInterval     = "resolver.poll_interval"
	ResolverDownloadLabel    = "resolver.download_label"
	ResolverPushMarkerXPath  = "resolver.push.marker_xpath"
	ResolverPushDoneXPath    = "resolver.push.downloaded_xpath"
	ResolverPushTotalXPath   = "resolver.push.total_xpath"
	ResolverPushPercentXPath = "resolver.push.percentage_xpath"
)

// Transfer - these keys tune the byte copy and the wait for externally written files.
const (
	TransferChunkSize    = "transfer.chunk_size"
	TransferLockInterval = "transfer.lock_interval"
)

// Progress Rendering - these keys control the in-place progress line.
const (
	ProgressRefresh = "progress.refresh"
	ProgressBar     = "progress.bar"
)

// Download Hygiene - these keys manage leftovers of interrupted runs.
const (
	DownloadCleanStale = "download.clean_stale"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-interactive application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
