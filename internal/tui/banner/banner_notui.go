//go:build notui

package banner

// PrintBanner falls back to the plain banner in notui builds.
func PrintBanner(version string) {
	PrintBannerPlain(version)
}
