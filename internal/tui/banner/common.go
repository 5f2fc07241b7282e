package banner

import "fmt"

// PrintBannerPlain prints a plain text banner (no colors, no box).
func PrintBannerPlain(version string) {
	if version != "" {
		fmt.Printf("aiguard v%s - Static security triage for AI tools\n", version)
	} else {
		fmt.Println("aiguard - Static security triage for AI tools")
	}
}
