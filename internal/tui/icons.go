package tui

// Icons come from widely supported Unicode blocks so they survive most
// terminal fonts. Color carries the primary signal; shape reinforces it.
const (
	IconShield  = "◆" // brand marker
	IconCheck   = "✔" // success
	IconCross   = "✖" // error
	IconWarning = "⚠" // warning
	IconInfo    = "ℹ" // info
	IconDot     = "●" // found/active
	IconCircle  = "○" // not found
	IconSquare  = "▪" // severity badge
	IconBolt    = "⚡" // issue counter
)
