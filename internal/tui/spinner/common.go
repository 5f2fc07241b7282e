package spinner

import (
	"github.com/ASRagab/ai-tool-guard-sub000/internal/tui"
)

// RunPlain runs fn with line-based progress text and no animation.
func RunPlain(message string, successMsg string, fn func() error) error {
	tui.PrintInfo(message + "...")
	if err := fn(); err != nil {
		tui.PrintError(err.Error())
		return err
	}
	tui.PrintSuccess(successMsg)
	return nil
}
