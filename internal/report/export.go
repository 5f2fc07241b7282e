package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/fileutil"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/logger"
)

var log = logger.New("report")

// Export writes the JSON report envelope to path with owner-only
// permissions. A ".zst" suffix selects zstd compression for the
// JSON payload. Parent directories are created as needed.
func Export(path string, out Output) error {
	if dir := filepath.Dir(path); dir != "." && dir != string(filepath.Separator) {
		if err := fileutil.SecureMkdirAll(dir); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}

	f, err := fileutil.SecureOpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if strings.HasSuffix(path, ".zst") {
		return exportCompressed(f, out)
	}

	if err := WriteJSON(f, out); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Info("Report written to %s", path)
	return nil
}

func exportCompressed(f *os.File, out Output) error {
	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("initializing zstd writer: %w", err)
	}

	if err := WriteJSON(zw, out); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flushing compressed report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", f.Name(), err)
	}
	log.Info("Compressed report written to %s", f.Name())
	return nil
}
