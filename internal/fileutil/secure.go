// Package fileutil writes files that only the current user can read.
//
// Scan reports quote matched lines verbatim, which can include tokens or
// command lines lifted from hook scripts and MCP server configs. Exported
// reports and everything under the aiguard state directory are therefore
// created owner-only: mode 0600/0700 on Unix, a restricted DACL on Windows
// (where Unix mode bits are ignored by the kernel).
package fileutil
