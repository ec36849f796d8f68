// =============================================================================
// Order Report Bot - Main Entry Point
// =============================================================================
//
// USAGE:
//   orderbot serve     - Run the Telegram webhook bot
//   orderbot report    - Build an Excel report from DOCX files on disk
//   orderbot version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : session store, ingestion, extraction, batch, report, bot
//   - pkg/       : shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/docx-order-report/cmd"
)

func main() {
	cmd.Execute()
}
