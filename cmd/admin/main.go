// Command admin runs maintenance tasks against the SchoolDesk database.
package main

import (
	"os"

	"github.com/yigit/schooldesk/internal/pkg/logger"
)

func main() {
	app := newApp(newAdmin(os.Stdout))
	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("admin command failed")
		os.Exit(1)
	}
}
