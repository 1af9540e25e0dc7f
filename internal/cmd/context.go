package cmd

import (
	"io"

	"github.com/jimezsa/jobminer/internal/config"
	"github.com/jimezsa/jobminer/internal/ui"
	"github.com/rs/zerolog"
)

// Context is handed to every command's Run method.
type Context struct {
	Out    io.Writer
	Err    io.Writer
	UI     *ui.UI
	Logger zerolog.Logger

	Config    config.Config
	ConfigDir string
	Version   string

	Verbose    bool
	JSONOutput bool
	PlainText  bool
}
