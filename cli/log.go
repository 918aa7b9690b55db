package cli

import (
	"github.com/tliron/commonlog"
	"github.com/tliron/commonlog/simple"
)

// ConfigureLogging sets up commonlog. Verbosity 0 or below disables logging,
// 1 logs info and 2 or more debug. An empty file logs to stderr.
//
// Messages are written as they are logged so that nothing is lost when the
// process exits through os.Exit.
func ConfigureLogging(cfg LogConfig) {
	backend := simple.NewBackend()
	backend.Buffered = false
	commonlog.SetBackend(backend)

	var path *string
	if cfg.File != "" {
		path = &cfg.File
	}
	commonlog.Configure(maxVerbosity(cfg.Verbosity), path)
}

// maxVerbosity maps the configured verbosity to commonlog's scale where
// 0 still lets notices through.
func maxVerbosity(v int) int {
	if v <= 0 {
		return -4
	}
	return v
}
