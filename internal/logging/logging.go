// Package logging constructs the process-wide zap logger used by every
// component in the pipeline.
package logging

import "go.uber.org/zap"

// New builds a production logger, or a development logger (console
// encoding, caller info, no sampling) when env=="dev".
func New(env string) (*zap.Logger, error) {
	if env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
