package logger

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds the process-wide zap logger and installs it as the global one.
// format "console" selects the human readable development encoder, anything
// else produces JSON.
func Init(level, format string) (*zap.Logger, error) {
	var zapCfg zap.Config
	if format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, eris.Wrap(err, "logger: parse level")
	}
	zapCfg.Level.SetLevel(lvl)

	// Keep the key names the JSON log shippers already expect.
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.LevelKey = "level"
	zapCfg.EncoderConfig.MessageKey = "message"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "logger: build")
	}
	zap.ReplaceGlobals(logger)

	return logger, nil
}
