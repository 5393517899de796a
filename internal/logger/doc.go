// Package logger provides structured logging for the letv resolver.
//
// Messages are filtered by level and by component, so library packages can
// log freely at DEBUG while the CLI only shows what the user asked for.
//
// Usage:
//
//	log := logger.WithComponent(logger.ComponentPlayJSON)
//	log.Debug("playJson request", map[string]any{"id": "22005890"})
//
//	cfg, _ := logger.EnvironmentConfig().ToLoggerConfig()
//	logger.SetGlobalLogger(logger.New(cfg))
//
// Components:
//   - ComponentApp: facade and CLI
//   - ComponentClient: HTTP fetches, retries, decompression
//   - ComponentTimeKey: tkey derivation and script keyers
//   - ComponentPlayJSON: signed API calls and status mapping
//   - ComponentFormat: rendition parsing, re-signing and selection
//   - ComponentPlaylist: listing page crawl
package logger
