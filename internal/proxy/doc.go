// Package proxy is the service facade behind the HTTP API. It owns the model
// catalogue and the response pipeline and keeps process-wide stream counters
// for /status:
//
//   - proxy.go: Proxy type, constructor, catalogue and readiness.
//   - config.go: Config and package defaults; New applies them.
//   - generate.go: Generate, the counted entry point into the pipeline.
//   - status.go: Status reporting.
//
// The upstream Bedrock client is created once at startup by the caller and
// handed in through Config.Opener; it is shared by every request.
package proxy
