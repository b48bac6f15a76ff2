package main

// General API documentation for swaggo. Generate with `swag init -g cmd/bedrockproxy/docs.go`.
//
// @title           bedrockproxy API
// @version         1.0
// @description     Streaming chat proxy in front of Amazon Bedrock Runtime.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
