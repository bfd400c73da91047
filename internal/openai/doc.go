// Package openai is a small client for OpenAI-compatible HTTP APIs.
//
// JSON endpoints are retried according to the client's [RetryPolicy].
// Multipart uploads ([Client.PostForm], [Client.EditImage],
// [Client.CreateImageVariation]) stream a one-shot [formdata.Body] and are
// sent exactly once.
//
// Relative paths resolve against the base URL. When an API version is set
// (Azure OpenAI) every request carries it as the api-version query
// parameter.
package openai
