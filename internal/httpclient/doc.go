// Package httpclient builds outgoing API requests around streaming bodies.
//
// A [Body] reports its own Content-Type and, when it can, its length.
// [RequestBuilder.Build] copies both onto the request so that a fully sized
// multipart body is sent with Content-Length and anything else falls back to
// chunked transfer encoding:
//
//	builder, err := httpclient.NewRequestBuilder(cfg.Headers)
//	if err != nil {
//		return err
//	}
//	body, err := form.Prepare()
//	if err != nil {
//		return err
//	}
//	req, err := builder.WithAuth(provider).Build(ctx, http.MethodPost, target, body)
//
// Every request gets an X-Request-ID header holding a ULID. When trace
// propagation is enabled the W3C traceparent header is injected from ctx.
//
// [NewClient] returns an *http.Client with a pooled transport and an optional
// explicit proxy.
package httpclient
