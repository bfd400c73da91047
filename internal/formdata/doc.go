// Package formdata implements a lazy, streaming multipart/form-data encoder.
//
// Fields are described on a [Form] and nothing is opened until
// [Form.Prepare] is called. Prepare opens files, measures their lengths and
// precomputes every per-field header, returning a [Body] that streams the
// encoded request one field at a time:
//
//	form := formdata.NewForm().
//		AddText("prompt", "a sea otter").
//		AddFile("image", "otter.png")
//
//	body, err := form.Prepare()
//	if err != nil {
//		return err
//	}
//	defer body.Close()
//
//	req.Header.Set("Content-Type", body.ContentType())
//	if n, ok := body.ContentLength(); ok {
//		req.ContentLength = n
//	}
//
// The content length is known only when every field is text or a file.
// Adding a stream with [Form.AddStream] makes it unknown, and the transport
// has to fall back to chunked encoding.
//
// # Boundaries
//
// Boundaries are 16 random alphanumeric characters. Field contents are not
// searched for the boundary, so a payload that happens to contain the
// delimiter line corrupts the body. With 62^16 candidate tokens this is not
// a practical concern for the payloads this package serves.
package formdata
