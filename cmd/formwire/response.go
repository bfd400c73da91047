package main

import (
	"fmt"
	"io"

	"github.com/tidwall/gjson"
)

// writeResponse prints the response body, pretty-printed when it is JSON.
// With a non-empty path only the gjson match is printed.
func writeResponse(w io.Writer, body []byte, path string) error {
	if path != "" {
		if !gjson.ValidBytes(body) {
			return fmt.Errorf("extract %q: response is not JSON", path)
		}
		result := gjson.GetBytes(body, path)
		if !result.Exists() {
			return fmt.Errorf("extract %q: no match in response", path)
		}
		_, err := fmt.Fprintln(w, result.String())
		return err
	}

	if len(body) == 0 {
		return nil
	}
	if gjson.ValidBytes(body) {
		body = []byte(gjson.GetBytes(body, "@pretty").Raw)
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	if body[len(body)-1] != '\n' {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}
