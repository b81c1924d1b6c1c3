package httputils

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// PostJSON posts body as JSON and decodes the response into resp. The timeout
// bounds the whole round trip; zero means no limit.
func PostJSON(url string, body interface{}, resp interface{}, timeout time.Duration) error {
	client := resty.New().SetTimeout(timeout)
	req := client.R().SetBody(body)
	if resp != nil {
		req.SetResult(resp)
	}
	r, err := req.Post(url)
	if err != nil {
		return err
	}
	if r.StatusCode() != http.StatusOK {
		return fmt.Errorf("bad status: %d", r.StatusCode())
	}
	return nil
}

// PostStream posts body as JSON and hands back the raw response body so the
// caller can consume it incrementally. The caller must close it.
func PostStream(url string, body interface{}) (io.ReadCloser, error) {
	client := resty.New()
	r, err := client.R().
		SetBody(body).
		SetDoNotParseResponse(true).
		Post(url)
	if err != nil {
		return nil, err
	}
	if r.StatusCode() != http.StatusOK {
		r.RawBody().Close()
		return nil, fmt.Errorf("bad status: %d", r.StatusCode())
	}
	return r.RawBody(), nil
}
