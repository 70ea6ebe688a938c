package trailer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	http_transport "github.com/oshokin/kinopoisk-trailer-grabber/internal/transport/http"
)

// fetchText fetches a text resource (player page, playlist) with the
// browser-mimicking header set and returns its body as a string.
func fetchText(ctx context.Context, client *http.Client, sourceURL string) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, http.NoBody)
	if err != nil {
		return "", err
	}

	for key, value := range http_transport.BrowserHeaders() {
		request.Header.Set(key, value)
	}

	response, err := client.Do(request)
	if err != nil {
		return "", err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// postForm sends a form-encoded POST with the browser-mimicking header set
// and returns the raw response body.
func postForm(ctx context.Context, client *http.Client, endpoint string, form url.Values) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	for key, value := range http_transport.BrowserHeaders() {
		request.Header.Set(key, value)
	}

	request.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	request.Header.Set("X-Requested-With", "XMLHttpRequest")

	response, err := client.Do(request)
	if err != nil {
		return nil, err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return io.ReadAll(response.Body)
}
