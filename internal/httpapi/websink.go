package httpapi

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/konditional/konditional/internal/notifier"
)

// NewWebhookSink builds a notifier.Sink that posts signed payloads to url
// over HTTP, with the delivery headers and timeout discipline lifted from
// the reference webhook dispatcher. This is the only place in the module
// that turns a ChangeNotifier event into an outbound network request —
// the notifier package itself stays transport-agnostic.
func NewWebhookSink(url, secret string, maxRetries int, timeout time.Duration) notifier.Sink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	return notifier.Sink{
		Secret:     secret,
		MaxRetries: maxRetries,
		Deliver: func(payload []byte, signature string) error {
			req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Konditional-Signature", signature)
			req.Header.Set("X-Konditional-Delivery", uuid.New().String())

			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			_, _ = io.Copy(io.Discard, resp.Body)

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return errStatus(resp.StatusCode)
			}
			return nil
		},
	}
}

type httpStatusError int

func (e httpStatusError) Error() string {
	return http.StatusText(int(e))
}

func errStatus(code int) error {
	return httpStatusError(code)
}
