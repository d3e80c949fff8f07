package result

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 1024

// Decoder parses a 2xx response body into T.
type Decoder[T any] func(body []byte, into *T) error

// Wrap runs a transport call and classifies its outcome:
//   - the thunk fails or the body cannot be read: Network (Unknown when the
//     error is not a transport error);
//   - non-2xx status: Server;
//   - decode fails: Server;
//   - the thunk panics: Unknown.
//
// A nil decode leaves the value zero. The response body is always closed.
func Wrap[T any](op string, thunk func() (*http.Response, error), decode Decoder[T]) (res Result[T]) {
	defer func() {
		if rec := recover(); rec != nil {
			res = Fail[T](NewFailure(op, Unknown, fmt.Errorf("panic: %v", rec)))
		}
	}()

	resp, err := thunk()
	if err != nil {
		return Fail[T](NewFailure(op, classify(err), err))
	}
	if resp == nil || resp.Body == nil {
		return Fail[T](NewFailure(op, Unknown, errors.New("nil response")))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Fail[T](NewFailure(op, Network, fmt.Errorf("read body: %w", err)))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return Fail[T](&Failure{
			Op:     op,
			Reason: Server,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status: %s", string(body)),
		})
	}

	var v T
	if decode != nil && len(body) > 0 {
		if err := decode(body, &v); err != nil {
			return Fail[T](&Failure{
				Op:     op,
				Reason: Server,
				Status: resp.StatusCode,
				Err:    fmt.Errorf("decode response: %w", err),
			})
		}
	}
	return Ok(v)
}

// classify maps a transport error to a reason.
func classify(err error) Reason {
	var urlErr *url.Error
	var netErr net.Error
	switch {
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		return Network
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return Network
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return Network
	default:
		return Unknown
	}
}
