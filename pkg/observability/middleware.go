package observability

import (
	"errors"
	"strconv"
	"time"

	"github.com/weft-dev/weft/pkg/weft"
)

// Metrics returns middleware that records request metrics:
//
//   - weft_requests_total (counter): per request with method and status
//     class ("2xx", "4xx", ...) labels
//   - weft_request_duration_seconds (histogram): pipeline duration
//   - weft_requests_in_flight (gauge): concurrent pipeline occupancy
//   - weft_pipeline_errors_total (counter): failures by error kind
//
// Register it outside error-producing middleware so failures are
// observed with the status the error path will produce.
func Metrics() weft.Handler {
	return func(c *weft.Context, next weft.Next) error {
		start := time.Now()
		RequestsInFlight.Inc()
		defer RequestsInFlight.Dec()

		err := next()

		status := c.Response.Status()
		if err != nil {
			// The dispatcher has not run the error path yet; derive the
			// status it will write so the label matches the wire response.
			status = weft.ErrorStatus(err)
			kind := "internal"
			var he *weft.HTTPError
			if errors.As(err, &he) {
				kind = "http"
			}
			PipelineErrorsTotal.WithLabelValues(kind).Inc()
		}

		method := c.Request.Method()
		RequestsTotal.WithLabelValues(method, statusClass(status)).Inc()
		RequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

		return err
	}
}

// statusClass renders a status code as its class label, e.g. "2xx".
func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}
