package paddle

import (
	"errors"
	"fmt"
)

// APIError is the failure branch of the vendor envelope. Code is the
// vendor's numeric error code; branch on it rather than on Message.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paddle: api error %d: %s", e.Code, e.Message)
}

// IsAPIError unwraps err to an *APIError.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
