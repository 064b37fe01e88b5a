package paddle

import (
	"net/url"

	"github.com/google/go-querystring/query"

	"paddle/internal/types"
)

// Ptr returns a pointer to v. Optional parameters are pointer fields so
// that an explicit zero ("0", false) can be told apart from "not set".
func Ptr[T any](v T) *T {
	return &v
}

// encodeForm flattens a parameter struct into form values using its url
// tags. A nil params yields an empty form.
func encodeForm(params any) (url.Values, error) {
	if params == nil {
		return url.Values{}, nil
	}
	form, err := query.Values(params)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalSerialization, "failed to encode request parameters", err)
	}
	return form, nil
}
