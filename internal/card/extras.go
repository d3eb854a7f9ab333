package card

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/thereceipt/titlecard-engine/internal/failure"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// decodeExtras fills out from the keys it declares. Unknown keys are
// dropped; a known key with the wrong type is a validation error.
func decodeExtras(extras cardformat.Extras, out any) error {
	if len(extras) == 0 {
		return nil
	}

	data, err := json.Marshal(extras)
	if err != nil {
		return failure.Wrap(failure.KindValidation, fmt.Errorf("encode extras: %w", err))
	}

	if err := json.Unmarshal(data, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return failure.New(failure.KindValidation, "extras %s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return failure.Wrap(failure.KindValidation, fmt.Errorf("decode extras: %w", err))
	}
	return nil
}
