package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

// ErrorMetadata collects the zerr metadata of every error in the chain.
// Outer values take precedence over inner ones.
func ErrorMetadata(err error) map[string]any {
	out := make(map[string]any)
	for err != nil {
		var z *zerr.Error
		if !errors.As(err, &z) {
			break
		}
		for k, v := range z.Metadata() {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
		err = z.Unwrap()
	}
	return out
}
