package kafka

import "encoding/json"

// MustMarshal panics on marshal failure; the envelope types it is used
// with cannot fail to serialize.
func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
