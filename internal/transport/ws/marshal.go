package ws

import "encoding/json"

// marshalControl encodes a control.* value as JSON for the text frame path
func marshalControl(msg any) ([]byte, error) {
	return json.Marshal(msg)
}
