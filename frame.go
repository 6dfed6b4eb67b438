// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import "github.com/vmihailenco/msgpack/v5"

// Frame is the wire unit of the correlation transport: an issued token
// plus an opaque payload body. Transports carry the token unmodified
// and return it on the reply; the body's meaning belongs to the
// application.
type Frame struct {
	Token Token  `msgpack:"t"`
	Body  []byte `msgpack:"b"`
}

// MarshalBody encodes a typed payload into a frame body.
func MarshalBody[T any](v T) ([]byte, error) {
	return msgpack.Marshal(v)
}

// UnmarshalBody decodes a frame body produced by MarshalBody.
func UnmarshalBody[T any](body []byte) (T, error) {
	var v T
	err := msgpack.Unmarshal(body, &v)
	return v, err
}
