// SPDX-License-Identifier: MIT

package netclient

import (
	"bytes"
	"io"
)

func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}

func readAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}
