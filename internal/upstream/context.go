package upstream

import (
	"io"
	"net/http"
)

// maxErrorBody caps how much of a failed response is read for error mapping.
const maxErrorBody = 64 << 10

// ReadAll 读取并返回响应体，读取完成后自动关闭。
func ReadAll(resp *http.Response) ([]byte, error) {
	if resp == nil || resp.Body == nil {
		return nil, nil
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// ReadErrorBody reads at most maxErrorBody bytes and closes the body.
func ReadErrorBody(resp *http.Response) []byte {
	if resp == nil || resp.Body == nil {
		return nil
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return b
}
