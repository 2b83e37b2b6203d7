package health

import (
	"github.com/onedesigner/onedesigner/core/handler"
	"github.com/onedesigner/onedesigner/core/response"
)

// Liveness reports that the process is up. It checks no dependencies.
func Liveness[C handler.Context](C) handler.Response {
	return response.String("ALIVE")
}
