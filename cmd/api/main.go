// Command api runs the repairhub HTTP, WebSocket and gRPC health service.
package main

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/repairhub/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
