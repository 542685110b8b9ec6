// cmd/clubvault/main.go
package main

import (
	"context"

	"github.com/clubvault/clubvault/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	app.Run(context.Background(), bootstrap.Hooks)
}
