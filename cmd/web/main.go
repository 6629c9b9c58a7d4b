package main

import "meca_backend/internal/app"

func main() {
	app.Run()
}
