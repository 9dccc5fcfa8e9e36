package main

import "homefix_backend/internal/app"

func main() {
	app.Run()
}
