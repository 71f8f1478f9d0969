package main

import "orgchat/internal/app"

func main() {
	app.Run()
}
