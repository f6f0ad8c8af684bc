package main

import "github.com/giftflow/certgen-backend/cmd"

func main() {
	cmd.Init()
}
