package main

import "github.com/rahmatagung/user-management/cmd"

func main() {
	cmd.Execute()
}
