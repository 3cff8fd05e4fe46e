package main

import "github.com/ValentinKolb/ndzmq/cmd"

func main() {
	cmd.Execute()
}
