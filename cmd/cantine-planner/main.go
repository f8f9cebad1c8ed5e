package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	c := &cli{}
	err := c.rootCmd().ExecuteContext(context.Background())
	c.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
