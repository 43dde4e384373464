package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/bootstrap"
)

func main() {
	fmt.Printf("[%s] [INFO] [BOOT] starting caption-server...\n", time.Now().Format("2006-01-02 15:04:05.000"))
	if err := bootstrap.Run(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "caption-server failed: %v\n", err)
		os.Exit(1)
	}
}
