package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/d-dboss/Worksite-Appendix-Creator/internal/web"
)

var (
	version = "dev" // set by ldflags during build
)

func main() {
	addr := flag.String("addr", "localhost:8080", "HTTP server address")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("appendix-web %s\n", version)
		os.Exit(0)
	}

	server := web.NewServer()
	server.SetVersion(version)

	if err := server.Start(*addr); err != nil {
		log.Fatal(err)
	}
}
