// udsctl is a small diagnostic client: it dials the simulator's TCP frame
// transport, sends each request frame given as hex on the command line, and
// prints the hex response. All frames share one connection, so multi-step
// flows like a seed request followed by a key work as expected.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/tbrandt/udssim/internal/transport/tcpframe"
)

func showHelp() {
	fmt.Printf("udsctl <HEXFRAME>...\n\n")
	fmt.Printf("  sends each request frame to the simulator and prints the response\n\n")
	fmt.Printf("Examples:\n")
	fmt.Printf("  udsctl \"10 03\"\n")
	fmt.Printf("  udsctl 1003 22f186\n\n")
	fmt.Printf("The simulator's address is taken from UDSHOST, default localhost:6801.\n")
}

func parseFrame(arg string) ([]byte, error) {
	compact := strings.ReplaceAll(arg, " ", "")
	frame, err := hex.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("\"%s\" is not a hex frame: %w", arg, err)
	}
	return frame, nil
}

func main() {
	args := os.Args[1:]

	host := os.Getenv("UDSHOST")
	if host == "" {
		host = "localhost:6801"
	}

	if len(args) == 0 {
		showHelp()
		os.Exit(1)
	}

	switch args[0] {
	case "help", "--help", "-h":
		showHelp()
		return
	}

	client, err := tcpframe.Dial(host)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Dialing %s failed: %v\n", host, err)
		os.Exit(1)
	}
	defer client.Close()

	for _, arg := range args {
		frame, err := parseFrame(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

		response, err := client.Request(frame)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}

		if len(response) == 0 {
			fmt.Printf("% X -> (response suppressed)\n", frame)
		} else {
			fmt.Printf("% X -> % X\n", frame, response)
		}
	}
}
