// Command tls-client drives a TLS 1.0 client handshake against a server
// and reports the negotiated session: cipher suite, session id, and peer
// certificate subject.
package main

import (
	"flag"
	"fmt"
	"os"

	pkgversion "github.com/pzverkov/tls10-client/pkg/version"
)

var (
	version   = ""        // set via -ldflags "-X main.version=x.y.z"
	buildTime = "unknown" // set via -ldflags "-X main.buildTime=..."
	gitCommit = "unknown" // set via -ldflags "-X main.gitCommit=..."
)

func getVersion() string {
	if version != "" {
		return version
	}
	return pkgversion.String()
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "dial":
		dialCommand()
	case "version":
		fmt.Printf("tls-client version %s (%s)\n", getVersion(), pkgversion.Protocol())
		if buildTime != "unknown" {
			fmt.Printf("Built: %s\n", buildTime)
		}
		if gitCommit != "unknown" {
			fmt.Printf("Commit: %s\n", gitCommit)
		}
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tls-client - a TLS 1.0 client-side handshake tool

USAGE:
    tls-client <command> [options]

COMMANDS:
    dial      Connect to a server and run one TLS 1.0 handshake
    version   Print version information
    help      Show this help message

Run 'tls-client <command> --help' for more information on a command.

EXAMPLES:
    # Connect, verify against the system roots, and exit
    tls-client dial --addr example.com:443

    # Skip chain verification for a self-signed test server
    tls-client dial --addr localhost:8443 --insecure

    # Offer a session id for resumption
    tls-client dial --addr example.com:443 --resume 0102030405060708`)
}

func dialFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("dial", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Println(`USAGE: tls-client dial [options]

Connect to addr, run a full or abbreviated TLS 1.0 handshake depending on
whether the server resumes the offered session, and report the outcome.

OPTIONS:`)
		fs.PrintDefaults()
	}
	return fs
}
