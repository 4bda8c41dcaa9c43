package main

import (
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/pzverkov/tls10-client/pkg/cert"
	"github.com/pzverkov/tls10-client/pkg/handshake"
	"github.com/pzverkov/tls10-client/pkg/metrics"
)

func dialCommand() {
	fs := dialFlagSet()
	addr := fs.String("addr", "", "host:port to connect to (required)")
	serverName := fs.String("server-name", "", "expected server name for certificate verification (defaults to the host in --addr)")
	insecure := fs.Bool("insecure", false, "accept a self-signed leaf without chain verification")
	resumeHex := fs.String("resume", "", "hex-encoded session id to offer for resumption")
	timeout := fs.Duration("timeout", 10*time.Second, "TCP connect timeout")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error, silent")
	logFormat := fs.String("log-format", "text", "log format: text or json")

	_ = fs.Parse(os.Args[2:])

	if *addr == "" {
		fmt.Fprintln(os.Stderr, "dial: --addr is required")
		fs.Usage()
		os.Exit(1)
	}

	host, _, err := net.SplitHostPort(*addr)
	if err != nil {
		host = *addr
	}
	if *serverName == "" {
		*serverName = host
	}

	logger := metrics.NewLogger(
		metrics.WithLevel(metrics.ParseLevel(*logLevel)),
		metrics.WithFormat(parseLogFormat(*logFormat)),
		metrics.WithName("tls-client"),
	)

	var resumeID []byte
	if *resumeHex != "" {
		resumeID, err = hex.DecodeString(*resumeHex)
		if err != nil {
			logger.Error("invalid --resume hex", metrics.Fields{"error": err.Error()})
			os.Exit(1)
		}
	}

	verifier := &cert.Verifier{ServerName: *serverName, AllowSelfSigned: *insecure}
	if !*insecure {
		if roots, err := x509.SystemCertPool(); err == nil {
			verifier.Roots = roots
		}
	}

	ctx := handshake.NewContext(
		handshake.WithCertVerifier(verifier),
		handshake.WithMaxSessions(32),
		handshake.WithLogger(logger),
	)

	conn, err := net.DialTimeout("tcp", *addr, *timeout)
	if err != nil {
		logger.Error("connect failed", metrics.Fields{"addr": *addr, "error": err.Error()})
		os.Exit(1)
	}
	defer conn.Close()

	observer := metrics.NewConnectionObserver(metrics.ConnectionObserverConfig{
		Collector: metrics.Global(),
		Logger:    logger,
	})
	observer.OnSessionStart()

	hs, err := handshake.Dial(conn, ctx, resumeID)
	if err != nil {
		observer.OnSessionFailed(err)
		logger.Error("handshake failed", metrics.Fields{"error": err.Error()})
		os.Exit(1)
	}

	logger.Info("handshake complete", metrics.Fields{
		"cipher":     hs.NegotiatedCipher().String(),
		"session_id": hex.EncodeToString(hs.SessionID()),
	})
	if peer := hs.PeerCertificate(); peer != nil {
		logger.Info("peer certificate", metrics.Fields{"subject": peer.Leaf.Subject.String()})
	}

	observer.OnSessionEnd()
}

func parseLogFormat(s string) metrics.Format {
	if s == "json" {
		return metrics.FormatJSON
	}
	return metrics.FormatText
}
